// Package service provides the sampling pipeline implementation
package service

import (
	"context"
	"time"

	"threadsample/internal/adapters/csvout"
	"threadsample/internal/core/classify"
	"threadsample/internal/core/quota"
	"threadsample/internal/core/reservoir"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
)

// Config holds configuration options for the sampling service
type Config struct {
	Classifier classify.Classifier
	Selector   quota.Selector    // Classifier is overwritten with Config.Classifier
	Sampler    reservoir.Sampler // Rand is replaced per run from NewRand
	Format     csvout.Format

	// NewRand returns a fresh source for each sampling run; nil seeds with reservoir.DefaultSeed
	NewRand func() reservoir.Rand
}

// Service implements the sampling ports
type Service struct {
	Archives domain.ArchiveOpener
	Files    domain.Files
	Cfg      Config

	now func() time.Time // seam
}

var (
	_ domain.SelectorPort = (*Service)(nil)
	_ domain.SamplerPort  = (*Service)(nil)
	_ domain.IDsPort      = (*Service)(nil)
	_ domain.VerifyPort   = (*Service)(nil)
)

// New constructs the sampling service
func New(archives domain.ArchiveOpener, files domain.Files, cfg Config) *Service {
	if archives == nil {
		panic("sampling.Service requires a non nil ArchiveOpener")
	}
	if files == nil {
		panic("sampling.Service requires a non nil Files")
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func() reservoir.Rand { return reservoir.NewRand(reservoir.DefaultSeed) }
	}
	if cfg.Format == (csvout.Format{}) {
		cfg.Format = csvout.DefaultFormat()
	}
	cfg.Selector.Classifier = cfg.Classifier
	return &Service{Archives: archives, Files: files, Cfg: cfg, now: time.Now}
}

func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return perr.WithField(perr.InvalidArgf("%s is required", pairs[i]), pairs[i])
		}
	}
	return nil
}

// closeInto closes c and keeps the first error in *errp
func closeInto(errp *error, c interface{ Close() error }, what string) {
	if err := c.Close(); err != nil && *errp == nil {
		*errp = perr.Wrapf(err, perr.ErrorCodeIO, "close %s", what)
	}
}

// logSummary records where a table went and how to verify it
func logSummary(ctx context.Context, path string, s csvout.Summary) {
	logger.C(ctx).Info().
		Str("path", path).
		Int("rows", s.Rows).
		Int64("bytes", s.Bytes).
		Str("xxhash", s.Hex()).
		Msg("output written")
}
