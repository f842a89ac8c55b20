package service

import (
	"context"
	"strings"

	"threadsample/internal/adapters/csvout"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
)

// VerifyTable rehashes a table on disk. With Want set, a different digest is a Validation error
func (s *Service) VerifyTable(ctx context.Context, req domain.VerifyRequest) (rep domain.VerifyReport, err error) {
	if err := required("path", req.Path); err != nil {
		return rep, err
	}
	ctx = logger.WithStage(ctx, "verify")

	in, err := s.Files.Open(req.Path)
	if err != nil {
		return rep, err
	}
	sum, err := csvout.Checksum(in)
	closeInto(&err, in, req.Path)
	if err != nil {
		return rep, perr.WithField(perr.Wrapf(err, perr.ErrorCodeIO, "read %s", req.Path), "path")
	}
	rep.Summary = sum

	want := strings.ToLower(strings.TrimSpace(req.Want))
	rep.Match = want == "" || want == sum.Hex()
	logger.C(ctx).Info().
		Str("path", req.Path).
		Int64("bytes", sum.Bytes).
		Str("xxhash", sum.Hex()).
		Bool("match", rep.Match).
		Msg("table verified")
	if !rep.Match {
		return rep, perr.WithField(perr.Validationf("%s hashes to %s, want %s", req.Path, sum.Hex(), want), "xxhash")
	}
	return rep, nil
}
