package module

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"threadsample/internal/adapters/csvout"
	"threadsample/internal/adapters/ingest/archive"
	"threadsample/internal/core/classify"
	"threadsample/internal/core/quota"
	"threadsample/internal/core/reservoir"
	"threadsample/internal/platform/config"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// Options holds configuration options for the sampling pipeline
type Options struct {
	WindowStart time.Time `yaml:"window_start" validate:"required"`
	WindowEnd   time.Time `yaml:"window_end" validate:"gtfield=WindowStart"`

	Quota     int `yaml:"quota" validate:"min=1"`
	Threshold int `yaml:"threshold" validate:"min=0"`

	ReservoirK int    `yaml:"reservoir_k" validate:"min=1"`
	Seed       int64  `yaml:"seed"`
	Policy     string `yaml:"policy" validate:"oneof=uniform legacy first"`
	EarlyStop  bool   `yaml:"early_stop"`

	ChunkBytes int   `yaml:"chunk_bytes" validate:"min=1"`
	MaxWindow  int64 `yaml:"max_window" validate:"min=1048576"`

	Skip         []string `yaml:"skip" validate:"dive,required"`
	LinkHost     string   `yaml:"link_host" validate:"required,url"`
	AuthorPrefix string   `yaml:"author_prefix"`
	CommentBOM   bool     `yaml:"comment_bom"`

	ProgressEvery int `yaml:"progress_every" validate:"min=0"`
}

// Defaults reproduce the published sample
func Defaults() Options {
	return Options{
		WindowStart:   classify.DefaultWindow.Start,
		WindowEnd:     classify.DefaultWindow.End,
		Quota:         quota.DefaultQuota,
		Threshold:     quota.DefaultThreshold,
		ReservoirK:    reservoir.DefaultK,
		Seed:          reservoir.DefaultSeed,
		Policy:        string(reservoir.PolicyLegacy),
		ChunkBytes:    archive.DefaultChunkBytes,
		MaxWindow:     archive.DefaultMaxWindow,
		Skip:          append([]string(nil), classify.DefaultSkip...),
		LinkHost:      csvout.DefaultLinkHost,
		AuthorPrefix:  csvout.DefaultAuthorPrefix,
		CommentBOM:    true,
		ProgressEvery: 1_000_000,
	}
}

// FromConfig layers defaults, an optional YAML profile and CORE_SAMPLER_ env overrides, then validates.
// profile wins over CORE_SAMPLER_CONFIG when both are set
func FromConfig(cfg config.Conf, profile string) (Options, error) {
	sc := cfg.Prefix("CORE_SAMPLER_")
	o := Defaults()

	if profile == "" {
		profile = sc.MayString("CONFIG", "")
	}
	if profile != "" {
		if err := loadProfile(profile, &o); err != nil {
			return Options{}, err
		}
	}

	o.WindowStart = sc.MayTime("WINDOW_START", o.WindowStart)
	o.WindowEnd = sc.MayTime("WINDOW_END", o.WindowEnd)
	o.Quota = sc.MayInt("QUOTA", o.Quota)
	o.Threshold = sc.MayInt("THRESHOLD", o.Threshold)
	o.ReservoirK = sc.MayInt("RESERVOIR_K", o.ReservoirK)
	o.Seed = sc.MayInt64("SEED", o.Seed)
	o.Policy = strings.ToLower(sc.MayString("POLICY", o.Policy))
	o.EarlyStop = sc.MayBool("EARLY_STOP", o.EarlyStop)
	o.ChunkBytes = sc.MayInt("CHUNK_BYTES", o.ChunkBytes)
	o.MaxWindow = sc.MayInt64("MAX_WINDOW", o.MaxWindow)
	o.Skip = sc.MayCSV("SKIP", o.Skip)
	o.LinkHost = sc.MayString("LINK_HOST", o.LinkHost)
	o.AuthorPrefix = sc.MayString("AUTHOR_PREFIX", o.AuthorPrefix)
	o.CommentBOM = sc.MayBool("COMMENT_BOM", o.CommentBOM)
	o.ProgressEvery = sc.MayInt("PROGRESS_EVERY", o.ProgressEvery)

	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate checks field constraints and the policy/early-stop combination
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return err
	}
	return o.Sampler().Validate()
}

// Classifier builds the shared record classifier
func (o Options) Classifier() classify.Classifier {
	return classify.New(o.Skip, classify.Window{Start: o.WindowStart, End: o.WindowEnd})
}

// Sampler builds the reservoir sampler; the service attaches a fresh Rand per run
func (o Options) Sampler() reservoir.Sampler {
	return reservoir.Sampler{
		K:             o.ReservoirK,
		Policy:        reservoir.Policy(o.Policy),
		EarlyStop:     o.EarlyStop,
		ProgressEvery: o.ProgressEvery,
	}
}

// NewRand returns a factory of Rand sources seeded with Seed
func (o Options) NewRand() func() reservoir.Rand {
	seed := o.Seed
	return func() reservoir.Rand { return reservoir.NewRand(seed) }
}

// Selector builds the quota selector
func (o Options) Selector() quota.Selector {
	return quota.Selector{
		Quota:         o.Quota,
		Threshold:     o.Threshold,
		Classifier:    o.Classifier(),
		ProgressEvery: o.ProgressEvery,
	}
}

// Archive returns the decoder options
func (o Options) Archive() archive.Options {
	return archive.Options{ChunkBytes: o.ChunkBytes, MaxWindow: o.MaxWindow}
}

// Format returns the table presentation options
func (o Options) Format() csvout.Format {
	return csvout.Format{AuthorPrefix: o.AuthorPrefix, LinkHost: o.LinkHost, BOM: o.CommentBOM}
}

func loadProfile(path string, o *Options) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "options profile %s not found", path), "config")
		}
		return perr.Wrapf(err, perr.ErrorCodeIO, "read options profile %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(o); err != nil && !errors.Is(err, io.EOF) {
		return perr.WithField(perr.Wrapf(err, perr.ErrorCodeConfig, "parse options profile %s", path), "config")
	}
	return nil
}
