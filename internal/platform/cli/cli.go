// Package cli holds the process plumbing shared by the batch commands
package cli

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"threadsample/internal/core/version"
	perr "threadsample/internal/platform/errors"
	"threadsample/internal/platform/logger"

	"github.com/google/uuid"
)

var newRunID = uuid.NewString // seam

// Main runs fn under Run and exits the process with its code
func Main(command string, fn func(ctx context.Context) error) {
	os.Exit(Run(context.Background(), command, fn))
}

// Run initializes logging for command, cancels ctx on SIGINT or SIGTERM, tags the run with a
// fresh run id and maps the error returned by fn to a process exit code
func Run(ctx context.Context, command string, fn func(ctx context.Context) error) int {
	bi := version.Info(command)
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = "threadsample"
	}
	if opt.Component == "" {
		opt.Component = command
	}
	opt.StaticFields = bi.Fields()
	logger.Init(opt)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRun(ctx, newRunID())
	log := logger.C(ctx)

	started := time.Now()
	err := fn(ctx)
	code := perr.ExitCode(err)
	if err != nil {
		ev := log.Error().Err(err).Int("exit", code)
		if e, ok := perr.As(err); ok {
			ev = ev.Str("code", e.Code().String())
			if e.Field() != "" {
				ev = ev.Str("field", e.Field())
			}
			if e.Op() != "" {
				ev = ev.Str("op", e.Op())
			}
		}
		ev.Dur("elapsed", time.Since(started)).Msg("command failed")
		return code
	}
	log.Info().Dur("elapsed", time.Since(started)).Msg("command finished")
	return 0
}

// Surface copies explicitly set flags into the environment under the mapped keys, so option
// loaders that read the environment see command line overrides
func Surface(fs *flag.FlagSet, keys map[string]string) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		key, ok := keys[f.Name]
		if !ok || err != nil {
			return
		}
		if serr := os.Setenv(key, f.Value.String()); serr != nil {
			err = perr.WithField(perr.Wrapf(serr, perr.ErrorCodeConfig, "set %s", key), f.Name)
		}
	})
	return err
}

// Usage prints a one-line synopsis followed by the flag defaults
func Usage(fs *flag.FlagSet, synopsis string) func() {
	return func() {
		out := fs.Output()
		_, _ = out.Write([]byte("usage: " + synopsis + "\n"))
		fs.PrintDefaults()
	}
}
