package modkit

import (
	"threadsample/internal/platform/config"
	"threadsample/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf

	// Profile is an optional YAML options file layered under env overrides
	Profile string
}

// ZeroOK returns true when deps are safe to use with zero values in tests
func (d Deps) ZeroOK() bool { return true }

// Logger returns Log or the root logger when unset
func (d Deps) Logger() *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Get()
}
