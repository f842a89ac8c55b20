// Package modkit provides module wiring and core deps
package modkit

// Module is the common surface for pipeline modules that expose ports to commands
// keep this tiny so modules stay decoupled
type Module interface {
	// Ports returns a module specific port set for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}

// Builder constructs a Module from shared deps
// modules typically expose New(deps Deps) (Module, error)
type Builder func(Deps) (Module, error)
