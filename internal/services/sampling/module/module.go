// Package module wires the sampling pipeline from config and exposes its ports to commands
package module

import (
	"threadsample/internal/modkit"
	"threadsample/internal/services/sampling/domain"
	"threadsample/internal/services/sampling/ingest"
	"threadsample/internal/services/sampling/service"
)

// Ports defines the sampling module ports
type Ports struct {
	Selector domain.SelectorPort
	Sampler  domain.SamplerPort
	IDs      domain.IDsPort
	Verify   domain.VerifyPort
}

// Module implements the sampling module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the sampling module
// It resolves options from deps.Profile and deps.Cfg and wires the archive and file adapters
func New(deps modkit.Deps) (*Module, error) {
	opts, err := FromConfig(deps.Cfg, deps.Profile)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(deps, opts), nil
}

// NewWithOptions wires the module from already validated options
func NewWithOptions(deps modkit.Deps, opts Options) *Module {
	svc := service.New(
		ingest.NewArchiveOpener(opts.Archive()),
		ingest.NewFiles(),
		service.Config{
			Classifier: opts.Classifier(),
			Selector:   opts.Selector(),
			Sampler:    opts.Sampler(),
			NewRand:    opts.NewRand(),
			Format:     opts.Format(),
		},
	)

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Selector: svc, Sampler: svc, IDs: svc, Verify: svc}

	deps.Logger().Debug().
		Str("module", m.Name()).
		Time("window_start", opts.WindowStart).
		Time("window_end", opts.WindowEnd).
		Int("quota", opts.Quota).
		Int("threshold", opts.Threshold).
		Int("k", opts.ReservoirK).
		Str("policy", opts.Policy).
		Int64("seed", opts.Seed).
		Msg("module wired")
	return m
}

// Build adapts New to modkit.Builder
func Build(deps modkit.Deps) (modkit.Module, error) {
	m, err := New(deps)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var _ modkit.Builder = Build

// Name returns the module name
func (m *Module) Name() string { return "sampling" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Typed returns the ports without a type assertion
func (m *Module) Typed() Ports { return m.ports }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }
