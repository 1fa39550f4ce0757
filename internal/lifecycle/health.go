package lifecycle

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) error
}

// DependencyCheck reports whether every dependency is reachable.
type DependencyCheck interface {
	Healthy(ctx context.Context) error
}

// Probes backs the liveness and readiness endpoints. Readiness fails while
// draining and whenever a dependency check fails.
type Probes struct {
	log      *slog.Logger
	deps     DependencyCheck
	draining atomic.Bool
}

var _ HealthChecker = (*Probes)(nil)

// NewProbes creates a new Probes instance. deps may be nil.
func NewProbes(log *slog.Logger, deps DependencyCheck) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{log: log, deps: deps}
}

// Liveness reports success while the process can serve requests.
func (p *Probes) Liveness(context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness runs the dependency checks.
func (p *Probes) Readiness(ctx context.Context) error {
	p.log.Debug("readiness probe called")
	if p.draining.Load() {
		return ErrDraining
	}
	if p.deps == nil {
		return nil
	}
	return p.deps.Healthy(ctx)
}

// Drain marks the process as shutting down.
func (p *Probes) Drain() {
	p.draining.Store(true)
}
