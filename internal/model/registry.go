package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ontypehq/qtts/internal/logging"
)

// Registry loads each model kind on first use and keeps it for later calls.
type Registry struct {
	backend Backend
	specs   map[Kind]Spec

	// OnLoad, when set, is told before and after a model loads.
	OnLoad func(spec Spec, loaded bool)

	mu     sync.Mutex
	models map[Kind]Model
}

func NewRegistry(backend Backend, specs ...Spec) *Registry {
	r := &Registry{
		backend: backend,
		specs:   make(map[Kind]Spec, len(specs)),
		models:  make(map[Kind]Model, len(specs)),
	}
	for _, s := range specs {
		r.specs[s.Kind] = s
	}
	return r
}

func (r *Registry) Clone(ctx context.Context) (Model, error) {
	return r.get(ctx, KindClone)
}

func (r *Registry) Design(ctx context.Context) (Model, error) {
	return r.get(ctx, KindDesign)
}

// Loaded reports whether kind has been instantiated.
func (r *Registry) Loaded(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.models[kind]
	return ok
}

// get holds the lock across Load so two callers never load the same model.
// Failed loads are not remembered.
func (r *Registry) get(ctx context.Context, kind Kind) (Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.models[kind]; ok {
		return m, nil
	}
	spec, ok := r.specs[kind]
	if !ok {
		return nil, fmt.Errorf("no %s model configured", kind)
	}

	if r.OnLoad != nil {
		r.OnLoad(spec, false)
	}
	logging.Infof("loading %s model %s on %s via %s", kind, spec.ID, spec.Device, r.backend.Name())

	m, err := r.backend.Load(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("load %s model %s: %w", kind, spec.ID, err)
	}
	r.models[kind] = m

	if r.OnLoad != nil {
		r.OnLoad(spec, true)
	}
	return m, nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for kind, m := range r.models {
		if err := m.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s model: %w", kind, err))
		}
		delete(r.models, kind)
	}
	return errors.Join(errs...)
}
