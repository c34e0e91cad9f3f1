package persist

import (
	"context"
	"errors"
	"strings"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// Mirror reads from the primary store and writes to every store
type Mirror struct {
	primary  Store
	replicas []Store
}

// NewMirror creates a mirror. Nil replicas are ignored.
func NewMirror(primary Store, replicas ...Store) *Mirror {
	m := &Mirror{primary: primary}
	for _, r := range replicas {
		if r != nil {
			m.replicas = append(m.replicas, r)
		}
	}
	return m
}

// Name joins the backend names, e.g. "sqlite+bridge"
func (m *Mirror) Name() string {
	names := []string{m.primary.Name()}
	for _, r := range m.replicas {
		names = append(names, r.Name())
	}
	return strings.Join(names, "+")
}

// Load reads from the primary only
func (m *Mirror) Load(ctx context.Context, player string) ([]byte, error) {
	return m.primary.Load(ctx, player)
}

// Save writes to every store and joins their errors
func (m *Mirror) Save(ctx context.Context, player string, model layout.Model) error {
	errs := []error{m.primary.Save(ctx, player, model)}
	for _, r := range m.replicas {
		errs = append(errs, r.Save(ctx, player, model))
	}
	return errors.Join(errs...)
}

// Close closes every store
func (m *Mirror) Close() error {
	errs := []error{m.primary.Close()}
	for _, r := range m.replicas {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
