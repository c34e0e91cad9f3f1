package bridge

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/persist"
)

// Store is a write-only persist.Store that syncs layouts to the game client.
// Only events whose values changed since the last successful send are posted.
type Store struct {
	sender Sender
	logger *zap.Logger

	mu   sync.Mutex
	last map[string]Outbound
}

var _ persist.Store = (*Store)(nil)

// NewStore creates a bridge store over sender
func NewStore(sender Sender, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sender: sender,
		logger: logger,
		last:   make(map[string]Outbound),
	}
}

// Name returns "bridge"
func (s *Store) Name() string { return "bridge" }

// Load always returns persist.ErrNotFound. The bridge pushes layouts with
// loadData instead of being queried.
func (s *Store) Load(ctx context.Context, player string) ([]byte, error) {
	return nil, persist.ErrNotFound
}

// Remember records m as already known to the game client, typically right after
// it arrived with loadData
func (s *Store) Remember(player string, m layout.Model) {
	out, err := EncodeOutbound(player, m)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[player] = out
}

// Forget drops the last known state of player so the next save sends everything
func (s *Store) Forget(player string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.last, player)
}

// Save posts the changed parts of m. Disabled senders make this a no-op.
func (s *Store) Save(ctx context.Context, player string, m layout.Model) error {
	if !s.sender.Enabled() {
		return nil
	}

	out, err := EncodeOutbound(player, m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev, seen := s.last[player]
	s.mu.Unlock()

	var errs []error
	next := prev

	if !seen || prev.Installed != out.Installed {
		if err := s.sender.Send(ctx, EventInstalledApps, out.Installed); err != nil {
			errs = append(errs, err)
		} else {
			next.Installed = out.Installed
		}
	}
	if !seen || prev.Dock != out.Dock {
		if err := s.sender.Send(ctx, EventDockOrder, out.Dock); err != nil {
			errs = append(errs, err)
		} else {
			next.Dock = out.Dock
		}
	}
	if !seen || prev.Layout != out.Layout {
		if err := s.sender.Send(ctx, EventLayout, out.Layout); err != nil {
			errs = append(errs, err)
		} else {
			next.Layout = out.Layout
		}
	}

	s.mu.Lock()
	s.last[player] = next
	s.mu.Unlock()

	if len(errs) > 0 {
		s.logger.Debug("Bridge sync incomplete", zap.String("player", player), zap.Int("failed", len(errs)))
	}
	return errors.Join(errs...)
}

// Close is a no-op
func (s *Store) Close() error { return nil }
