package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
)

const (
	DefaultQueueSize    = 256
	DefaultWriteTimeout = 5 * time.Second
)

// ErrClosed is returned by Close when called twice
var ErrClosed = errors.New("persist: adapter closed")

// Adapter loads layouts synchronously and saves them in the background
type Adapter struct {
	store   Store
	engine  *layout.Engine
	logger  *zap.Logger
	metrics *monitoring.Metrics
	timeout time.Duration
	limit   int

	mu      sync.Mutex
	pending map[string]layout.Model
	// writing holds the model handed to the store until Save returns
	writing map[string]layout.Model
	queue   chan string
	idle    chan struct{}
	closed  bool
	done    chan struct{}
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithQueueSize bounds how many players may have an unwritten save
func WithQueueSize(n int) AdapterOption {
	return func(a *Adapter) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithWriteTimeout bounds a single store write
func WithWriteTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithMetrics records loads, saves and drops
func WithMetrics(m *monitoring.Metrics) AdapterOption {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter creates an adapter and starts its writer
func NewAdapter(store Store, engine *layout.Engine, logger *zap.Logger, opts ...AdapterOption) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		store:   store,
		engine:  engine,
		logger:  logger.Named("persist"),
		timeout: DefaultWriteTimeout,
		limit:   DefaultQueueSize,
		pending: make(map[string]layout.Model),
		writing: make(map[string]layout.Model),
		idle:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	close(a.idle)
	a.queue = make(chan string, a.limit)

	go a.run()
	return a
}

// Backend returns the store name
func (a *Adapter) Backend() string {
	return a.store.Name()
}

// Load returns the player's layout. Missing or unreadable data yields defaults
// for the affected fields; Load never fails.
func (a *Adapter) Load(ctx context.Context, player, job string) layout.Model {
	a.mu.Lock()
	m, ok := a.pending[player]
	if !ok {
		m, ok = a.writing[player]
	}
	a.mu.Unlock()
	if ok {
		return m.Clone()
	}

	timer := monitoring.NewTimer(a.metrics, a.store.Name(), "load")
	data, err := a.store.Load(ctx, player)
	switch {
	case errors.Is(err, ErrNotFound):
		timer.Stop("not_found")
		a.logger.Debug("No stored layout, using defaults", zap.String("player", player))
		return a.engine.Default(job)
	case err != nil:
		timer.Stop("error")
		a.logger.Warn("Failed to load layout, using defaults", zap.String("player", player), zap.Error(err))
		return a.engine.Default(job)
	}
	timer.Stop("success")

	return a.Restore(player, Decode(data), job)
}

// Restore normalizes a decoded record, logging which fields fell back to defaults
func (a *Adapter) Restore(player string, p layout.Partial, job string) layout.Model {
	if p.Missing != 0 {
		a.logger.Warn("Stored layout incomplete, defaulting fields",
			zap.String("player", player),
			zap.Stringer("fields", p.Missing),
		)
	}
	m := a.engine.Normalize(p, job)
	if err := layout.Validate(m, a.engine.MaxDock()); err != nil {
		a.logger.Error("Normalized layout still invalid, using defaults", zap.String("player", player), zap.Error(err))
		return a.engine.Default(job)
	}
	return m
}

// Save queues m for writing and returns immediately. A newer save for the same
// player replaces an unwritten older one.
func (a *Adapter) Save(player string, m layout.Model) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		a.drop(player, "adapter closed")
		return
	}
	if _, queued := a.pending[player]; queued {
		a.pending[player] = m.Clone()
		return
	}
	if len(a.pending) >= a.limit {
		a.drop(player, "queue full")
		return
	}

	a.busy()
	a.pending[player] = m.Clone()
	a.queue <- player
}

// Flush waits until every queued save has been written
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	idle := a.idle
	a.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is queued, stops the writer and closes the store
func (a *Adapter) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.store.Close()
}

// Pending returns the number of players with an unwritten save
func (a *Adapter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending) + len(a.writing)
}

func (a *Adapter) run() {
	defer close(a.done)

	for player := range a.queue {
		a.mu.Lock()
		m, ok := a.pending[player]
		delete(a.pending, player)
		if ok {
			a.writing[player] = m
		}
		a.mu.Unlock()

		if ok {
			a.write(player, m)
		}

		a.mu.Lock()
		if ok {
			delete(a.writing, player)
		}
		a.settle()
		a.mu.Unlock()
	}
}

func (a *Adapter) write(player string, m layout.Model) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	timer := monitoring.NewTimer(a.metrics, a.store.Name(), "save")
	if err := a.store.Save(ctx, player, m); err != nil {
		timer.Stop("error")
		a.logger.Warn("Failed to save layout", zap.String("player", player), zap.Error(err))
		return
	}
	timer.Stop("success")
	a.logger.Debug("Layout saved", zap.String("player", player), zap.String("backend", a.store.Name()))
}

// busy marks the adapter as having work. Caller holds mu.
func (a *Adapter) busy() {
	if len(a.pending) == 0 && len(a.writing) == 0 {
		a.idle = make(chan struct{})
	}
}

// settle releases Flush waiters once nothing is left. Caller holds mu.
func (a *Adapter) settle() {
	if len(a.pending) != 0 || len(a.writing) != 0 {
		return
	}
	select {
	case <-a.idle:
	default:
		close(a.idle)
	}
}

func (a *Adapter) drop(player, reason string) {
	a.metrics.RecordPersistDropped(a.store.Name())
	a.logger.Warn("Dropping layout save", zap.String("player", player), zap.String("reason", reason))
}
