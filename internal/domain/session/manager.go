package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/phoneshell/internal/domain/gesture"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
)

// Mutation results
const (
	ResultApplied = "applied"
	ResultNoOp    = "noop"
	ResultInvalid = "invalid"
)

// Update types published to the UI stream
const (
	UpdateLayout  = "layout"
	UpdateState   = "state"
	UpdateVisible = "visible"
	UpdateCall    = "incomingCall"
	UpdateUnits   = "units"
)

// Persister loads and saves layouts. persist.Adapter implements it.
type Persister interface {
	Load(ctx context.Context, player, job string) layout.Model
	Restore(player string, p layout.Partial, job string) layout.Model
	Save(player string, m layout.Model)
}

// Publisher delivers updates to a player's UI
type Publisher interface {
	Publish(player string, u Update)
}

// Update is one message on a player's UI stream
type Update struct {
	Type string `json:"type"`
	Snapshot
}

// Result reports the outcome of a mutation or drop
type Result struct {
	Changed  bool           `json:"changed"`
	Reason   string         `json:"reason,omitempty"`
	Action   gesture.Action `json:"action,omitempty"`
	Snapshot Snapshot       `json:"snapshot"`
}

// Manager holds the phones of all players
type Manager struct {
	phones sync.Map // player -> *Phone

	engine    *layout.Engine
	store     Persister
	publisher Publisher
	logger    *zap.Logger
	metrics   *monitoring.Metrics

	longPress time.Duration
	now       func() time.Time
	onLoad    func(player string, m layout.Model)

	count int64
	mu    sync.Mutex
}

// Option configures a Manager
type Option func(*Manager)

// WithLongPress sets the edit mode hold threshold for new phones
func WithLongPress(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.longPress = d
		}
	}
}

// WithMetrics records mutations and active phones
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithClock overrides the time source for press handling
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLoadHook is called with every layout received from the bridge
func WithLoadHook(fn func(player string, m layout.Model)) Option {
	return func(m *Manager) { m.onLoad = fn }
}

// NewManager creates a session manager. A nil publisher discards updates.
func NewManager(engine *layout.Engine, store Persister, publisher Publisher, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		engine:    engine,
		store:     store,
		publisher: publisher,
		logger:    logger,
		longPress: gesture.DefaultLongPress,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Engine returns the layout engine phones mutate through
func (m *Manager) Engine() *layout.Engine {
	return m.engine
}

// phone returns the player's phone, loading it from the store on first use
func (m *Manager) phone(ctx context.Context, player string) (*Phone, error) {
	if player == "" {
		return nil, ErrNoPlayer
	}
	if p, ok := m.phones.Load(player); ok {
		return p.(*Phone), nil
	}

	model := m.store.Load(ctx, player, "")
	fresh := &Phone{
		player:  player,
		model:   model,
		ctrl:    gesture.NewController(m.engine, gesture.WithLongPress(m.longPress)),
		touched: m.now(),
	}
	actual, loaded := m.phones.LoadOrStore(player, fresh)
	if !loaded {
		m.adjustCount(1)
		m.logger.Debug("Phone session created", zap.String("player", player))
	}
	return actual.(*Phone), nil
}

// ErrNoPlayer is returned for requests without a player id
var ErrNoPlayer = errors.New("session: player id required")

// Snapshot returns the player's phone, loading it if needed
func (m *Manager) Snapshot(ctx context.Context, player string) (Snapshot, error) {
	p, err := m.phone(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot(), nil
}

// Players lists the players with a phone in memory
func (m *Manager) Players() []string {
	var players []string
	m.phones.Range(func(key, _ any) bool {
		players = append(players, key.(string))
		return true
	})
	sort.Strings(players)
	return players
}

// Count returns the number of phones in memory
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.count)
}

// Evict forgets a player's phone. The stored layout is kept.
func (m *Manager) Evict(player string) bool {
	v, ok := m.phones.LoadAndDelete(player)
	if !ok {
		return false
	}
	p := v.(*Phone)
	p.mu.Lock()
	p.stopTimer()
	p.mu.Unlock()
	m.adjustCount(-1)
	return true
}

// EvictIdle forgets phones untouched for longer than maxIdle and returns how many
func (m *Manager) EvictIdle(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var idle []string
	m.phones.Range(func(key, value any) bool {
		p := value.(*Phone)
		p.mu.Lock()
		if p.touched.Before(cutoff) {
			idle = append(idle, key.(string))
		}
		p.mu.Unlock()
		return true
	})
	n := 0
	for _, player := range idle {
		if m.Evict(player) {
			n++
		}
	}
	return n
}

// Close stops all pending press timers
func (m *Manager) Close() {
	m.phones.Range(func(_, value any) bool {
		p := value.(*Phone)
		p.mu.Lock()
		p.stopTimer()
		p.mu.Unlock()
		return true
	})
}

func (m *Manager) adjustCount(delta int64) {
	m.mu.Lock()
	m.count += delta
	n := m.count
	m.mu.Unlock()
	m.metrics.SetPhonesActive(int(n))
}

// mutate runs op against the player's model under the phone lock. No-ops are
// returned as unchanged results; other errors are returned as-is.
func (m *Manager) mutate(ctx context.Context, player, operation string, op func(p *Phone) (layout.Model, error)) (Result, error) {
	p, err := m.phone(ctx, player)
	if err != nil {
		return Result{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touched = m.now()

	next, err := op(p)
	if err != nil {
		if errors.Is(err, layout.ErrNoOp) {
			return m.ignored(p, operation, err), nil
		}
		m.metrics.RecordMutation(operation, ResultInvalid)
		return Result{}, fmt.Errorf("%s: %w", operation, err)
	}
	return m.apply(p, operation, next), nil
}

// apply installs next as the phone's model; p.mu must be held
func (m *Manager) apply(p *Phone, operation string, next layout.Model) Result {
	p.model = next
	p.ctrl.Sync(next)
	p.version++

	m.store.Save(p.player, next)
	m.metrics.RecordMutation(operation, ResultApplied)
	m.logger.Debug("Layout changed",
		zap.String("player", p.player),
		zap.String("operation", operation),
		zap.Uint64("version", p.version),
	)

	snap := p.snapshot()
	m.publish(UpdateLayout, snap)
	return Result{Changed: true, Snapshot: snap}
}

// ignored reports a rejected gesture; p.mu must be held
func (m *Manager) ignored(p *Phone, operation string, err error) Result {
	reason := layout.Reason(err)
	m.metrics.RecordMutation(operation, ResultNoOp)
	m.logger.Debug("Gesture ignored",
		zap.String("player", p.player),
		zap.String("operation", operation),
		zap.String("reason", reason),
	)
	return Result{Reason: reason, Snapshot: p.snapshot()}
}

func (m *Manager) publish(kind string, snap Snapshot) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(snap.Player, Update{Type: kind, Snapshot: snap})
}

// MoveToContainer moves an app or folder between containers
func (m *Manager) MoveToContainer(ctx context.Context, player, item string, from, to layout.Container, index int) (Result, error) {
	return m.mutate(ctx, player, "moveToContainer", func(p *Phone) (layout.Model, error) {
		return m.engine.MoveToContainer(p.model, item, from, to, index)
	})
}

// CreateFolder groups two apps into a new folder
func (m *Manager) CreateFolder(ctx context.Context, player, dropped, target string) (Result, error) {
	return m.mutate(ctx, player, "createFolder", func(p *Phone) (layout.Model, error) {
		return m.engine.CreateFolder(p.model, dropped, target)
	})
}

// AddToFolder moves an app into a folder
func (m *Manager) AddToFolder(ctx context.Context, player, folderID, appID string) (Result, error) {
	return m.mutate(ctx, player, "addToFolder", func(p *Phone) (layout.Model, error) {
		return m.engine.AddToFolder(p.model, folderID, appID)
	})
}

// RemoveFromFolder moves an app out of a folder onto the home screen
func (m *Manager) RemoveFromFolder(ctx context.Context, player, folderID, appID string) (Result, error) {
	return m.mutate(ctx, player, "removeFromFolder", func(p *Phone) (layout.Model, error) {
		return m.engine.RemoveFromFolder(p.model, folderID, appID)
	})
}

// RenameFolder renames a folder
func (m *Manager) RenameFolder(ctx context.Context, player, folderID, name string) (Result, error) {
	return m.mutate(ctx, player, "renameFolder", func(p *Phone) (layout.Model, error) {
		return m.engine.RenameFolder(p.model, folderID, name)
	})
}

// Reorder replaces the order of one container
func (m *Manager) Reorder(ctx context.Context, player string, c layout.Container, ordered []string) (Result, error) {
	return m.mutate(ctx, player, "reorder", func(p *Phone) (layout.Model, error) {
		return m.engine.ReorderWithinContainer(p.model, c, ordered)
	})
}

// Uninstall removes a removable app
func (m *Manager) Uninstall(ctx context.Context, player, appID string) (Result, error) {
	return m.mutate(ctx, player, "uninstallApp", func(p *Phone) (layout.Model, error) {
		return m.engine.UninstallApp(p.model, appID)
	})
}

// Install adds an app the player's job allows
func (m *Manager) Install(ctx context.Context, player, appID string) (Result, error) {
	return m.mutate(ctx, player, "installApp", func(p *Phone) (layout.Model, error) {
		return m.engine.InstallApp(p.model, appID, p.job)
	})
}

// gesture runs a controller step under the phone lock and publishes the new state
func (m *Manager) gesture(ctx context.Context, player string, step func(p *Phone) error) (Snapshot, error) {
	p, err := m.phone(ctx, player)
	if err != nil {
		return Snapshot{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touched = m.now()

	if err := step(p); err != nil {
		return p.snapshot(), err
	}
	snap := p.snapshot()
	m.publish(UpdateState, snap)
	return snap, nil
}

// PressStart arms the long-press on an icon or the clock widget. Holding it for
// the threshold enters edit mode even without further events.
func (m *Manager) PressStart(ctx context.Context, player, target string, at r2.Vec) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.stopTimer()
		p.ctrl.PressStart(target, m.now(), at)
		p.timer = time.AfterFunc(p.ctrl.LongPress(), func() { m.firePress(p) })
		return nil
	})
}

func (m *Manager) firePress(p *Phone) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = nil
	if p.ctrl.Tick(m.now()) {
		m.logger.Debug("Edit mode entered", zap.String("player", p.player))
		m.publish(UpdateState, p.snapshot())
	}
}

// PressMove cancels the long-press when the pointer wanders off
func (m *Manager) PressMove(ctx context.Context, player string, at r2.Vec) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		if p.ctrl.PressMove(at) {
			p.stopTimer()
		}
		return nil
	})
}

// PressEnd releases the press
func (m *Manager) PressEnd(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.stopTimer()
		p.ctrl.PressEnd(m.now())
		return nil
	})
}

// EnterEditMode switches edit mode on directly
func (m *Manager) EnterEditMode(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.stopTimer()
		p.ctrl.EnterEditMode()
		return nil
	})
}

// Done leaves edit mode, cancelling any drag
func (m *Manager) Done(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.ctrl.ExitEditMode()
		return nil
	})
}

// BeginDrag picks up an item
func (m *Manager) BeginDrag(ctx context.Context, player, item string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		_, err := p.ctrl.BeginDrag(p.model, item)
		return err
	})
}

// CancelDrag abandons the drag in flight
func (m *Manager) CancelDrag(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.ctrl.Cancel()
		return nil
	})
}

// OpenFolder shows a folder's contents
func (m *Manager) OpenFolder(ctx context.Context, player, folderID string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		return p.ctrl.OpenFolder(p.model, folderID)
	})
}

// CloseFolder hides the open folder
func (m *Manager) CloseFolder(ctx context.Context, player string) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.ctrl.CloseFolder()
		return nil
	})
}

// SetClockWidgetVisible shows or hides the clock widget
func (m *Manager) SetClockWidgetVisible(ctx context.Context, player string, visible bool) (Snapshot, error) {
	return m.gesture(ctx, player, func(p *Phone) error {
		p.ctrl.SetClockWidgetVisible(visible)
		return nil
	})
}

// Drop releases the drag in flight at point at of scene
func (m *Manager) Drop(ctx context.Context, player string, at r2.Vec, scene gesture.Scene) (Result, error) {
	return m.DropOn(ctx, player, scene.HitTest(at))
}

// DropOn releases the drag in flight on an already resolved target
func (m *Manager) DropOn(ctx context.Context, player string, hit gesture.Hit) (Result, error) {
	p, err := m.phone(ctx, player)
	if err != nil {
		return Result{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touched = m.now()

	out, err := p.ctrl.DropOn(p.model, hit)
	if err != nil {
		return Result{Snapshot: p.snapshot()}, err
	}

	operation := "drop:" + out.Action.String()
	var res Result
	if out.Err != nil {
		res = m.ignored(p, operation, out.Err)
		m.publish(UpdateState, res.Snapshot)
	} else {
		res = m.apply(p, operation, out.Model)
	}
	res.Action = out.Action
	return res, nil
}
