package gesture

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

const (
	// DefaultLongPress is how long an icon or the clock widget must be held to
	// enter edit mode
	DefaultLongPress = 700 * time.Millisecond
	// DefaultMoveSlop is how far a press may wander before it stops counting
	DefaultMoveSlop = 10.0
)

var (
	ErrNotEditing     = errors.New("gesture: not in edit mode")
	ErrEditing        = errors.New("gesture: folders do not open in edit mode")
	ErrDragInProgress = errors.New("gesture: a drag is already in progress")
	ErrNoDrag         = errors.New("gesture: no drag in progress")
	ErrNotDraggable   = errors.New("gesture: item is not visible")
)

// Phase is the drag state machine position
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseResolving
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseDragging:
		return "dragging"
	case PhaseResolving:
		return "resolving"
	default:
		return "idle"
	}
}

// MarshalText encodes the phase
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Drag is the item being dragged and where it came from
type Drag struct {
	ItemID   string           `json:"itemId"`
	ItemType ItemType         `json:"itemType"`
	Source   layout.Container `json:"source"`
}

type press struct {
	target string
	start  time.Time
	at     r2.Vec
}

// State is a snapshot of the controller
type State struct {
	EditMode           bool   `json:"editMode"`
	Phase              Phase  `json:"phase"`
	Drag               *Drag  `json:"drag,omitempty"`
	OpenFolder         string `json:"openFolder,omitempty"`
	ClockWidgetVisible bool   `json:"clockWidgetVisible"`
	Pressing           string `json:"pressing,omitempty"`
}

// Controller interprets gestures for one phone. It is not safe for concurrent
// use; the owning session serializes access.
type Controller struct {
	engine    *layout.Engine
	longPress time.Duration
	moveSlop  float64

	editMode   bool
	phase      Phase
	drag       Drag
	press      *press
	openFolder string
	clock      bool
}

// Option configures a Controller
type Option func(*Controller)

// WithLongPress sets the edit mode hold threshold
func WithLongPress(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.longPress = d
		}
	}
}

// WithMoveSlop sets how far a press may move before it is cancelled
func WithMoveSlop(px float64) Option {
	return func(c *Controller) {
		if px >= 0 {
			c.moveSlop = px
		}
	}
}

// NewController creates a controller in idle, non-edit state
func NewController(engine *layout.Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:    engine,
		longPress: DefaultLongPress,
		moveSlop:  DefaultMoveSlop,
		clock:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LongPress returns the edit mode hold threshold
func (c *Controller) LongPress() time.Duration {
	return c.longPress
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	s := State{
		EditMode:           c.editMode,
		Phase:              c.phase,
		OpenFolder:         c.openFolder,
		ClockWidgetVisible: c.clock,
	}
	if c.phase != PhaseIdle {
		d := c.drag
		s.Drag = &d
	}
	if c.press != nil {
		s.Pressing = c.press.target
	}
	return s
}

// EditMode reports whether icons can be dragged and deleted
func (c *Controller) EditMode() bool {
	return c.editMode
}

// EnterEditMode switches edit mode on
func (c *Controller) EnterEditMode() {
	c.editMode = true
	c.press = nil
}

// ExitEditMode is the "Done" action. An unfinished drag is cancelled.
func (c *Controller) ExitEditMode() {
	c.editMode = false
	c.press = nil
	c.Cancel()
}

// PressStart arms the long-press detector for target, an icon id or "clock"
func (c *Controller) PressStart(target string, at time.Time, p r2.Vec) {
	c.press = &press{target: target, start: at, at: p}
}

// PressMove cancels the pending long-press once the pointer leaves the slop radius
func (c *Controller) PressMove(p r2.Vec) bool {
	if c.press == nil {
		return false
	}
	if r2.Norm(r2.Sub(p, c.press.at)) > c.moveSlop {
		c.press = nil
		return true
	}
	return false
}

// Tick fires the long-press if it has been held long enough. It returns true when
// edit mode was entered by this call.
func (c *Controller) Tick(now time.Time) bool {
	if c.press == nil || now.Sub(c.press.start) < c.longPress {
		return false
	}
	entered := !c.editMode
	c.EnterEditMode()
	return entered
}

// PressEnd releases the press. Holding for the threshold enters edit mode even if
// no tick fired while it was held.
func (c *Controller) PressEnd(at time.Time) bool {
	entered := c.Tick(at)
	c.press = nil
	return entered
}

// BeginDrag starts dragging item. Only visible items can be picked up: folder
// members while their folder view is open, everything else while it is closed.
func (c *Controller) BeginDrag(m layout.Model, item string) (Drag, error) {
	if !c.editMode {
		return Drag{}, ErrNotEditing
	}
	if c.phase != PhaseIdle {
		return Drag{}, ErrDragInProgress
	}

	source := m.ContainerOf(item)
	d := Drag{ItemID: item, ItemType: ItemApp, Source: source}
	switch source.Kind {
	case layout.KindNone:
		return Drag{}, ErrNotDraggable
	case layout.KindFolder:
		if c.openFolder != source.FolderID {
			return Drag{}, ErrNotDraggable
		}
	default:
		if c.openFolder != "" {
			return Drag{}, ErrNotDraggable
		}
	}
	if m.IsFolder(item) {
		d.ItemType = ItemFolder
	}

	c.phase = PhaseDragging
	c.drag = d
	c.press = nil
	return d, nil
}

// Drag returns the drag in flight
func (c *Controller) Drag() (Drag, bool) {
	return c.drag, c.phase != PhaseIdle
}

// Cancel abandons the drag in flight
func (c *Controller) Cancel() {
	c.phase = PhaseIdle
	c.drag = Drag{}
}

// Drop resolves the drag in flight at point p of scene and returns the outcome.
// The controller is idle again afterwards whatever the result.
func (c *Controller) Drop(m layout.Model, p r2.Vec, scene Scene) (Outcome, error) {
	return c.DropOn(m, scene.HitTest(p))
}

// DropOn resolves the drag in flight against an already hit-tested target
func (c *Controller) DropOn(m layout.Model, hit Hit) (Outcome, error) {
	if c.phase != PhaseDragging {
		return Outcome{}, ErrNoDrag
	}
	c.phase = PhaseResolving
	d := c.drag
	defer c.Cancel()

	out := Resolve(c.engine, m, d, hit)
	if out.Action == ActionRemoveFromFolder && out.Err == nil {
		c.openFolder = ""
	}
	return out, nil
}

// OpenFolder shows a folder's contents. Folders only open outside edit mode.
func (c *Controller) OpenFolder(m layout.Model, folderID string) error {
	if c.editMode {
		return ErrEditing
	}
	if !m.IsFolder(folderID) {
		return layout.ErrFolderNotFound
	}
	c.openFolder = folderID
	return nil
}

// CloseFolder hides the open folder view
func (c *Controller) CloseFolder() {
	c.openFolder = ""
}

// Sync drops state that refers to items no longer in m
func (c *Controller) Sync(m layout.Model) {
	if c.openFolder != "" && !m.IsFolder(c.openFolder) {
		c.openFolder = ""
	}
	if c.phase != PhaseIdle && m.ContainerOf(c.drag.ItemID) != c.drag.Source {
		c.Cancel()
	}
}

// SetClockWidgetVisible shows or hides the clock widget
func (c *Controller) SetClockWidgetVisible(visible bool) {
	c.clock = visible
}

// ClockWidgetVisible reports whether the clock widget is shown
func (c *Controller) ClockWidgetVisible() bool {
	return c.clock
}
