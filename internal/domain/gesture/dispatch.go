package gesture

import (
	"slices"

	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
)

// dropError is a no-op decided by the controller rather than the engine
type dropError struct {
	reason string
}

func (e *dropError) Error() string { return "gesture: " + e.reason }

func (e *dropError) Is(target error) bool { return target == layout.ErrNoOp }

func (e *dropError) Reason() string { return e.reason }

// ErrOutsideZones is the no-op for a release outside every drop zone
var ErrOutsideZones = &dropError{"released outside drop zones"}

// Action names the operation a drop was dispatched to
type Action int

const (
	ActionNone Action = iota
	ActionCreateFolder
	ActionAddToFolder
	ActionUndock
	ActionReorderHome
	ActionDockInsert
	ActionReorderDock
	ActionReorderFolder
	ActionRemoveFromFolder
)

var actionNames = map[Action]string{
	ActionNone:             "none",
	ActionCreateFolder:     "createFolder",
	ActionAddToFolder:      "addToFolder",
	ActionUndock:           "undock",
	ActionReorderHome:      "reorderHome",
	ActionDockInsert:       "dockInsert",
	ActionReorderDock:      "reorderDock",
	ActionReorderFolder:    "reorderFolder",
	ActionRemoveFromFolder: "removeFromFolder",
}

// String returns the string representation of the action
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// MarshalText encodes the action
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Outcome is the result of resolving a drop. Err holds the no-op reason when the
// model was left unchanged.
type Outcome struct {
	Action Action
	Model  layout.Model
	Err    error
}

// Changed reports whether the drop produced a new model
func (o Outcome) Changed() bool {
	return o.Err == nil && o.Action != ActionNone
}

// Resolve maps a drag and its drop target to one layout operation. Rules are
// checked in order: folder view drags, app on app, app on folder, main grid,
// dock. Anything else is a no-op.
func Resolve(e *layout.Engine, m layout.Model, d Drag, hit Hit) Outcome {
	if d.Source.Kind == layout.KindFolder {
		return resolveFromFolder(e, m, d, hit)
	}

	switch {
	case d.ItemType == ItemApp && hit.TargetType == ItemApp && hit.HasTarget() && hit.TargetID != d.ItemID:
		next, err := e.CreateFolder(m, d.ItemID, hit.TargetID)
		return Outcome{Action: ActionCreateFolder, Model: next, Err: err}

	case d.ItemType == ItemApp && hit.TargetType == ItemFolder && hit.HasTarget():
		next, err := e.AddToFolder(m, hit.TargetID, d.ItemID)
		return Outcome{Action: ActionAddToFolder, Model: next, Err: err}

	case hit.Zone == ZoneMain:
		return resolveMain(e, m, d, hit)

	case hit.Zone == ZoneDock:
		return resolveDock(e, m, d, hit)
	}

	return Outcome{Model: m, Err: ErrOutsideZones}
}

func resolveMain(e *layout.Engine, m layout.Model, d Drag, hit Hit) Outcome {
	if hit.TargetID == d.ItemID {
		return Outcome{Action: ActionReorderHome, Model: m, Err: layout.ErrSelfDrop}
	}

	if !hit.HasTarget() {
		if d.Source == layout.Dock {
			next, err := e.MoveToContainer(m, d.ItemID, layout.Dock, layout.Home, -1)
			return Outcome{Action: ActionUndock, Model: next, Err: err}
		}
		next, err := e.MoveToContainer(m, d.ItemID, d.Source, layout.Home, -1)
		return Outcome{Action: ActionReorderHome, Model: next, Err: err}
	}

	// a folder dropped on another home icon takes its place, pushing it right
	next, err := e.MoveToContainer(m, d.ItemID, d.Source, layout.Home, indexBefore(m.Home, d.ItemID, hit.TargetID))
	return Outcome{Action: ActionReorderHome, Model: next, Err: err}
}

func resolveDock(e *layout.Engine, m layout.Model, d Drag, hit Hit) Outcome {
	if d.ItemType != ItemApp {
		return Outcome{Action: ActionDockInsert, Model: m, Err: layout.ErrFolderNotMovable}
	}
	if hit.TargetID == d.ItemID {
		return Outcome{Action: ActionReorderDock, Model: m, Err: layout.ErrSelfDrop}
	}

	index := indexBefore(m.Dock, d.ItemID, hit.TargetID)
	if d.Source == layout.Dock {
		next, err := e.MoveToContainer(m, d.ItemID, layout.Dock, layout.Dock, index)
		return Outcome{Action: ActionReorderDock, Model: next, Err: err}
	}
	next, err := e.MoveToContainer(m, d.ItemID, d.Source, layout.Dock, index)
	return Outcome{Action: ActionDockInsert, Model: next, Err: err}
}

func resolveFromFolder(e *layout.Engine, m layout.Model, d Drag, hit Hit) Outcome {
	switch hit.Zone {
	case ZoneMain, ZoneDock:
		next, err := e.RemoveFromFolder(m, d.Source.FolderID, d.ItemID)
		return Outcome{Action: ActionRemoveFromFolder, Model: next, Err: err}
	case ZoneFolderView:
	default:
		return Outcome{Model: m, Err: ErrOutsideZones}
	}
	if hit.TargetID == d.ItemID {
		return Outcome{Action: ActionReorderFolder, Model: m, Err: layout.ErrSelfDrop}
	}

	members := m.Items(d.Source)
	next, err := e.MoveToContainer(m, d.ItemID, d.Source, d.Source, indexBefore(members, d.ItemID, hit.TargetID))
	return Outcome{Action: ActionReorderFolder, Model: next, Err: err}
}

// indexBefore returns the slot in items, with item taken out, just before target.
// A missing target yields -1, which appends.
func indexBefore(items []string, item, target string) int {
	if target == "" {
		return -1
	}
	rest := slices.DeleteFunc(slices.Clone(items), func(id string) bool { return id == item })
	return slices.Index(rest, target)
}
