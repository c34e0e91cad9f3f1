package layout

import "errors"

// ErrNoOp is matched by every rejected gesture. Rejections leave the model untouched
// and are never shown to the player.
var ErrNoOp = errors.New("layout: no-op")

// noOpError is a specific no-op reason
type noOpError struct {
	reason string
}

func (e *noOpError) Error() string { return "layout: " + e.reason }

// Is lets errors.Is(err, ErrNoOp) match every reason
func (e *noOpError) Is(target error) bool { return target == ErrNoOp }

// Reason returns the short label used in logs and metrics
func (e *noOpError) Reason() string { return e.reason }

var (
	ErrSelfDrop         = &noOpError{"self drop"}
	ErrDockFull         = &noOpError{"dock full"}
	ErrNotInstalled     = &noOpError{"app not installed"}
	ErrAlreadyInstalled = &noOpError{"app already installed"}
	ErrUnknownApp       = &noOpError{"app not in catalog"}
	ErrJobRestricted    = &noOpError{"app restricted to other jobs"}
	ErrNotRemovable     = &noOpError{"app not removable"}
	ErrFolderNotFound   = &noOpError{"folder not found"}
	ErrNotInContainer   = &noOpError{"item not in source container"}
	ErrNotBareApp       = &noOpError{"item is not a bare app"}
	ErrFolderNotMovable = &noOpError{"folders only move within home"}
	ErrEmptyName        = &noOpError{"empty folder name"}
	ErrUnchanged        = &noOpError{"nothing to change"}
)

// ErrNotPermutation is returned when a reorder does not keep the container's contents.
// It signals a caller bug, not an ignored gesture.
var ErrNotPermutation = errors.New("layout: order is not a permutation of the container")

// Reason extracts the no-op label from err, or "" if err is not a no-op
func Reason(err error) string {
	var r interface{ Reason() string }
	if errors.Is(err, ErrNoOp) && errors.As(err, &r) {
		return r.Reason()
	}
	return ""
}
