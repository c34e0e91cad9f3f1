// Package gesture turns pointer input into layout mutations.
//
// The Controller owns every piece of transient UI state that is not part of the
// placement model: edit mode, the long-press that enters it, the single drag in
// flight, the open folder view and the clock widget flag.
//
// Gesture Lifecycle:
//   - PressStart / PressMove / PressEnd drive the long-press detector
//   - BeginDrag is only accepted in edit mode while no other drag is active
//   - Drop hit-tests the release point against a Scene of zone and icon bounds
//     and dispatches to one layout operation
//   - Cancel, or a release outside every zone, leaves the model unchanged
//
// Phases:
//
//	idle -> dragging(item, type, source) -> resolving(point) -> idle
//
// The controller never mutates a model. Drop returns an Outcome holding the next
// model, and the caller decides whether to keep and persist it.
package gesture
