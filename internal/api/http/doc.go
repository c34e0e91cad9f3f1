// Package http exposes phone layouts over a JSON API.
//
// Routes are grouped under /phones/:player:
//   - GET layout and catalog reads
//   - Layout mutations (install, uninstall, move, reorder, folders)
//   - Gesture steps (press, edit mode, drag, drop, folder view, clock widget)
//
// Ignored gestures answer 200 with "changed": false and the reason. Malformed
// input answers 400 and gestures out of sequence answer 409.
//
// The bridge posts push events to /bridge/events and the NUI forwards its
// console to /ui/logs.
package http
