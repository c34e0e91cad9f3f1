// Package persist stores and restores player layouts.
//
// A layout record has four fields: installed_apps, dock_order, folders and
// home_screen_order. Each field may be stored either as a JSON array or as a
// string holding a JSON array, which is how the game server keeps them. Decode
// never fails: unreadable fields are reported as missing and the layout engine
// fills in per-field defaults.
//
// Stores:
//   - MemoryStore: process local, used in tests and for STORAGE_BACKEND=memory
//   - FileStore: one JSON file per player
//   - SQLiteStore: a single table keyed by player
//   - Mirror: writes through to several stores, reads from the first
//
// The Adapter sits in front of a Store. Saves are queued and written by a
// background worker so callers never wait on storage; consecutive saves for
// the same player collapse into the latest one.
package persist
