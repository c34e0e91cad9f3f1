// Package session owns the phone of every connected player.
//
// A Phone pairs one layout.Model with one gesture.Controller behind a mutex,
// so gestures and mutations for a player run one at a time. Every applied
// change bumps the phone's version, is handed to the persistence adapter and is
// published to the player's UI stream. Rejected gestures leave the phone as it
// was and are reported as unchanged results, never as failures.
//
// Example Usage:
//
//	manager := session.NewManager(engine, adapter, hub, logger)
//	res, err := manager.CreateFolder(ctx, "license:abc", "mail", "notes")
//	if err == nil && !res.Changed {
//		logger.Debug("Ignored gesture", zap.String("reason", res.Reason))
//	}
package session
