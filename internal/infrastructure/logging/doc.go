// Package logging provides structured logging using uber/zap.
//
// Production writes sampled JSON tagged with the service name; development
// writes a coloured console stream. Subsystems log through named children
// (session, persist, bridge, ws) so entries can be filtered by the "logger"
// field. The level is shared by every child and can be changed at runtime
// through LevelHandler, which the server mounts at /log/level.
//
//	logger := logging.NewOrNop(logging.Config{Level: cfg.Logging.Level})
//	log := logger.Component(logging.Persist)
//	log.Warn("Failed to save layout", zap.String("player", id), zap.Error(err))
package logging
