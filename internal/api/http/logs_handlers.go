package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/phoneshell/internal/shared/utils"
)

// MaxLogEntries caps one log batch; the rest is counted as dropped
const MaxLogEntries = 200

// UILogEntry is one console line captured by the phone UI
type UILogEntry struct {
	ID        string         `json:"id"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
	Timestamp string         `json:"timestamp"`
}

// UILogStreamRequest is a batch of UI log lines
type UILogStreamRequest struct {
	Player    string       `json:"player"`
	Entries   []UILogEntry `json:"entries" binding:"required,min=1"`
	Timestamp int64        `json:"timestamp"`
}

// StreamLogs forwards UI console output into the service log under the "ui"
// logger, tagged with the player when one is given.
func (h *Handlers) StreamLogs(c *gin.Context) {
	var req UILogStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	logger := h.logger.Named("ui")
	if req.Player != "" {
		if err := utils.ValidatePlayer(req.Player); err != nil {
			badRequest(c, err)
			return
		}
		logger = logger.With(zap.String("player", req.Player))
	}

	entries, dropped := req.Entries, 0
	if len(entries) > MaxLogEntries {
		entries, dropped = entries[:MaxLogEntries], len(entries)-MaxLogEntries
		logger.Warn("UI log batch truncated", zap.Int("dropped", dropped))
	}
	for _, entry := range entries {
		logUIEntry(logger, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"entries_processed": len(entries),
		"dropped":           dropped,
	})
}

func logUIEntry(logger *zap.Logger, entry UILogEntry) {
	level := zapcore.InfoLevel
	switch entry.Level {
	case "error":
		level = zapcore.ErrorLevel
	case "warn":
		level = zapcore.WarnLevel
	case "debug", "verbose":
		level = zapcore.DebugLevel
	}

	fields := []zap.Field{zap.String("ui_log_id", entry.ID), zap.String("ui_timestamp", entry.Timestamp)}
	if len(entry.Context) > 0 {
		fields = append(fields, zap.Any("context", entry.Context))
	}
	logger.Log(level, entry.Message, fields...)
}
