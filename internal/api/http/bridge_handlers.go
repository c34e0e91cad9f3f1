package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
)

// PushEvent applies one event pushed by the game-server bridge
func (h *Handlers) PushEvent(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.limit.ValidateSize(data); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	}

	ev, err := bridge.ParseEvent(data)
	if err != nil {
		h.logger.Debug("Rejected bridge event", zap.Error(err))
		h.fail(c, err)
		return
	}

	snap, err := h.manager.HandleEvent(c.Request.Context(), ev)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"type":     ev.Type,
		"snapshot": snap,
	})
}
