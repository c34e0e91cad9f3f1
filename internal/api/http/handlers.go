package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/phoneshell/internal/bridge"
	"github.com/GriffinCanCode/phoneshell/internal/domain/gesture"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/domain/session"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/phoneshell/internal/shared/utils"
)

// Storage is the persistence view health checks need. persist.Adapter implements it.
type Storage interface {
	Backend() string
	Pending() int
}

// Outbound is the bridge view health checks need. bridge.Client implements it.
type Outbound interface {
	Enabled() bool
	Breaker() *resilience.Breaker
}

// Handlers contains all HTTP handlers
type Handlers struct {
	manager *session.Manager
	storage Storage
	bridge  Outbound
	metrics *monitoring.Metrics
	logger  *zap.Logger
	limit   *utils.SizeValidator
}

// NewHandlers creates a new handler set. storage and bridge may be nil.
func NewHandlers(manager *session.Manager, storage Storage, outbound Outbound, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		manager: manager,
		storage: storage,
		bridge:  outbound,
		metrics: metrics,
		logger:  logger,
		limit:   utils.NewSizeValidator(utils.MaxRequestSize),
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/catalog", h.Catalog)
	r.GET("/metrics/summary", h.Summary)

	r.POST("/bridge/events", h.bodyLimit, h.PushEvent)
	r.POST("/ui/logs", h.bodyLimit, h.StreamLogs)

	r.GET("/phones", h.ListPhones)
	phones := r.Group("/phones/:player", h.requirePlayer, h.bodyLimit)
	{
		phones.GET("/layout", h.GetLayout)
		phones.GET("/catalog", h.Installable)
		phones.DELETE("", h.EvictPhone)

		phones.POST("/apps", h.InstallApp)
		phones.DELETE("/apps/:app", h.UninstallApp)
		phones.POST("/move", h.MoveItem)
		phones.POST("/reorder", h.Reorder)

		phones.POST("/folders", h.CreateFolder)
		phones.PATCH("/folders/:folder", h.RenameFolder)
		phones.POST("/folders/:folder/apps", h.AddToFolder)
		phones.DELETE("/folders/:folder/apps/:app", h.RemoveFromFolder)

		phones.POST("/press", h.PressStart)
		phones.POST("/press/move", h.PressMove)
		phones.POST("/press/release", h.PressEnd)
		phones.POST("/edit", h.EnterEditMode)
		phones.DELETE("/edit", h.Done)
		phones.POST("/drag", h.BeginDrag)
		phones.DELETE("/drag", h.CancelDrag)
		phones.POST("/drop", h.Drop)
		phones.POST("/drop/target", h.DropOn)

		phones.PUT("/view/folder", h.OpenFolder)
		phones.DELETE("/view/folder", h.CloseFolder)
		phones.PUT("/view/clock", h.SetClockWidget)
		phones.DELETE("/call", h.EndCall)
	}
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "phoneshell",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status": "healthy",
		"phones": h.manager.Count(),
	}
	if h.storage != nil {
		resp["storage"] = gin.H{
			"backend": h.storage.Backend(),
			"pending": h.storage.Pending(),
		}
	}
	if h.bridge != nil {
		b := gin.H{"enabled": h.bridge.Enabled()}
		if breaker := h.bridge.Breaker(); breaker != nil {
			b["breaker"] = breaker.State().String()
		}
		resp["bridge"] = b
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) requirePlayer(c *gin.Context) {
	if err := utils.ValidatePlayer(c.Param("player")); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (h *Handlers) bodyLimit(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(h.limit.Max()))
	}
	c.Next()
}

// respond writes a mutation or gesture result. No-ops are successful responses
// with changed=false.
func (h *Handlers) respond(c *gin.Context, res session.Result, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}
	if errors.Is(err, layout.ErrNoOp) {
		res.Changed = false
		res.Reason = layout.Reason(err)
		c.JSON(http.StatusOK, res)
		return
	}
	h.fail(c, err)
}

// gesture adapts a snapshot-returning controller step to respond
func (h *Handlers) gesture(c *gin.Context, snap session.Snapshot, err error) {
	h.respond(c, session.Result{Changed: err == nil, Snapshot: snap}, err)
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoPlayer),
		errors.Is(err, layout.ErrNotPermutation),
		errors.Is(err, bridge.ErrMalformedEvent),
		errors.Is(err, bridge.ErrUnknownEvent),
		errors.Is(err, bridge.ErrNoPlayer):
		return http.StatusBadRequest
	case errors.Is(err, gesture.ErrNotEditing),
		errors.Is(err, gesture.ErrEditing),
		errors.Is(err, gesture.ErrDragInProgress),
		errors.Is(err, gesture.ErrNoDrag),
		errors.Is(err, gesture.ErrNotDraggable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
