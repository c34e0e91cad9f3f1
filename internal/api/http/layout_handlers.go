package http

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/phoneshell/internal/domain/catalog"
	"github.com/GriffinCanCode/phoneshell/internal/domain/layout"
	"github.com/GriffinCanCode/phoneshell/internal/shared/utils"
)

// AppRequest names one app
type AppRequest struct {
	AppID string `json:"appId" binding:"required"`
}

// MoveRequest moves an item between containers
type MoveRequest struct {
	Item  string           `json:"item" binding:"required"`
	From  layout.Container `json:"from"`
	To    layout.Container `json:"to"`
	Index *int             `json:"index"`
}

// ReorderRequest replaces a container's order
type ReorderRequest struct {
	Container layout.Container `json:"container"`
	Order     []string         `json:"order"`
}

// CreateFolderRequest groups two apps
type CreateFolderRequest struct {
	Dropped string `json:"dropped" binding:"required"`
	Target  string `json:"target" binding:"required"`
}

// RenameRequest sets a folder name
type RenameRequest struct {
	Name string `json:"name"`
}

// Catalog lists the apps a job may install
func (h *Handlers) Catalog(c *gin.Context) {
	cat := h.manager.Engine().Catalog()
	c.JSON(http.StatusOK, gin.H{
		"apps":          cat.ForJob(c.Query("job")),
		"default_dock":  cat.DefaultDock(),
		"max_dock_apps": h.manager.Engine().MaxDock(),
	})
}

// ListPhones lists the players with a phone in memory
func (h *Handlers) ListPhones(c *gin.Context) {
	players := h.manager.Players()
	c.JSON(http.StatusOK, gin.H{
		"players": players,
		"count":   len(players),
	})
}

// GetLayout returns the player's phone
func (h *Handlers) GetLayout(c *gin.Context) {
	snap, err := h.manager.Snapshot(c.Request.Context(), c.Param("player"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Installable lists catalog apps the player's job allows that are not installed yet
func (h *Handlers) Installable(c *gin.Context) {
	snap, err := h.manager.Snapshot(c.Request.Context(), c.Param("player"))
	if err != nil {
		h.fail(c, err)
		return
	}

	apps := []catalog.App{}
	for _, app := range h.manager.Engine().Catalog().ForJob(snap.Job) {
		if !slices.Contains(snap.Layout.Installed, app.ID) {
			apps = append(apps, app)
		}
	}
	c.JSON(http.StatusOK, gin.H{"job": snap.Job, "apps": apps})
}

// EvictPhone forgets the player's in-memory phone. The stored layout is kept.
func (h *Handlers) EvictPhone(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"evicted": h.manager.Evict(c.Param("player"))})
}

// InstallApp installs a catalog app
func (h *Handlers) InstallApp(c *gin.Context) {
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateID(req.AppID, "appId", true); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.Install(c.Request.Context(), c.Param("player"), req.AppID)
	h.respond(c, res, err)
}

// UninstallApp removes a removable app
func (h *Handlers) UninstallApp(c *gin.Context) {
	appID := c.Param("app")
	if err := utils.ValidateID(appID, "app", true); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.Uninstall(c.Request.Context(), c.Param("player"), appID)
	h.respond(c, res, err)
}

// MoveItem moves an item to an index of another container. A missing index appends.
func (h *Handlers) MoveItem(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	res, err := h.manager.MoveToContainer(c.Request.Context(), c.Param("player"), req.Item, req.From, req.To, index)
	h.respond(c, res, err)
}

// Reorder replaces a container's order with a permutation of its contents
func (h *Handlers) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.Reorder(c.Request.Context(), c.Param("player"), req.Container, req.Order)
	h.respond(c, res, err)
}

// CreateFolder groups the dropped app with the target app
func (h *Handlers) CreateFolder(c *gin.Context) {
	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.CreateFolder(c.Request.Context(), c.Param("player"), req.Dropped, req.Target)
	h.respond(c, res, err)
}

// RenameFolder sets a folder's display name. Markup is stripped first, so a
// name made only of markup is ignored like a blank one.
func (h *Handlers) RenameFolder(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	name := utils.SanitizeFolderName(req.Name)
	res, err := h.manager.RenameFolder(c.Request.Context(), c.Param("player"), c.Param("folder"), name)
	h.respond(c, res, err)
}

// AddToFolder appends an app to a folder
func (h *Handlers) AddToFolder(c *gin.Context) {
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.AddToFolder(c.Request.Context(), c.Param("player"), c.Param("folder"), req.AppID)
	h.respond(c, res, err)
}

// RemoveFromFolder returns a folder member to the home screen
func (h *Handlers) RemoveFromFolder(c *gin.Context) {
	res, err := h.manager.RemoveFromFolder(c.Request.Context(), c.Param("player"), c.Param("folder"), c.Param("app"))
	h.respond(c, res, err)
}
