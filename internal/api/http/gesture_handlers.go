package http

import (
	"github.com/gin-gonic/gin"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/GriffinCanCode/phoneshell/internal/domain/gesture"
)

// PointRequest is a pointer position in screen coordinates
type PointRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p PointRequest) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// PressRequest arms the long-press on an icon or the clock widget
type PressRequest struct {
	Target string `json:"target"`
	PointRequest
}

// DragRequest picks up an item
type DragRequest struct {
	Item string `json:"item" binding:"required"`
}

// DropRequest releases the drag at a point of the rendered scene
type DropRequest struct {
	Point PointRequest  `json:"point"`
	Scene gesture.Scene `json:"scene"`
}

// DropTargetRequest releases the drag on a target the UI already hit-tested
type DropTargetRequest struct {
	Zone       gesture.Zone     `json:"zone"`
	TargetID   string           `json:"targetId"`
	TargetType gesture.ItemType `json:"targetType"`
}

// FolderViewRequest opens a folder
type FolderViewRequest struct {
	FolderID string `json:"folderId" binding:"required"`
}

// ClockRequest toggles the clock widget
type ClockRequest struct {
	Visible bool `json:"visible"`
}

// PressStart handles a pointer down
func (h *Handlers) PressStart(c *gin.Context) {
	var req PressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.manager.PressStart(c.Request.Context(), c.Param("player"), req.Target, req.vec())
	h.gesture(c, snap, err)
}

// PressMove handles pointer movement during a press
func (h *Handlers) PressMove(c *gin.Context) {
	var req PointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.manager.PressMove(c.Request.Context(), c.Param("player"), req.vec())
	h.gesture(c, snap, err)
}

// PressEnd handles a pointer up
func (h *Handlers) PressEnd(c *gin.Context) {
	snap, err := h.manager.PressEnd(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}

// EnterEditMode switches edit mode on
func (h *Handlers) EnterEditMode(c *gin.Context) {
	snap, err := h.manager.EnterEditMode(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}

// Done leaves edit mode
func (h *Handlers) Done(c *gin.Context) {
	snap, err := h.manager.Done(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}

// BeginDrag picks up an item
func (h *Handlers) BeginDrag(c *gin.Context) {
	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.manager.BeginDrag(c.Request.Context(), c.Param("player"), req.Item)
	h.gesture(c, snap, err)
}

// CancelDrag abandons the drag in flight
func (h *Handlers) CancelDrag(c *gin.Context) {
	snap, err := h.manager.CancelDrag(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}

// Drop hit-tests the release point against the scene and applies the drop
func (h *Handlers) Drop(c *gin.Context) {
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.manager.Drop(c.Request.Context(), c.Param("player"), req.Point.vec(), req.Scene)
	h.respond(c, res, err)
}

// DropOn applies the drop to a resolved target
func (h *Handlers) DropOn(c *gin.Context) {
	var req DropTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hit := gesture.Hit{Zone: req.Zone, TargetID: req.TargetID, TargetType: req.TargetType}
	res, err := h.manager.DropOn(c.Request.Context(), c.Param("player"), hit)
	h.respond(c, res, err)
}

// OpenFolder shows a folder's contents
func (h *Handlers) OpenFolder(c *gin.Context) {
	var req FolderViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.manager.OpenFolder(c.Request.Context(), c.Param("player"), req.FolderID)
	h.gesture(c, snap, err)
}

// CloseFolder hides the open folder
func (h *Handlers) CloseFolder(c *gin.Context) {
	snap, err := h.manager.CloseFolder(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}

// SetClockWidget shows or hides the clock widget
func (h *Handlers) SetClockWidget(c *gin.Context) {
	var req ClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.manager.SetClockWidgetVisible(c.Request.Context(), c.Param("player"), req.Visible)
	h.gesture(c, snap, err)
}

// EndCall dismisses the incoming call banner
func (h *Handlers) EndCall(c *gin.Context) {
	snap, err := h.manager.EndCall(c.Request.Context(), c.Param("player"))
	h.gesture(c, snap, err)
}
