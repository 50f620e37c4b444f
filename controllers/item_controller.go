// controllers/item_controller.go
package controllers

import (
	"net/http"

	"uniloans/app"
	"uniloans/models"
	"uniloans/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

// GET /api/implementos
func (ic *ItemController) ListItems(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context())
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"implementos": items})
}

// GET /api/implementos/disponibles: only items with stock on hand.
func (ic *ItemController) ListAvailable(c *gin.Context) {
	items, err := ic.Repo.ListAvailableItems(c.Request.Context())
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"implementos": items})
}

// GET /api/implementos/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"implemento": it})
}

// POST /api/implementos
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		TotalQty int    `json:"totalQuantity" binding:"required,min=1"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it := &models.Item{
		ID:           uuid.NewString(),
		Name:         in.Name,
		TotalQty:     in.TotalQty,
		AvailableQty: in.TotalQty,
		ImageURL:     in.ImageURL,
		Active:       true,
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notifier.Broadcast(realtime.EventItemCreated, it)
	ic.Notifier.Broadcast(realtime.EventInventory, it)
	c.JSON(http.StatusCreated, app.H{"implemento": it})
}

// PUT /api/implementos/:id
// Quantities travel with the edit: availableQuantity defaults to the
// new total, and omitted fields keep their current values.
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in struct {
		Name         string  `json:"name" binding:"required"`
		TotalQty     *int    `json:"totalQuantity" binding:"required"`
		AvailableQty *int    `json:"availableQuantity"`
		ImageURL     *string `json:"imageUrl"`
		Active       *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	cur, err := ic.Repo.FindItemByID(ctx, c.Param("id"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	next := models.Item{
		ID:           cur.ID,
		Name:         in.Name,
		TotalQty:     *in.TotalQty,
		AvailableQty: *in.TotalQty,
		ImageURL:     cur.ImageURL,
		Active:       cur.Active,
	}
	if in.AvailableQty != nil {
		next.AvailableQty = *in.AvailableQty
	}
	if in.ImageURL != nil {
		next.ImageURL = *in.ImageURL
	}
	if in.Active != nil {
		next.Active = *in.Active
	}

	it, err := ic.Repo.UpdateItem(ctx, &next)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notifier.Broadcast(realtime.EventItemUpdated, it)
	ic.Notifier.Broadcast(realtime.EventInventory, it)
	c.JSON(http.StatusOK, app.H{"implemento": it})
}

// PUT /api/implementos/:id/cantidades: admin stock correction.
func (ic *ItemController) SetQuantities(c *gin.Context) {
	var in struct {
		TotalQty     *int `json:"totalQuantity" binding:"required"`
		AvailableQty *int `json:"availableQuantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Repo.SetQuantities(c.Request.Context(), c.Param("id"), *in.TotalQty, *in.AvailableQty)
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notifier.Broadcast(realtime.EventItemUpdated, it)
	ic.Notifier.Broadcast(realtime.EventInventory, it)
	c.JSON(http.StatusOK, app.H{"implemento": it})
}

// DELETE /api/implementos/:id soft-deletes the item; loan history survives.
func (ic *ItemController) DeleteItem(c *gin.Context) {
	it, err := ic.Repo.SoftDeleteItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		ic.fail(c, err)
		return
	}
	ic.Notifier.Broadcast(realtime.EventItemDeleted, app.H{"id": it.ID, "name": it.Name})
	ic.Notifier.Broadcast(realtime.EventInventory, it)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
