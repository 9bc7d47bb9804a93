package handlers

import (
	"net/http"
	"strconv"

	"edgesync/internal/logger"
	"edgesync/internal/sync"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders *sync.OrderManager
	logger *logger.Logger
}

func NewOrderHandler(orders *sync.OrderManager, logger *logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// Sync hands one order off to EDGE. Safe to call repeatedly; an already
// synced order is a no-op.
func (h *OrderHandler) Sync(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	if err := h.orders.SyncOrder(c.Request.Context(), uint(id)); err != nil {
		h.logger.Error("Order %d sync failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"order_id": id, "synced": true}})
}
