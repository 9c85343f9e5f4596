package api

import (
	"net/http"

	"shop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order placement for the authenticated user
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	userID := currentUserID(c)
	order, items, err := h.orders.Create(c.Request.Context(), &userID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"items": items,
	})
}

// getOrder returns one of the user's orders with its line items
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	order, items, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	userID := currentUserID(c)
	if order.UserID == nil || *order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"items": items,
	})
}

// orderStatus returns the current status of one of the user's orders
func (h *Handler) orderStatus(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	status, err := h.orders.Status(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": orderID,
		"status":   status,
	})
}

// listOrders returns the authenticated user's orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// cancelOrder handles user self-service cancellation of a pending order
func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orders.Cancel(c.Request.Context(), orderID, currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order has been cancelled and stock restored",
	})
}

// adminListOrders returns every order
func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus handles admin status transitions
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// adminDeleteOrder removes an order regardless of status, restoring stock
func (h *Handler) adminDeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.orders.AdminDelete(c.Request.Context(), orderID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted and stock restored",
	})
}
