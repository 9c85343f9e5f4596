package api

import (
	"net/http"
	"time"

	"shop-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// activeDeals returns deals currently in their sale window (public catalog
// read path)
func (h *Handler) activeDeals(c *gin.Context) {
	deals, err := h.deals.ActiveDeals(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

// listDeals returns every deal with its derived status
func (h *Handler) listDeals(c *gin.Context) {
	deals, err := h.deals.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	now := time.Now()
	out := make([]gin.H, 0, len(deals))
	for i := range deals {
		out = append(out, gin.H{
			"deal":   deals[i],
			"status": deals[i].DerivedStatus(now),
		})
	}
	c.JSON(http.StatusOK, gin.H{"deals": out})
}

// createDeal adds a new deal
func (h *Handler) createDeal(c *gin.Context) {
	var req service.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	deal, err := h.deals.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"deal": deal})
}

// updateDeal edits an existing deal
func (h *Handler) updateDeal(c *gin.Context) {
	dealID, ok := pathID(c)
	if !ok {
		return
	}

	var req service.DealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	deal, err := h.deals.Update(c.Request.Context(), dealID, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal})
}

// toggleDeal flips the admin intent flag on a deal
func (h *Handler) toggleDeal(c *gin.Context) {
	dealID, ok := pathID(c)
	if !ok {
		return
	}

	active, err := h.deals.Toggle(c.Request.Context(), dealID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_active": active})
}

// deleteDeal removes a deal
func (h *Handler) deleteDeal(c *gin.Context) {
	dealID, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.deals.Delete(c.Request.Context(), dealID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
