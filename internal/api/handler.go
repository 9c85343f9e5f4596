package api

import (
	"net/http"
	"strconv"
	"time"

	"shop-backend/internal/service"
	"shop-backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orders        *service.OrderService
	deals         *service.DealService
	notifications *service.NotificationService
	adminToken    string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	deals *service.DealService,
	notifications *service.NotificationService,
	adminToken string,
) *Handler {
	return &Handler{
		orders:        orders,
		deals:         deals,
		notifications: notifications,
		adminToken:    adminToken,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/deals/active", h.activeDeals)

		user := v1.Group("/", h.userAuth())
		{
			user.POST("/orders", h.createOrder)
			user.GET("/orders", h.listOrders)
			user.GET("/orders/:id", h.getOrder)
			user.GET("/orders/:id/status", h.orderStatus)
			user.DELETE("/orders/:id", h.cancelOrder)

			user.GET("/notifications", h.listNotifications)
			user.POST("/notifications", h.createNotification)
			user.POST("/notifications/:id/read", h.markNotificationRead)

			user.POST("/devices", h.registerDevice)
			user.DELETE("/devices", h.removeDevice)
		}

		admin := v1.Group("/admin", h.adminAuth())
		{
			admin.GET("/orders", h.adminListOrders)
			admin.PUT("/orders/:id/status", h.updateOrderStatus)
			admin.DELETE("/orders/:id", h.adminDeleteOrder)

			admin.GET("/deals", h.listDeals)
			admin.POST("/deals", h.createDeal)
			admin.PUT("/deals/:id", h.updateDeal)
			admin.POST("/deals/:id/toggle", h.toggleDeal)
			admin.DELETE("/deals/:id", h.deleteDeal)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// userAuth resolves the acting user from the X-User-ID header set by the
// upstream auth layer
func (h *Handler) userAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid user identity",
			})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// adminAuth gates the admin route group on the configured token
func (h *Handler) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.adminToken == "" || c.GetHeader("X-Admin-Token") != h.adminToken {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64("userID")
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP statuses
func writeError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.IsInvalidState(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
