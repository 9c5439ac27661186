package httpserver

import (
	"errors"
	"net/http"

	"microshop/internal/domain"
	ordersvc "microshop/internal/service/order"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// OrderRouter serves order queries and status transitions.
func OrderRouter(logger *zap.Logger, db *pgxpool.Pool, reg *prometheus.Registry, orders *ordersvc.Service) *gin.Engine {
	router := newRouter(logger, db, reg)

	api := router.Group("/api/orders")
	api.GET("", listOrdersHandler(orders))
	api.GET("/:id", getOrderHandler(orders))
	api.GET("/user/:userName", listOrdersByUserHandler(orders))
	api.PATCH("/:id/status", updateOrderStatusHandler(orders))
	api.DELETE("/:id", deleteOrderHandler(orders))

	return router
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func listOrdersHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func getOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := orders.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func listOrdersByUserHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListByUser(c.Request.Context(), c.Param("userName"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func updateOrderStatusHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		next := domain.OrderStatus(req.Status)
		if !next.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}

		o, err := orders.UpdateStatus(c.Request.Context(), c.Param("id"), next)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, o)
		}
	}
}

func deleteOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := orders.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
