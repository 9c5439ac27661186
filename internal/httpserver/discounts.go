package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"microshop/internal/domain"
	discountsvc "microshop/internal/service/discount"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// DiscountRouter serves coupon lookup and management.
func DiscountRouter(logger *zap.Logger, db *pgxpool.Pool, reg *prometheus.Registry, discounts *discountsvc.Service) *gin.Engine {
	router := newRouter(logger, db, reg)

	api := router.Group("/api/discounts")
	api.GET("", listCouponsHandler(discounts))
	api.GET("/:productName", getCouponHandler(discounts))
	api.POST("", createCouponHandler(discounts))
	api.PUT("/:id", updateCouponHandler(discounts))
	api.DELETE("/:productName", deleteCouponHandler(discounts))

	return router
}

func listCouponsHandler(discounts *discountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := discounts.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func getCouponHandler(discounts *discountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		coupon, err := discounts.Get(c.Request.Context(), c.Param("productName"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, coupon)
	}
}

func createCouponHandler(discounts *discountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in discountsvc.CouponInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		coupon, err := discounts.Create(c.Request.Context(), in)
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "discount already exists"})
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusCreated, coupon)
		}
	}
}

func updateCouponHandler(discounts *discountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var in discountsvc.CouponInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		coupon, err := discounts.Update(c.Request.Context(), id, in)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
		case err != nil:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, coupon)
		}
	}
}

func deleteCouponHandler(discounts *discountsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := discounts.Delete(c.Request.Context(), c.Param("productName"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !existed {
			c.JSON(http.StatusNotFound, gin.H{"error": "discount not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
