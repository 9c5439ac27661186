package httpserver

import (
	"errors"
	"net/http"

	"microshop/internal/domain"
	basketsvc "microshop/internal/service/basket"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BasketRouter serves the basket API: cache-aside CRUD plus checkout.
func BasketRouter(logger *zap.Logger, db *pgxpool.Pool, reg *prometheus.Registry, store *basketsvc.Store, checkout *basketsvc.Service) *gin.Engine {
	router := newRouter(logger, db, reg)

	api := router.Group("/api/baskets")
	api.GET("/:userName", getBasketHandler(store))
	api.POST("", saveBasketHandler(store))
	api.DELETE("/:userName", deleteBasketHandler(store))
	api.POST("/checkout", checkoutHandler(checkout))

	return router
}

type basketItemRequest struct {
	ProductID   string `json:"productId" binding:"required"`
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
	PriceCents  int64  `json:"priceCents" binding:"required"`
}

type saveBasketRequest struct {
	UserName string              `json:"userName" binding:"required"`
	Items    []basketItemRequest `json:"items"`
}

type checkoutRequest struct {
	UserName      string `json:"userName" binding:"required"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	EmailAddress  string `json:"emailAddress" binding:"required,email"`
	AddressLine   string `json:"addressLine" binding:"required"`
	Country       string `json:"country"`
	State         string `json:"state"`
	ZipCode       string `json:"zipCode"`
	CardName      string `json:"cardName"`
	CardNumber    string `json:"cardNumber" binding:"required"`
	Expiration    string `json:"expiration"`
	CVV           string `json:"cvv" binding:"required"`
	PaymentMethod int    `json:"paymentMethod"`
}

func getBasketHandler(store *basketsvc.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := store.Get(c.Request.Context(), c.Param("userName"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "basket not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func saveBasketHandler(store *basketsvc.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveBasketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		b := &domain.Basket{UserName: req.UserName}
		for _, item := range req.Items {
			b.Items = append(b.Items, domain.BasketItem{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				PriceCents:  item.PriceCents,
			})
		}

		saved, err := store.Save(c.Request.Context(), b)
		if err != nil {
			if errors.Is(err, domain.ErrInvalid) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func deleteBasketHandler(store *basketsvc.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		existed, err := store.Delete(c.Request.Context(), c.Param("userName"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": existed})
	}
}

func checkoutHandler(checkout *basketsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := checkout.Checkout(c.Request.Context(), basketsvc.CheckoutInput{
			UserName: req.UserName,
			Shipping: domain.ShippingInfo{
				FirstName:    req.FirstName,
				LastName:     req.LastName,
				EmailAddress: req.EmailAddress,
				AddressLine:  req.AddressLine,
				Country:      req.Country,
				State:        req.State,
				ZipCode:      req.ZipCode,
			},
			Payment: domain.PaymentInfo{
				CardName:      req.CardName,
				CardNumber:    req.CardNumber,
				Expiration:    req.Expiration,
				CVV:           req.CVV,
				PaymentMethod: req.PaymentMethod,
			},
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "basket not found"})
		case errors.Is(err, domain.ErrEmptyBasket):
			c.JSON(http.StatusBadRequest, gin.H{"error": "basket has no items"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
		}
	}
}
