package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vuongnd/learnify/internal/service"
)

func PaymentMiddleware(paymentService *service.PaymentService, cart service.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("payment_service", paymentService)
		c.Set("cart_store", cart)
		c.Next()
	}
}

func GetPaymentService(c *gin.Context) *service.PaymentService {
	svc, exists := c.Get("payment_service")
	if !exists {
		return nil
	}
	return svc.(*service.PaymentService)
}

func GetCartStore(c *gin.Context) service.CartStore {
	cart, exists := c.Get("cart_store")
	if !exists {
		return nil
	}
	return cart.(service.CartStore)
}
