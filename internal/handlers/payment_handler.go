package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/helpers"
	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/payment"
	"github.com/vuongnd/learnify/internal/service"
)

type PaymentRequest struct {
	Provider   string `json:"provider" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

func CreatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	svc := middleware.GetPaymentService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment service not found.")
		return
	}

	ipAddress := c.ClientIP()
	if ipAddress == "::1" {
		ipAddress = "127.0.0.1"
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	returnURL := fmt.Sprintf("%s://%s/v1/payments/callback/%s", scheme, c.Request.Host, req.Provider)

	result, err := svc.Checkout(c.Request.Context(), userID.(uuid.UUID), req.Provider, req.CouponCode, ipAddress, returnURL)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrUnsupportedProvider):
			helpers.RespondWithError(c, http.StatusBadRequest, "Unsupported payment provider.")
		case errors.Is(err, service.ErrEmptyCart):
			helpers.RespondWithError(c, http.StatusBadRequest, "Your cart is empty.")
		case errors.Is(err, service.ErrCouponNotFound):
			helpers.RespondWithError(c, http.StatusBadRequest, "Coupon not found.")
		case errors.Is(err, service.ErrCouponExpired):
			helpers.RespondWithError(c, http.StatusBadRequest, "Coupon has expired.")
		case errors.Is(err, service.ErrCouponNotApplicable):
			helpers.RespondWithError(c, http.StatusBadRequest, "Coupon does not apply to any course in your cart.")
		case errors.Is(err, payment.ErrGatewayUnavailable):
			helpers.RespondWithError(c, http.StatusBadGateway, "Payment gateway is unavailable. Please try again.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create payment.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     result.OrderID,
		"amount":       result.Amount,
		"redirect_url": result.RedirectURL,
	})
}

func PaymentCallback(c *gin.Context) {
	provider := c.Param("provider")

	svc := middleware.GetPaymentService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment service not found.")
		return
	}

	outcome, err := svc.HandleCallback(c.Request.Context(), provider, c.Request.URL.Query())
	if err != nil {
		message := "Payment could not be verified."
		switch {
		case errors.Is(err, payment.ErrUnsupportedProvider):
			message = "Unknown payment provider."
		case errors.Is(err, service.ErrInvalidSignature):
			message = "Payment could not be verified."
		case errors.Is(err, service.ErrOrphanCallback):
			message = "Transaction not found."
		}
		c.Redirect(http.StatusFound, "/payment/failed?message="+url.QueryEscape(message))
		return
	}

	if outcome.Success {
		c.Redirect(http.StatusFound, "/payment/success?orderId="+url.QueryEscape(outcome.OrderID))
		return
	}
	c.Redirect(http.StatusFound, "/payment/failed?message="+url.QueryEscape(outcome.Message))
}

// PaymentQR renders a pending transaction's checkout URL as a QR image so it
// can be scanned from another device.
func PaymentQR(c *gin.Context) {
	orderID := c.Param("orderId")

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var transaction models.Transaction
	if err := gormDB.Where("order_id = ?", orderID).First(&transaction).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Transaction not found.")
		return
	}

	if transaction.UserID != userID.(uuid.UUID) {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this transaction.")
		return
	}

	if transaction.Status != models.TransactionPending || transaction.RedirectURL == "" {
		helpers.RespondWithError(c, http.StatusConflict, "Transaction is no longer payable.")
		return
	}

	qrImage, err := qrcode.Encode(transaction.RedirectURL, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
