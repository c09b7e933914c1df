package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/helpers"
	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/service"
)

type PayoutRequestBody struct {
	Amount        int64  `json:"amount" binding:"required,min=1"`
	BankName      string `json:"bank_name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	AccountName   string `json:"account_name" binding:"required"`
	Note          string `json:"note"`
}

type ProcessPayoutBody struct {
	Status       string `json:"status" binding:"required,oneof=approved rejected"`
	AdminComment string `json:"admin_comment"`
}

func CreatePayout(c *gin.Context) {
	var req PayoutRequestBody
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

	request, err := svc.RequestPayout(c.Request.Context(), userID.(uuid.UUID), req.Amount, service.BankInfo{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Note:          req.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPayoutPending):
			helpers.RespondWithError(c, http.StatusConflict, "You already have a payout request awaiting review.")
		case errors.Is(err, service.ErrInsufficientBalance):
			helpers.RespondWithError(c, http.StatusBadRequest, "Amount exceeds your available balance.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create payout request.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payout request submitted.",
		"payout":  request,
	})
}

func ListMyPayouts(c *gin.Context) {
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

	var payouts []models.PayoutRequest
	if err := gormDB.Where("instructor_id = ?", userID).Order("created_at DESC").Find(&payouts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payout history.")
		return
	}

	svc := middleware.GetPaymentService(c)
	balance := int64(0)
	if svc != nil {
		if available, err := svc.AvailableBalance(c.Request.Context(), userID.(uuid.UUID)); err == nil {
			balance = available
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"payouts":           payouts,
		"available_balance": balance,
	})
}

func ListPendingPayouts(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var payouts []models.PayoutRequest
	if err := gormDB.Where("status = ?", models.PayoutPending).Order("created_at ASC").Find(&payouts).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving payout requests.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

func ProcessPayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid payout ID.")
		return
	}

	var req ProcessPayoutBody
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	svc := middleware.GetPaymentService(c)
	if svc == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment service not found.")
		return
	}

	request, err := svc.ProcessPayout(c.Request.Context(), payoutID, req.Status == "approved", req.AdminComment)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Payout request not found.")
		case errors.Is(err, service.ErrPayoutProcessed):
			helpers.RespondWithError(c, http.StatusConflict, "Payout request already processed.")
		case errors.Is(err, service.ErrInsufficientBalance):
			helpers.RespondWithError(c, http.StatusBadRequest, "Approving this request would exceed the instructor's earnings.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to process payout request.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payout request processed.",
		"payout":  request,
	})
}
