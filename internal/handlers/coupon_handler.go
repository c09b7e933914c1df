package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/helpers"
	"github.com/vuongnd/learnify/internal/models"
)

type CouponRequest struct {
	Code            string    `json:"code" binding:"required,min=3"`
	DiscountPercent int       `json:"discount_percent" binding:"required,min=0,max=100"`
	CourseID        uuid.UUID `json:"course_id" binding:"required"`
	ExpiryDate      time.Time `json:"expiry_date" binding:"required"`
}

func CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

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

	var course models.Course
	if err := gormDB.Where("id = ? AND instructor_id = ?", req.CourseID, userID).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't own this course.")
		return
	}

	coupon := models.Coupon{
		ID:              uuid.New(),
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountPercent: req.DiscountPercent,
		CourseID:        course.ID,
		InstructorID:    userID.(uuid.UUID),
		ExpiryDate:      req.ExpiryDate,
		IsActive:        true,
	}

	if err := gormDB.Create(&coupon).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create coupon.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Coupon created successfully.",
		"coupon_id": coupon.ID,
	})
}

func ListMyCoupons(c *gin.Context) {
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

	var coupons []models.Coupon
	if err := gormDB.Preload("Course").Where("instructor_id = ?", userID).Order("created_at DESC").Find(&coupons).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving coupons.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func DeleteCoupon(c *gin.Context) {
	couponID := c.Param("id")
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

	result := gormDB.Where("id = ? AND instructor_id = ?", couponID, userID).Delete(&models.Coupon{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete coupon.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Coupon not found or you don't have permission to delete.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted successfully."})
}
