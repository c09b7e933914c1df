package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/helpers"
	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/models"
)

type MonthlyRevenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

func InstructorDashboard(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	instructorID := userID.(uuid.UUID)

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var courses []models.Course
	if err := gormDB.Where("instructor_id = ?", instructorID).Order("total_students DESC").Find(&courses).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving courses.")
		return
	}

	var totalRevenue int64
	if err := gormDB.Model(&models.Earning{}).
		Where("instructor_id = ?", instructorID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error computing revenue.")
		return
	}

	var monthlyRevenue []MonthlyRevenue
	if err := gormDB.Model(&models.Earning{}).
		Where("instructor_id = ?", instructorID).
		Select("month, SUM(amount) AS revenue").
		Group("month").
		Order("month ASC").
		Scan(&monthlyRevenue).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error computing monthly revenue.")
		return
	}

	totalStudents := 0
	for _, course := range courses {
		totalStudents += course.TotalStudents
	}

	bestSellers := courses
	if len(bestSellers) > 5 {
		bestSellers = bestSellers[:5]
	}

	availableBalance := int64(0)
	if svc := middleware.GetPaymentService(c); svc != nil {
		if balance, err := svc.AvailableBalance(c.Request.Context(), instructorID); err == nil {
			availableBalance = balance
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_revenue":     totalRevenue,
		"total_students":    totalStudents,
		"monthly_revenue":   monthlyRevenue,
		"best_sellers":      bestSellers,
		"available_balance": availableBalance,
	})
}

func InstructorCourses(c *gin.Context) {
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

	var courses []models.Course
	if err := gormDB.Select("id", "title").Where("instructor_id = ?", userID).Order("created_at DESC").Find(&courses).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving courses.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}
