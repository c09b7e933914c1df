package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/helpers"
	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/service"
)

type CartItemRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

func AddCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	userUUID := userID.(uuid.UUID)

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var course models.Course
	if err := gormDB.Where("id = ? AND is_published = ?", req.CourseID, true).First(&course).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Course not found.")
		return
	}

	var enrolled int64
	gormDB.Table("user_courses").Where("user_id = ? AND course_id = ?", userUUID, course.ID).Count(&enrolled)
	if enrolled > 0 {
		helpers.RespondWithError(c, http.StatusConflict, "You already own this course.")
		return
	}

	cart := middleware.GetCartStore(c)
	if cart == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Cart store not found.")
		return
	}

	if err := cart.Add(c.Request.Context(), userUUID, course.ID); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to add course to cart.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course added to cart."})
}

func RemoveCartItem(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid course ID.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	cart := middleware.GetCartStore(c)
	if cart == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Cart store not found.")
		return
	}

	if err := cart.Remove(c.Request.Context(), userID.(uuid.UUID), courseID); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to remove course from cart.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course removed from cart."})
}

// GetCart returns the priced cart, with an optional coupon preview via the
// ?coupon= query parameter.
func GetCart(c *gin.Context) {
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

	cart := middleware.GetCartStore(c)
	if cart == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Cart store not found.")
		return
	}

	courseIDs, err := cart.List(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to read cart.")
		return
	}

	var courses []models.Course
	if len(courseIDs) > 0 {
		if err := gormDB.Preload("Instructor").Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving cart courses.")
			return
		}
	}

	var total int64
	for _, course := range courses {
		total += course.Price
	}

	response := gin.H{
		"courses": courses,
		"total":   total,
	}

	if code := c.Query("coupon"); code != "" && len(courses) > 0 {
		cd, err := service.EvaluateCoupon(gormDB, code, courses, time.Now())
		if err != nil {
			response["coupon_error"] = err.Error()
		} else {
			discounted := total - cd.Amount
			if discounted < 0 {
				discounted = 0
			}
			response["discount"] = cd.Amount
			response["total_after_discount"] = discounted
		}
	}

	c.JSON(http.StatusOK, response)
}
