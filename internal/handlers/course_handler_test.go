package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/models"
)

func newCatalogRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Category{}, &models.Course{},
	))

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.GET("/v1/courses", ListCourses)
	r.GET("/v1/courses/:id", GetCourse)
	return r, db
}

func seedCourse(t *testing.T, db *gorm.DB, title, slug string) *models.Course {
	t.Helper()

	role := models.Role{Name: "instructor-" + uuid.NewString()}
	require.NoError(t, db.Create(&role).Error)
	instructor := models.User{
		Name:     "seller",
		Email:    uuid.NewString() + "@example.com",
		Password: "hashed",
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&instructor).Error)
	category := models.Category{Name: "cat-" + uuid.NewString()}
	require.NoError(t, db.Create(&category).Error)

	course := models.Course{
		Title:        title,
		Slug:         slug,
		Description:  "test course",
		Price:        100,
		InstructorID: instructor.ID,
		CategoryID:   category.ID,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func TestGetCourseBySlug(t *testing.T) {
	r, db := newCatalogRouter(t)
	course := seedCourse(t, db, "Go Basics", "go-basics")

	// The path parameter is not a uuid, so the lookup must hit the slug
	// column only and never bind a string against the uuid id column.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/courses/go-basics", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, course.ID, got.ID)
	assert.Equal(t, "Go Basics", got.Title)
}

func TestGetCourseByID(t *testing.T) {
	r, db := newCatalogRouter(t)
	course := seedCourse(t, db, "Go Basics", "go-basics")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/courses/"+course.ID.String(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Course
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, course.ID, got.ID)
}

func TestGetCourseUnknownSlug(t *testing.T) {
	r, db := newCatalogRouter(t)
	seedCourse(t, db, "Go Basics", "go-basics")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/courses/rust-basics", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCoursesRejectsMalformedCategoryFilter(t *testing.T) {
	r, db := newCatalogRouter(t)
	seedCourse(t, db, "Go Basics", "go-basics")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/courses?category_id=not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCoursesFiltersByCategory(t *testing.T) {
	r, db := newCatalogRouter(t)
	course := seedCourse(t, db, "Go Basics", "go-basics")
	seedCourse(t, db, "SQL Basics", "sql-basics")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/courses?category_id="+course.CategoryID.String(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Courses []models.Course `json:"courses"`
		Total   int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Courses, 1)
	assert.Equal(t, course.ID, body.Courses[0].ID)
	assert.Equal(t, int64(1), body.Total)
}
