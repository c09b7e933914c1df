package service

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/payment"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Category{}, &models.Course{},
		&models.Coupon{}, &models.Transaction{}, &models.TransactionItem{},
		&models.Earning{}, &models.PayoutRequest{},
	))
	return db
}

// memoryCart is an in-process CartStore for tests.
type memoryCart struct {
	mu    sync.Mutex
	items map[uuid.UUID]map[uuid.UUID]bool
}

func newMemoryCart() *memoryCart {
	return &memoryCart{items: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (c *memoryCart) Add(ctx context.Context, userID, courseID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items[userID] == nil {
		c.items[userID] = make(map[uuid.UUID]bool)
	}
	c.items[userID][courseID] = true
	return nil
}

func (c *memoryCart) Remove(ctx context.Context, userID, courseID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items[userID], courseID)
	return nil
}

func (c *memoryCart) List(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var courseIDs []uuid.UUID
	for id := range c.items[userID] {
		courseIDs = append(courseIDs, id)
	}
	return courseIDs, nil
}

func (c *memoryCart) Clear(ctx context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, userID)
	return nil
}

// stubStrategy is a canned payment.Strategy.
type stubStrategy struct {
	name       string
	initiated  []payment.InitiateRequest
	initErr    error
	gatewayRef string
	callback   *payment.CallbackResult
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	s.initiated = append(s.initiated, req)
	gatewayRef := s.gatewayRef
	if gatewayRef == "" {
		gatewayRef = req.OrderID
	}
	return &payment.InitiateResult{
		RedirectURL:    "https://gateway.example.com/pay/" + req.OrderID,
		GatewayOrderID: gatewayRef,
	}, nil
}

func (s *stubStrategy) VerifyCallback(ctx context.Context, params url.Values) (*payment.CallbackResult, error) {
	return s.callback, nil
}

func (s *stubStrategy) Refund(ctx context.Context, transactionID string, amount int64) error {
	return payment.ErrNotImplemented
}

type testEnv struct {
	db       *gorm.DB
	cart     *memoryCart
	strategy *stubStrategy
	svc      *PaymentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cart := newMemoryCart()
	strategy := &stubStrategy{name: "vnpay"}
	svc := NewPaymentService(db, cart, payment.NewRegistry(strategy), nil, zap.NewNop(),
		SettlementConfig{InstructorShare: 0.70})

	return &testEnv{db: db, cart: cart, strategy: strategy, svc: svc}
}

func farFuture() time.Time {
	return time.Now().Add(365 * 24 * time.Hour)
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	role := models.Role{ID: uuid.New(), Name: "student-" + uuid.NewString()}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Name:     name,
		Email:    name + "-" + uuid.NewString() + "@example.com",
		Password: "hashed",
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCourse(t *testing.T, db *gorm.DB, instructorID uuid.UUID, title string, price int64) *models.Course {
	t.Helper()

	category := models.Category{ID: uuid.New(), Name: "cat-" + uuid.NewString()}
	require.NoError(t, db.Create(&category).Error)

	course := models.Course{
		Title:        title,
		Slug:         title + "-" + uuid.NewString(),
		Description:  "test course",
		Price:        price,
		InstructorID: instructorID,
		CategoryID:   category.ID,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}
