package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuongnd/learnify/internal/models"
	"github.com/vuongnd/learnify/internal/payment"
)

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := createUser(t, env.db, "buyer")

	_, err := env.svc.Checkout(context.Background(), buyer.ID, "vnpay", "", "127.0.0.1", "https://shop.example.com/return")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutUnsupportedProvider(t *testing.T) {
	env := newTestEnv(t)
	buyer := createUser(t, env.db, "buyer")

	_, err := env.svc.Checkout(context.Background(), buyer.ID, "stripe", "", "127.0.0.1", "https://shop.example.com/return")
	assert.ErrorIs(t, err, payment.ErrUnsupportedProvider)
}

func TestCheckoutGatewayFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.strategy.initErr = payment.ErrGatewayUnavailable

	instructor := createUser(t, env.db, "seller")
	buyer := createUser(t, env.db, "buyer")
	course := createCourse(t, env.db, instructor.ID, "go-basics", 100)
	require.NoError(t, env.cart.Add(ctx, buyer.ID, course.ID))

	_, err := env.svc.Checkout(ctx, buyer.ID, "vnpay", "", "127.0.0.1", "https://shop.example.com/return")
	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)

	var count int64
	require.NoError(t, env.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)

	// The cart survives a failed initiation so the buyer can retry.
	left, err := env.cart.List(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestCheckoutPricesServerSide(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := createUser(t, env.db, "seller")
	buyer := createUser(t, env.db, "buyer")
	courseA := createCourse(t, env.db, instructor.ID, "go-basics", 100)
	courseB := createCourse(t, env.db, instructor.ID, "go-advanced", 50)
	require.NoError(t, env.cart.Add(ctx, buyer.ID, courseA.ID))
	require.NoError(t, env.cart.Add(ctx, buyer.ID, courseB.ID))

	checkout, err := env.svc.Checkout(ctx, buyer.ID, "vnpay", "", "192.168.1.10", "https://shop.example.com/return")
	require.NoError(t, err)

	assert.Equal(t, int64(150), checkout.Amount)
	assert.True(t, strings.HasPrefix(checkout.OrderID, "ORD-"))
	assert.NotEmpty(t, checkout.RedirectURL)

	// The gateway sees the server-computed total, never client input.
	require.Len(t, env.strategy.initiated, 1)
	assert.Equal(t, int64(150), env.strategy.initiated[0].Amount)
	assert.Equal(t, "192.168.1.10", env.strategy.initiated[0].IPAddress)

	var transaction models.Transaction
	require.NoError(t, env.db.Preload("Items").First(&transaction, "order_id = ?", checkout.OrderID).Error)
	assert.Equal(t, models.TransactionPending, transaction.Status)
	assert.Equal(t, "vnpay", transaction.Provider)
	assert.Equal(t, buyer.ID, transaction.UserID)
	assert.Equal(t, int64(150), transaction.Amount)
	assert.Equal(t, checkout.RedirectURL, transaction.RedirectURL)
	require.Len(t, transaction.Items, 2)

	var listed int64
	for _, item := range transaction.Items {
		listed += item.Price
		assert.Equal(t, instructor.ID, item.InstructorID)
	}
	assert.Equal(t, int64(150), listed)
}

func TestCheckoutPersistsCouponFields(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := createUser(t, env.db, "seller")
	buyer := createUser(t, env.db, "buyer")
	course := createCourse(t, env.db, instructor.ID, "go-basics", 100)
	createCoupon(t, env.db, "SAVE20", 20, course.ID, instructor.ID, farFuture(), true)
	require.NoError(t, env.cart.Add(ctx, buyer.ID, course.ID))

	checkout, err := env.svc.Checkout(ctx, buyer.ID, "vnpay", "save20", "127.0.0.1", "https://shop.example.com/return")
	require.NoError(t, err)
	assert.Equal(t, int64(80), checkout.Amount)

	var transaction models.Transaction
	require.NoError(t, env.db.First(&transaction, "order_id = ?", checkout.OrderID).Error)
	assert.Equal(t, "SAVE20", transaction.CouponCode)
	assert.Equal(t, int64(20), transaction.DiscountAmount)
}

func TestCheckoutRejectsBadCoupon(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	instructor := createUser(t, env.db, "seller")
	buyer := createUser(t, env.db, "buyer")
	course := createCourse(t, env.db, instructor.ID, "go-basics", 100)
	require.NoError(t, env.cart.Add(ctx, buyer.ID, course.ID))

	_, err := env.svc.Checkout(ctx, buyer.ID, "vnpay", "NOPE", "127.0.0.1", "https://shop.example.com/return")
	assert.ErrorIs(t, err, ErrCouponNotFound)

	var count int64
	require.NoError(t, env.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}
