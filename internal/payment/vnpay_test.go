package payment

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVNPay() *VNPay {
	v := NewVNPay(VNPayConfig{
		TmnCode:    "TESTCODE",
		HashSecret: "test-secret",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
	})
	v.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return v
}

func TestVNPayInitiateSignsCanonicalQuery(t *testing.T) {
	v := testVNPay()

	result, err := v.Initiate(context.Background(), InitiateRequest{
		Amount:    120000,
		OrderID:   "ORD-1",
		ReturnURL: "https://example.com/v1/payments/callback/vnpay",
		IPAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", result.GatewayOrderID)

	base, query, found := strings.Cut(result.RedirectURL, "?")
	require.True(t, found)
	assert.Equal(t, v.cfg.BaseURL, base)

	signData, hash, found := strings.Cut(query, "&vnp_SecureHash=")
	require.True(t, found)
	assert.Equal(t, hmacSHA512Hex("test-secret", signData), hash)

	assert.Contains(t, signData, "vnp_Amount=12000000")
	assert.Contains(t, signData, "vnp_TxnRef=ORD-1")
	assert.Contains(t, signData, "vnp_CreateDate=20240315103000")
	assert.Contains(t, signData, "vnp_IpAddr=203.0.113.7")
}

func signedCallback(secret string, params map[string]string) url.Values {
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	values.Set("vnp_SecureHash", hmacSHA512Hex(secret, canonicalize(params)))
	return values
}

func TestVNPayVerifyCallbackSuccess(t *testing.T) {
	v := testVNPay()

	params := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":        "ORD-1",
		"vnp_TransactionNo": "14226112",
		"vnp_ResponseCode":  "00",
		"vnp_Amount":        "12000000",
	})

	result, err := v.VerifyCallback(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.True(t, result.Success)
	assert.Equal(t, "ORD-1", result.OrderID)
	assert.Equal(t, "14226112", result.TransactionID)
}

func TestVNPayVerifyCallbackDeclined(t *testing.T) {
	v := testVNPay()

	params := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":        "ORD-1",
		"vnp_TransactionNo": "14226112",
		"vnp_ResponseCode":  "24",
	})

	result, err := v.VerifyCallback(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Valid, "a declined payment is still an authentic callback")
	assert.False(t, result.Success)
}

func TestVNPayVerifyCallbackTamperedField(t *testing.T) {
	v := testVNPay()

	params := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":        "ORD-1",
		"vnp_TransactionNo": "14226112",
		"vnp_ResponseCode":  "24",
		"vnp_Amount":        "12000000",
	})
	// Flip the response code to "success" without re-signing.
	params.Set("vnp_ResponseCode", "00")

	result, err := v.VerifyCallback(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.False(t, result.Success)
}

func TestVNPayVerifyCallbackMissingHash(t *testing.T) {
	v := testVNPay()

	params := url.Values{}
	params.Set("vnp_TxnRef", "ORD-1")
	params.Set("vnp_ResponseCode", "00")

	result, err := v.VerifyCallback(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestVNPayVerifyCallbackIgnoresHashTypeField(t *testing.T) {
	v := testVNPay()

	params := signedCallback("test-secret", map[string]string{
		"vnp_TxnRef":       "ORD-1",
		"vnp_ResponseCode": "00",
	})
	// The hash type field travels alongside the signature and must be
	// excluded from re-signing.
	params.Set("vnp_SecureHashType", "HMACSHA512")

	result, err := v.VerifyCallback(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCanonicalizeSortsAndDropsEmpty(t *testing.T) {
	signData := canonicalize(map[string]string{
		"vnp_TxnRef":    "ORD-1",
		"vnp_Amount":    "100",
		"vnp_OrderInfo": "",
		"vnp_Command":   "pay",
	})
	assert.Equal(t, "vnp_Amount=100&vnp_Command=pay&vnp_TxnRef=ORD-1", signData)
}

func TestVNPayRefundNotImplemented(t *testing.T) {
	v := testVNPay()
	err := v.Refund(context.Background(), "14226112", 1000)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestRegistryUnknownProvider(t *testing.T) {
	registry := NewRegistry(testVNPay())

	strategy, err := registry.Get("vnpay")
	require.NoError(t, err)
	assert.Equal(t, "vnpay", strategy.Name())

	_, err = registry.Get("momo")
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}
