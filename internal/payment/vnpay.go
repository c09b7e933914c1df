package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
}

type VNPay struct {
	cfg VNPayConfig
	now func() time.Time
}

func NewVNPay(cfg VNPayConfig) *VNPay {
	return &VNPay{cfg: cfg, now: time.Now}
}

func (v *VNPay) Name() string {
	return "vnpay"
}

func (v *VNPay) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	description := req.Description
	if description == "" {
		description = "Thanh toan don hang " + req.OrderID
	}
	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress = "127.0.0.1"
	}

	txnRef := truncate(req.OrderID, 50)
	params := map[string]string{
		"vnp_Version": "2.1.0",
		"vnp_Command": "pay",
		"vnp_TmnCode": v.cfg.TmnCode,
		// VNPay expects the amount in the smallest currency subunit.
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  url.QueryEscape(truncate(description, 255)),
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  req.ReturnURL,
		"vnp_IpAddr":     ipAddress,
		"vnp_CreateDate": v.now().Format("20060102150405"),
	}

	signData := canonicalize(params)
	secureHash := hmacSHA512Hex(v.cfg.HashSecret, signData)
	redirectURL := v.cfg.BaseURL + "?" + signData + "&vnp_SecureHash=" + secureHash

	return &InitiateResult{
		RedirectURL:    redirectURL,
		GatewayOrderID: txnRef,
	}, nil
}

func (v *VNPay) VerifyCallback(ctx context.Context, query url.Values) (*CallbackResult, error) {
	received := query.Get("vnp_SecureHash")

	params := make(map[string]string, len(query))
	for key := range query {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params[key] = query.Get(key)
	}

	expected := hmacSHA512Hex(v.cfg.HashSecret, canonicalize(params))
	if received == "" || !hmac.Equal([]byte(expected), []byte(received)) {
		return &CallbackResult{Valid: false, Message: "invalid secure hash"}, nil
	}

	// "00" is VNPay's no-error sentinel; any other code is a genuine decline,
	// not a forgery.
	success := params["vnp_ResponseCode"] == "00"
	message := "Payment failed"
	if success {
		message = "Payment success"
	}

	return &CallbackResult{
		Valid:         true,
		Success:       success,
		OrderID:       params["vnp_TxnRef"],
		TransactionID: params["vnp_TransactionNo"],
		Message:       message,
	}, nil
}

func (v *VNPay) Refund(ctx context.Context, transactionID string, amount int64) error {
	return ErrNotImplemented
}

// canonicalize drops empty values, sorts keys lexicographically and joins
// key=value pairs with '&' without encoding, matching what VNPay signs.
func canonicalize(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(params[key])
	}
	return b.String()
}

func hmacSHA512Hex(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
