package payment

import (
	"context"
	"fmt"
	"net/url"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

type PayPalConfig struct {
	// ExchangeRate is VND per USD, used to convert cart totals into the
	// provider's settlement currency.
	ExchangeRate int64
	BrandName    string
}

type PayPal struct {
	client *paypal.Client
	cfg    PayPalConfig
}

func NewPayPal(client *paypal.Client, cfg PayPalConfig) *PayPal {
	return &PayPal{client: client, cfg: cfg}
}

func (p *PayPal) Name() string {
	return "paypal"
}

func (p *PayPal) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	usdValue := decimal.NewFromInt(req.Amount).
		Div(decimal.NewFromInt(p.cfg.ExchangeRate)).
		StringFixed(2)

	order, err := p.client.CreateOrder(ctx, paypal.OrderIntentCapture,
		[]paypal.PurchaseUnitRequest{
			{
				ReferenceID: req.OrderID,
				Description: req.Description,
				Amount: &paypal.PurchaseUnitAmount{
					Currency: "USD",
					Value:    usdValue,
				},
			},
		},
		nil,
		&paypal.ApplicationContext{
			ReturnURL:  req.ReturnURL,
			CancelURL:  req.ReturnURL + "?cancel=true",
			UserAction: paypal.UserActionPayNow,
			BrandName:  p.cfg.BrandName,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrGatewayUnavailable, err)
	}

	var approveURL string
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}
	if approveURL == "" {
		return nil, fmt.Errorf("%w: order %s has no approve link", ErrGatewayUnavailable, order.ID)
	}

	return &InitiateResult{
		RedirectURL:    approveURL,
		GatewayOrderID: order.ID,
	}, nil
}

func (p *PayPal) VerifyCallback(ctx context.Context, query url.Values) (*CallbackResult, error) {
	token := query.Get("token")

	if query.Get("cancel") == "true" {
		return &CallbackResult{
			Valid:   true,
			Success: false,
			OrderID: token,
			Message: "Payment cancelled by user",
		}, nil
	}

	if token == "" {
		return &CallbackResult{Valid: false, Message: "missing order token"}, nil
	}

	capture, err := p.client.CaptureOrder(ctx, token, paypal.CaptureOrderRequest{})
	if err != nil {
		// A failed capture call proves nothing in either direction.
		return &CallbackResult{Valid: false, OrderID: token, Message: "capture failed"}, nil
	}

	// A PENDING capture is still a committed financial event from the
	// merchant's point of view, so it counts as success alongside COMPLETED.
	status := string(capture.Status)
	success := status == "COMPLETED" || status == "PENDING"

	// Capture ids live in a nested record whose shape has drifted across SDK
	// versions; fall back to the order id when it is absent.
	captureID := ""
	if len(capture.PurchaseUnits) > 0 {
		unit := capture.PurchaseUnits[0]
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			captureID = unit.Payments.Captures[0].ID
		}
	}
	if captureID == "" {
		captureID = capture.ID
	}

	message := "Payment failed or still processing"
	if success {
		message = "Payment success"
	}

	return &CallbackResult{
		Valid:         true,
		Success:       success,
		OrderID:       token,
		TransactionID: captureID,
		Message:       message,
	}, nil
}

func (p *PayPal) Refund(ctx context.Context, transactionID string, amount int64) error {
	usdValue := decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(p.cfg.ExchangeRate)).
		StringFixed(2)

	_, err := p.client.RefundCapture(ctx, transactionID, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: "USD",
			Value:    usdValue,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: refund capture %s: %v", ErrGatewayUnavailable, transactionID, err)
	}
	return nil
}
