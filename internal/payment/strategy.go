package payment

import (
	"context"
	"errors"
	"net/url"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrNotImplemented      = errors.New("refund is not supported by this provider")
)

type InitiateRequest struct {
	Amount      int64 // VND
	OrderID     string
	Description string
	ReturnURL   string
	IPAddress   string
}

type InitiateResult struct {
	RedirectURL    string
	GatewayOrderID string
}

// CallbackResult is the normalized outcome of a provider callback.
// Valid=false means authenticity could not be established (bad signature,
// capture error) and must never be treated as a payment signal either way.
// Success is only meaningful when Valid is true.
type CallbackResult struct {
	Valid         bool
	Success       bool
	OrderID       string
	TransactionID string
	Message       string
}

type Strategy interface {
	Name() string
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	VerifyCallback(ctx context.Context, params url.Values) (*CallbackResult, error)
	Refund(ctx context.Context, transactionID string, amount int64) error
}

type Registry struct {
	strategies map[string]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range strategies {
		r.strategies[s.Name()] = s
	}
	return r
}

func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return s, nil
}
