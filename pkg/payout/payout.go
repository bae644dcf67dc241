package payout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Request describes a single B2C payout to a collector's phone.
type Request struct {
	Amount      decimal.Decimal // KES
	PhoneNumber string          // e.g. 254712345678
	Description string
	Remarks     string
	OrderID     string // unique; used to correlate the callback
	CallbackURL string
}

type Response struct {
	Reference           string
	Status              string
	ResponseCode        string
	ResponseDescription string
}

// Provider sends money out to collectors. Implementations must be safe
// for concurrent use.
type Provider interface {
	InitiatePayout(ctx context.Context, req Request) (*Response, error)
}
