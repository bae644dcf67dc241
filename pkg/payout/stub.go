package payout

import (
	"context"
	"fmt"
	"time"
)

// StubProvider is a no-op provider for development; payouts are marked
// successful without touching any money API.
type StubProvider struct{}

func (s *StubProvider) InitiatePayout(ctx context.Context, req Request) (*Response, error) {
	ref := req.OrderID
	if ref == "" {
		ref = fmt.Sprintf("stub_%d", time.Now().UnixNano())
	}
	return &Response{
		Reference: ref,
		Status:    "COMPLETED",
	}, nil
}
