package audit

import (
	"context"
)

// Store persists audit events. Implementations are append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApplication(ctx context.Context, applicationID string) ([]Event, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Event, error)
}
