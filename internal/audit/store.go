package audit

import "context"

// Store persists audit events. Implementations must be append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCostume(ctx context.Context, costumeID string) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}
