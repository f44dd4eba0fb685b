package orderbook

import "context"

// Store is the orderbook-specific projection store capability (spec
// §6), separate from projection.Store since orders/transaction info
// are not part of the C4 data model.
type Store interface {
	UpsertOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, orderHash string) (*Order, error)
	AppendOrderTransactionInfo(ctx context.Context, info OrderTransactionInfo) error

	// LastTransactionInfo returns the most recent audit row for an
	// order, used by Rollback to learn whether the preceding event was
	// Fulfilled (spec §4.5 tie-break).
	LastTransactionInfo(ctx context.Context, orderHash string) (*OrderTransactionInfo, error)

	// RemoveActiveOrder drops orderHash from the active-orders index on
	// any terminal transition (Cancelled, Executed). Supplemented
	// feature, see DESIGN.md; a no-op store may ignore it.
	RemoveActiveOrder(ctx context.Context, orderHash string) error
}
