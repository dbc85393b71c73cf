package store

import (
	"context"

	"call-logs-go/internal/types"
)

// Store is the read-only document-store boundary. FetchAll returns every
// record in the configured collection in the store's iteration order; there
// is deliberately no filtering or server-side sorting.
type Store interface {
	FetchAll(ctx context.Context) ([]types.RawRecord, error)
}
