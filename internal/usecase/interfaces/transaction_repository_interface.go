package interfaces

import (
	"context"
	"errors"

	"payhook/internal/domain/entities"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionConflict = errors.New("transaction changed concurrently")
)

// ITransactionRepository is the storage contract the webhook processors run against.
//
// Lookups return a zero Transaction (ID == "") and a nil error when nothing matches.
// Update applies the patch only when patch.ExpectedStatus (if set) still equals the stored
// status; otherwise it returns ErrTransactionConflict. A missing id yields ErrTransactionNotFound.
// Implementations must give read-your-writes consistency for GetByID after Update.
type ITransactionRepository interface {
	Create(ctx context.Context, tx entities.Transaction) (entities.Transaction, error)
	GetByID(ctx context.Context, id string) (entities.Transaction, error)
	// GetByShortID prefers the non-terminal holder of shortID; otherwise the most recently updated one.
	GetByShortID(ctx context.Context, shortID string) (entities.Transaction, error)
	GetByProviderTransactionID(ctx context.Context, provider entities.Provider, extID string) (entities.Transaction, error)
	Update(ctx context.Context, id string, patch entities.TransactionPatch) error
	FindPending(ctx context.Context, userID, planID string) (entities.Transaction, error)
	// ListByDateRange returns the provider's transactions whose provider create time is within [fromMs, toMs].
	ListByDateRange(ctx context.Context, provider entities.Provider, fromMs, toMs int64) ([]entities.Transaction, error)
}
