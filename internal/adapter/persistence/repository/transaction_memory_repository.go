package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"
)

var ErrTransactionAlreadyExists = errors.New("transaction already exists")

// TransactionMemoryRepository keeps transactions in process memory.
// Used for local runs (STORE_DRIVER=memory) and as the store behind processor tests.
type TransactionMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]entities.Transaction
}

var _ interfaces.ITransactionRepository = (*TransactionMemoryRepository)(nil)

func NewTransactionMemoryRepository() *TransactionMemoryRepository {
	return &TransactionMemoryRepository{items: make(map[string]entities.Transaction)}
}

func (r *TransactionMemoryRepository) Create(_ context.Context, tx entities.Transaction) (entities.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[tx.ID]; ok {
		return entities.Transaction{}, ErrTransactionAlreadyExists
	}
	r.items[tx.ID] = clone(tx)
	return clone(tx), nil
}

func (r *TransactionMemoryRepository) GetByID(_ context.Context, id string) (entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.items[id]), nil
}

func (r *TransactionMemoryRepository) GetByShortID(_ context.Context, shortID string) (entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []entities.Transaction
	for _, tx := range r.items {
		if tx.ShortID != nil && *tx.ShortID == shortID {
			matches = append(matches, tx)
		}
	}
	return clone(pickByShortID(matches)), nil
}

func (r *TransactionMemoryRepository) GetByProviderTransactionID(_ context.Context, provider entities.Provider, extID string) (entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.items {
		if tx.Provider == provider && tx.HasProviderTransactionID(extID) {
			return clone(tx), nil
		}
	}
	return entities.Transaction{}, nil
}

func (r *TransactionMemoryRepository) Update(_ context.Context, id string, patch entities.TransactionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.items[id]
	if !ok {
		return interfaces.ErrTransactionNotFound
	}
	if patch.ExpectedStatus != nil && tx.Status != *patch.ExpectedStatus {
		return interfaces.ErrTransactionConflict
	}
	r.items[id] = tx.Apply(patch)
	return nil
}

func (r *TransactionMemoryRepository) FindPending(_ context.Context, userID, planID string) (entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.items {
		if tx.UserID == userID && tx.PlanID == planID && tx.Status == entities.TransactionStatusPending {
			return clone(tx), nil
		}
	}
	return entities.Transaction{}, nil
}

func (r *TransactionMemoryRepository) ListByDateRange(_ context.Context, provider entities.Provider, fromMs, toMs int64) ([]entities.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]entities.Transaction, 0)
	for _, tx := range r.items {
		if tx.Provider != provider || tx.ProviderCreateTime == nil {
			continue
		}
		if t := *tx.ProviderCreateTime; t >= fromMs && t <= toMs {
			items = append(items, clone(tx))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return *items[i].ProviderCreateTime < *items[j].ProviderCreateTime
	})
	return items, nil
}

// pickByShortID applies the shortId precedence: a non-terminal holder wins,
// otherwise the most recently updated transaction.
func pickByShortID(matches []entities.Transaction) entities.Transaction {
	var best entities.Transaction
	for _, tx := range matches {
		switch {
		case best.ID == "":
			best = tx
		case !tx.Status.IsTerminal() && best.Status.IsTerminal():
			best = tx
		case tx.Status.IsTerminal() == best.Status.IsTerminal() && tx.UpdatedAt.After(best.UpdatedAt):
			best = tx
		}
	}
	return best
}

// clone detaches pointer fields so callers cannot mutate stored state.
func clone(tx entities.Transaction) entities.Transaction {
	out := tx.Apply(entities.TransactionPatch{
		ProviderTransactionID: tx.ProviderTransactionID,
		ProviderCreateTime:    tx.ProviderCreateTime,
		ProviderPerformTime:   tx.ProviderPerformTime,
		ProviderCancelTime:    tx.ProviderCancelTime,
		CancelReason:          tx.CancelReason,
	})
	if tx.ShortID != nil {
		out.ShortID = entities.Ptr(*tx.ShortID)
	}
	return out
}
