package webhook

import (
	"context"
	"fmt"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// Lifecycle is the single write path for every protocol:
// validate the move, run the entitlement side effect, then persist conditionally.
//
// The callback always completes before the status advances. When it fails the
// transaction is left untouched and the error is returned so the protocol answers
// with its internal error and the provider redelivers.
type Lifecycle struct {
	repo     interfaces.ITransactionRepository
	payments interfaces.IPaymentCallbacks
	logger   *zap.Logger
	now      func() time.Time
}

func NewLifecycle(repo interfaces.ITransactionRepository, payments interfaces.IPaymentCallbacks, logger *zap.Logger, opts ...Option) *Lifecycle {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := NewSettings(opts...)
	return &Lifecycle{repo: repo, payments: payments, logger: logger, now: s.Now}
}

func (l *Lifecycle) Now() time.Time {
	return l.now()
}

func (l *Lifecycle) NowMillis() int64 {
	return entities.UnixMilli(l.now())
}

// Transition moves tx according to patch and returns the persisted view.
// patch.ExpectedStatus defaults to tx.Status.
func (l *Lifecycle) Transition(ctx context.Context, tx entities.Transaction, patch entities.TransactionPatch) (entities.Transaction, error) {
	if err := tx.ValidateTransition(patch); err != nil {
		return tx, fmt.Errorf("transaction %s %s: %w", tx.ID, describe(tx, patch), err)
	}

	now := l.now().UTC()
	patch.UpdatedAt = &now
	if patch.ExpectedStatus == nil {
		patch.ExpectedStatus = entities.Ptr(tx.Status)
	}
	next := tx.Apply(patch)

	switch {
	case tx.Status != entities.TransactionStatusCompleted && next.Status == entities.TransactionStatusCompleted:
		if err := l.payments.OnPaymentCompleted(ctx, next); err != nil {
			l.logger.Warn("[lifecycle] completion callback failed; status kept",
				zap.String("transaction_id", tx.ID), zap.String("status", string(tx.Status)), zap.Error(err))
			return tx, fmt.Errorf("completion callback: %w", err)
		}
	case tx.Status == entities.TransactionStatusCompleted && next.Status == entities.TransactionStatusFailed:
		if err := l.payments.OnPaymentCancelled(ctx, next); err != nil {
			l.logger.Warn("[lifecycle] cancellation callback failed; status kept",
				zap.String("transaction_id", tx.ID), zap.Error(err))
			return tx, fmt.Errorf("cancellation callback: %w", err)
		}
	}

	if err := l.repo.Update(ctx, tx.ID, patch); err != nil {
		l.logger.Error("[lifecycle] update failed",
			zap.String("transaction_id", tx.ID), zap.String("from", string(tx.Status)),
			zap.String("to", string(next.Status)), zap.Error(err))
		return tx, err
	}

	l.logger.Info("[lifecycle] transaction updated",
		zap.String("transaction_id", tx.ID), zap.String("from", string(tx.Status)), zap.String("to", string(next.Status)))
	return next, nil
}

func describe(tx entities.Transaction, patch entities.TransactionPatch) string {
	if patch.Status == nil {
		return string(tx.Status)
	}
	return string(tx.Status) + "->" + string(*patch.Status)
}
