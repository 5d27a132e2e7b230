package entities

import (
	"errors"
	"time"
)

var ErrInvalidTransition = errors.New("invalid transaction status transition")

// TransactionStatus is the canonical lifecycle shared by every provider.
//
// Allowed moves:
//   - PENDING -> PREPARED -> COMPLETED
//   - PENDING|PREPARED -> FAILED
//   - COMPLETED -> FAILED (refund, once)
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusPrepared  TransactionStatus = "PREPARED"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// IsTerminal reports whether no forward move is possible from s.
// COMPLETED still allows the single refund move to FAILED.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// CanTransitionTo reports whether moving from s to next keeps the lifecycle monotonic.
// Same-status writes are accepted for PENDING and PREPARED, they carry attribute updates only.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return next == TransactionStatusPending || next == TransactionStatusPrepared ||
			next == TransactionStatusCompleted || next == TransactionStatusFailed
	case TransactionStatusPrepared:
		return next == TransactionStatusPrepared || next == TransactionStatusCompleted || next == TransactionStatusFailed
	case TransactionStatusCompleted:
		return next == TransactionStatusFailed
	default:
		return false
	}
}

// Provider identifies the payment gateway a transaction is attributed to.
type Provider string

const (
	ProviderPayme  Provider = "payme"
	ProviderClick  Provider = "click"
	ProviderPaynet Provider = "paynet"
)

func (p Provider) IsValid() bool {
	switch p {
	case ProviderPayme, ProviderClick, ProviderPaynet:
		return true
	}
	return false
}

// Transaction is the canonical payment record every webhook protocol works against.
//
// Monetary representation:
//   - Amount is always in minor units (1 major = 100 minor). Major values are derived, never stored.
//
// Provider times are epoch milliseconds as reported (or assigned) for the provider flow.
type Transaction struct {
	ID                    string            `json:"id"`
	UserID                string            `json:"user_id"`
	PlanID                string            `json:"plan_id"`
	Provider              Provider          `json:"provider,omitempty"`
	Amount                int64             `json:"amount"`
	Status                TransactionStatus `json:"status"`
	ProviderTransactionID *string           `json:"provider_transaction_id,omitempty"`
	ProviderCreateTime    *int64            `json:"provider_create_time,omitempty"`
	ProviderPerformTime   *int64            `json:"provider_perform_time,omitempty"`
	ProviderCancelTime    *int64            `json:"provider_cancel_time,omitempty"`
	CancelReason          *int              `json:"cancel_reason,omitempty"`
	ShortID               *string           `json:"short_id,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// HasProviderTransactionID reports whether extID is the external id attached to t.
func (t Transaction) HasProviderTransactionID(extID string) bool {
	return t.ProviderTransactionID != nil && *t.ProviderTransactionID == extID
}

// Apply returns a copy of t with every non-nil patch field set.
func (t Transaction) Apply(p TransactionPatch) Transaction {
	out := t
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.Provider != nil {
		out.Provider = *p.Provider
	}
	if p.ProviderTransactionID != nil {
		out.ProviderTransactionID = Ptr(*p.ProviderTransactionID)
	}
	if p.ProviderCreateTime != nil {
		out.ProviderCreateTime = Ptr(*p.ProviderCreateTime)
	}
	if p.ProviderPerformTime != nil {
		out.ProviderPerformTime = Ptr(*p.ProviderPerformTime)
	}
	if p.ProviderCancelTime != nil {
		out.ProviderCancelTime = Ptr(*p.ProviderCancelTime)
	}
	if p.CancelReason != nil {
		out.CancelReason = Ptr(*p.CancelReason)
	}
	if p.UpdatedAt != nil {
		out.UpdatedAt = *p.UpdatedAt
	}
	return out
}

// TransactionPatch is a partial update. ExpectedStatus, when set, is a precondition:
// stores apply the patch only if the persisted status still matches it.
type TransactionPatch struct {
	ExpectedStatus *TransactionStatus

	Status                *TransactionStatus
	Provider              *Provider
	ProviderTransactionID *string
	ProviderCreateTime    *int64
	ProviderPerformTime   *int64
	ProviderCancelTime    *int64
	CancelReason          *int
	UpdatedAt             *time.Time
}

// ValidateTransition checks the move from t to the patched status, including the refund rule:
// leaving COMPLETED requires a cancel reason and a cancel time.
func (t Transaction) ValidateTransition(p TransactionPatch) error {
	if p.Status == nil {
		return nil
	}
	if !t.Status.CanTransitionTo(*p.Status) {
		return ErrInvalidTransition
	}
	if t.Status == TransactionStatusCompleted && *p.Status == TransactionStatusFailed {
		if p.CancelReason == nil || p.ProviderCancelTime == nil {
			return ErrInvalidTransition
		}
	}
	return nil
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// UnixMilli is the provider time representation used across protocols.
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
