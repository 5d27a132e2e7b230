package entities

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionStatusPending, TransactionStatusPrepared, true},
		{TransactionStatusPending, TransactionStatusCompleted, true},
		{TransactionStatusPending, TransactionStatusFailed, true},
		{TransactionStatusPrepared, TransactionStatusCompleted, true},
		{TransactionStatusPrepared, TransactionStatusFailed, true},
		{TransactionStatusPrepared, TransactionStatusPending, false},
		{TransactionStatusCompleted, TransactionStatusFailed, true},
		{TransactionStatusCompleted, TransactionStatusPrepared, false},
		{TransactionStatusCompleted, TransactionStatusCompleted, false},
		{TransactionStatusFailed, TransactionStatusCompleted, false},
		{TransactionStatusFailed, TransactionStatusFailed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestTransaction_ValidateTransition(t *testing.T) {
	completed := Transaction{ID: "tx-1", Status: TransactionStatusCompleted}

	t.Run("refund without reason", func(t *testing.T) {
		err := completed.ValidateTransition(TransactionPatch{
			Status:             Ptr(TransactionStatusFailed),
			ProviderCancelTime: Ptr(int64(1)),
		})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("refund with reason and cancel time", func(t *testing.T) {
		err := completed.ValidateTransition(TransactionPatch{
			Status:             Ptr(TransactionStatusFailed),
			ProviderCancelTime: Ptr(int64(1)),
			CancelReason:       Ptr(5),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("attribute-only patch", func(t *testing.T) {
		failed := Transaction{Status: TransactionStatusFailed}
		if err := failed.ValidateTransition(TransactionPatch{Provider: Ptr(ProviderPaynet)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestTransaction_Apply(t *testing.T) {
	now := time.Now().UTC()
	tx := Transaction{ID: "tx-1", Status: TransactionStatusPending, Amount: 5000000}

	out := tx.Apply(TransactionPatch{
		Status:                Ptr(TransactionStatusPrepared),
		ProviderTransactionID: Ptr("ext-1"),
		ProviderCreateTime:    Ptr(int64(1700000000000)),
		UpdatedAt:             &now,
	})

	if tx.Status != TransactionStatusPending || tx.ProviderTransactionID != nil {
		t.Fatalf("expected original to be untouched, got %+v", tx)
	}
	if out.Status != TransactionStatusPrepared || !out.HasProviderTransactionID("ext-1") {
		t.Fatalf("unexpected patched transaction: %+v", out)
	}
	if *out.ProviderCreateTime != 1700000000000 || !out.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected times: %+v", out)
	}
	if out.HasProviderTransactionID("ext-2") {
		t.Fatalf("expected ext-2 to not match")
	}
}
