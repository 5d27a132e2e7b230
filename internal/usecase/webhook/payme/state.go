package payme

import "payhook/internal/domain/entities"

// Merchant API transaction states.
const (
	StateCreated                = 1
	StateCompleted              = 2
	StateCancelled              = -1
	StateCancelledAfterComplete = -2
)

// Cancel reasons reported by CheckTransaction/GetStatement.
const (
	ReasonExecutionError = 3
	ReasonRefund         = 5
)

// stateOf maps the canonical status onto the Merchant API state.
func stateOf(tx entities.Transaction) int {
	switch tx.Status {
	case entities.TransactionStatusCompleted:
		return StateCompleted
	case entities.TransactionStatusFailed:
		if tx.ProviderPerformTime != nil {
			return StateCancelledAfterComplete
		}
		return StateCancelled
	default:
		return StateCreated
	}
}

// reasonOf derives the reason code: refunds always report ReasonRefund, other
// cancellations report the stored reason or ReasonExecutionError, live transactions none.
func reasonOf(tx entities.Transaction) *int {
	switch stateOf(tx) {
	case StateCancelledAfterComplete:
		return entities.Ptr(ReasonRefund)
	case StateCancelled:
		if tx.CancelReason != nil {
			return entities.Ptr(*tx.CancelReason)
		}
		return entities.Ptr(ReasonExecutionError)
	default:
		return nil
	}
}

func millis(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
