package response

import (
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/webhook"
)

type PaymentResponse struct {
	ID                    string    `json:"id"`
	ShortID               string    `json:"short_id,omitempty"`
	UserID                string    `json:"user_id"`
	PlanID                string    `json:"plan_id"`
	Provider              string    `json:"provider,omitempty"`
	Amount                int64     `json:"amount"`
	AmountMajor           string    `json:"amount_major"`
	Status                string    `json:"status"`
	ProviderTransactionID string    `json:"provider_transaction_id,omitempty"`
	CancelReason          *int      `json:"cancel_reason,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func FromTransaction(tx entities.Transaction) PaymentResponse {
	res := PaymentResponse{
		ID:           tx.ID,
		UserID:       tx.UserID,
		PlanID:       tx.PlanID,
		Provider:     string(tx.Provider),
		Amount:       tx.Amount,
		AmountMajor:  webhook.ToMajor(tx.Amount).StringFixed(2),
		Status:       string(tx.Status),
		CancelReason: tx.CancelReason,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
	if tx.ShortID != nil {
		res.ShortID = *tx.ShortID
	}
	if tx.ProviderTransactionID != nil {
		res.ProviderTransactionID = *tx.ProviderTransactionID
	}
	return res
}
