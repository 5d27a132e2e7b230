package request

import (
	"strings"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase"
)

// PaymentCreateRequest opens (or reuses) a transaction the payer then settles
// through one of the webhook providers. Amount is in minor units.
type PaymentCreateRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	PlanID   string `json:"plan_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Provider string `json:"provider"`
}

func (r PaymentCreateRequest) ToInput() usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		UserID:   strings.TrimSpace(r.UserID),
		PlanID:   strings.TrimSpace(r.PlanID),
		Amount:   r.Amount,
		Provider: entities.Provider(strings.ToLower(strings.TrimSpace(r.Provider))),
	}
}
