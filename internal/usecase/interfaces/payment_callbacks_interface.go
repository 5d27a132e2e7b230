package interfaces

import (
	"context"
	"encoding/json"

	"payhook/internal/domain/entities"
)

// IPaymentCallbacks grants and revokes the entitlement bought by a transaction.
//
// A nil error means the side effect happened. Any error keeps the transaction status
// unchanged and makes the provider redeliver the webhook.
type IPaymentCallbacks interface {
	OnPaymentCompleted(ctx context.Context, tx entities.Transaction) error
	OnPaymentCancelled(ctx context.Context, tx entities.Transaction) error
}

type IUserInfoProvider interface {
	GetUserInfo(ctx context.Context, userID string) (entities.UserInfo, error)
}

// IFiscalDataProvider returns the receipt detail attached to a Payme CheckPerformTransaction answer.
type IFiscalDataProvider interface {
	GetFiscalData(ctx context.Context, tx entities.Transaction) (json.RawMessage, error)
}

type IPasswordRotator interface {
	OnPasswordChangeRequested(ctx context.Context, newPassword string) error
}

// Callbacks bundles the business-logic collaborators. Only Payments is required.
type Callbacks struct {
	Payments  IPaymentCallbacks
	UserInfo  IUserInfoProvider
	Fiscal    IFiscalDataProvider
	Passwords IPasswordRotator
}
