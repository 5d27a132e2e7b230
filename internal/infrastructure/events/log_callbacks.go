package events

import (
	"context"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// LogPaymentCallbacks records entitlement changes in the log only.
// It backs local runs where no Kafka broker is configured.
type LogPaymentCallbacks struct {
	logger *zap.Logger
}

var _ interfaces.IPaymentCallbacks = (*LogPaymentCallbacks)(nil)

func NewLogPaymentCallbacks(logger *zap.Logger) *LogPaymentCallbacks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPaymentCallbacks{logger: logger.Named("callbacks")}
}

func (c *LogPaymentCallbacks) OnPaymentCompleted(_ context.Context, tx entities.Transaction) error {
	c.logger.Info("[callbacks][log] payment completed", transactionFields(tx)...)
	return nil
}

func (c *LogPaymentCallbacks) OnPaymentCancelled(_ context.Context, tx entities.Transaction) error {
	c.logger.Info("[callbacks][log] payment cancelled", transactionFields(tx)...)
	return nil
}

// LogPasswordRotator acknowledges Paynet password changes. The new password
// itself is never logged; operators rotate PAYNET_PASSWORD out of band.
type LogPasswordRotator struct {
	logger *zap.Logger
}

var _ interfaces.IPasswordRotator = (*LogPasswordRotator)(nil)

func NewLogPasswordRotator(logger *zap.Logger) *LogPasswordRotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPasswordRotator{logger: logger.Named("callbacks")}
}

func (r *LogPasswordRotator) OnPasswordChangeRequested(_ context.Context, newPassword string) error {
	r.logger.Warn("[callbacks][password] paynet requested a password change", zap.Int("length", len(newPassword)))
	return nil
}

func transactionFields(tx entities.Transaction) []zap.Field {
	fields := []zap.Field{
		zap.String("transaction_id", tx.ID),
		zap.String("user_id", tx.UserID),
		zap.String("plan_id", tx.PlanID),
		zap.String("provider", string(tx.Provider)),
		zap.Int64("amount", tx.Amount),
	}
	if tx.CancelReason != nil {
		fields = append(fields, zap.Int("cancel_reason", *tx.CancelReason))
	}
	return fields
}
