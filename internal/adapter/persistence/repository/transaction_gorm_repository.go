package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"gorm.io/gorm"
)

// TransactionModel is the MySQL row for a transaction.
type TransactionModel struct {
	ID                    string  `gorm:"primaryKey;size:64"`
	UserID                string  `gorm:"size:64;not null;index:idx_tx_user_plan_status,priority:1"`
	PlanID                string  `gorm:"size:64;not null;index:idx_tx_user_plan_status,priority:2"`
	Provider              string  `gorm:"size:16;index:idx_tx_provider_create,priority:1;uniqueIndex:idx_tx_provider_ext,priority:1"`
	Amount                int64   `gorm:"not null"`
	Status                string  `gorm:"size:16;not null;index:idx_tx_user_plan_status,priority:3"`
	ProviderTransactionID *string `gorm:"size:128;uniqueIndex:idx_tx_provider_ext,priority:2"`
	ProviderCreateTime    *int64  `gorm:"index:idx_tx_provider_create,priority:2"`
	ProviderPerformTime   *int64
	ProviderCancelTime    *int64
	CancelReason          *int
	ShortID               *string `gorm:"size:8;index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (TransactionModel) TableName() string {
	return "payment_transactions"
}

// TransactionGormRepository persists transactions through GORM (MySQL in production).
type TransactionGormRepository struct {
	db *gorm.DB
}

var _ interfaces.ITransactionRepository = (*TransactionGormRepository)(nil)

func NewTransactionGormRepository(db *gorm.DB) *TransactionGormRepository {
	return &TransactionGormRepository{db: db}
}

func (r *TransactionGormRepository) Create(ctx context.Context, tx entities.Transaction) (entities.Transaction, error) {
	m := toTransactionModel(tx)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return entities.Transaction{}, ErrTransactionAlreadyExists
		}
		return entities.Transaction{}, err
	}
	return tx, nil
}

func (r *TransactionGormRepository) GetByID(ctx context.Context, id string) (entities.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *TransactionGormRepository) GetByShortID(ctx context.Context, shortID string) (entities.Transaction, error) {
	var rows []TransactionModel
	if err := r.db.WithContext(ctx).Where("short_id = ?", shortID).Find(&rows).Error; err != nil {
		return entities.Transaction{}, err
	}
	matches := make([]entities.Transaction, 0, len(rows))
	for _, m := range rows {
		matches = append(matches, fromTransactionModel(m))
	}
	return pickByShortID(matches), nil
}

func (r *TransactionGormRepository) GetByProviderTransactionID(ctx context.Context, provider entities.Provider, extID string) (entities.Transaction, error) {
	return r.first(r.db.WithContext(ctx).Where("provider = ? AND provider_transaction_id = ?", string(provider), extID))
}

func (r *TransactionGormRepository) FindPending(ctx context.Context, userID, planID string) (entities.Transaction, error) {
	return r.first(r.db.WithContext(ctx).
		Where("user_id = ? AND plan_id = ? AND status = ?", userID, planID, string(entities.TransactionStatusPending)).
		Order("created_at ASC"))
}

func (r *TransactionGormRepository) ListByDateRange(ctx context.Context, provider entities.Provider, fromMs, toMs int64) ([]entities.Transaction, error) {
	var rows []TransactionModel
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_create_time BETWEEN ? AND ?", string(provider), fromMs, toMs).
		Order("provider_create_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Transaction, 0, len(rows))
	for _, m := range rows {
		items = append(items, fromTransactionModel(m))
	}
	return items, nil
}

// Update runs one conditional UPDATE; zero affected rows means the row is gone
// or its status moved on since it was read.
func (r *TransactionGormRepository) Update(ctx context.Context, id string, patch entities.TransactionPatch) error {
	updates := transactionUpdates(patch)
	if len(updates) == 0 {
		return nil
	}

	q := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("id = ?", id)
	if patch.ExpectedStatus != nil {
		q = q.Where("status = ?", string(*patch.ExpectedStatus))
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update transaction %s: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&TransactionModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return interfaces.ErrTransactionNotFound
	}
	return interfaces.ErrTransactionConflict
}

func (r *TransactionGormRepository) first(q *gorm.DB) (entities.Transaction, error) {
	var m TransactionModel
	res := q.Limit(1).Find(&m)
	if res.Error != nil {
		return entities.Transaction{}, res.Error
	}
	if res.RowsAffected == 0 {
		return entities.Transaction{}, nil
	}
	return fromTransactionModel(m), nil
}

func transactionUpdates(patch entities.TransactionPatch) map[string]any {
	updates := map[string]any{}
	if patch.Status != nil {
		updates["status"] = string(*patch.Status)
	}
	if patch.Provider != nil {
		updates["provider"] = string(*patch.Provider)
	}
	if patch.ProviderTransactionID != nil {
		updates["provider_transaction_id"] = *patch.ProviderTransactionID
	}
	if patch.ProviderCreateTime != nil {
		updates["provider_create_time"] = *patch.ProviderCreateTime
	}
	if patch.ProviderPerformTime != nil {
		updates["provider_perform_time"] = *patch.ProviderPerformTime
	}
	if patch.ProviderCancelTime != nil {
		updates["provider_cancel_time"] = *patch.ProviderCancelTime
	}
	if patch.CancelReason != nil {
		updates["cancel_reason"] = *patch.CancelReason
	}
	if patch.UpdatedAt != nil {
		updates["updated_at"] = patch.UpdatedAt.UTC()
	}
	return updates
}

func toTransactionModel(tx entities.Transaction) TransactionModel {
	return TransactionModel{
		ID:                    tx.ID,
		UserID:                tx.UserID,
		PlanID:                tx.PlanID,
		Provider:              string(tx.Provider),
		Amount:                tx.Amount,
		Status:                string(tx.Status),
		ProviderTransactionID: tx.ProviderTransactionID,
		ProviderCreateTime:    tx.ProviderCreateTime,
		ProviderPerformTime:   tx.ProviderPerformTime,
		ProviderCancelTime:    tx.ProviderCancelTime,
		CancelReason:          tx.CancelReason,
		ShortID:               tx.ShortID,
		CreatedAt:             tx.CreatedAt.UTC(),
		UpdatedAt:             tx.UpdatedAt.UTC(),
	}
}

func fromTransactionModel(m TransactionModel) entities.Transaction {
	return entities.Transaction{
		ID:                    m.ID,
		UserID:                m.UserID,
		PlanID:                m.PlanID,
		Provider:              entities.Provider(m.Provider),
		Amount:                m.Amount,
		Status:                entities.TransactionStatus(m.Status),
		ProviderTransactionID: m.ProviderTransactionID,
		ProviderCreateTime:    m.ProviderCreateTime,
		ProviderPerformTime:   m.ProviderPerformTime,
		ProviderCancelTime:    m.ProviderCancelTime,
		CancelReason:          m.CancelReason,
		ShortID:               m.ShortID,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
	}
}
