package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidPaymentID = errors.New("invalid payment id")
	ErrInvalidUserID    = errors.New("invalid user_id")
	ErrInvalidPlanID    = errors.New("invalid plan_id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidProvider  = errors.New("invalid provider")
	ErrShortIDExhausted = errors.New("no free short id")
)

// maxShortIDAttempts bounds the search for a shortId not held by a live transaction.
const maxShortIDAttempts = 20

type CreatePaymentInput struct {
	UserID   string
	PlanID   string
	Amount   int64
	Provider entities.Provider
}

// IPaymentUseCase is the entry point that opens a transaction for the webhook flows.
//
// Requested behavior:
//   - At most one PENDING transaction per (user, plan); a repeated request reuses it.
//   - Every new transaction gets a 5-digit shortId for the providers that need one.
type IPaymentUseCase interface {
	CreatePayment(ctx context.Context, in CreatePaymentInput) (entities.Transaction, error)
	GetByID(ctx context.Context, id string) (entities.Transaction, error)
}

type PaymentUseCase struct {
	repo    interfaces.ITransactionRepository
	locker  interfaces.ILocker
	logger  *zap.Logger
	now     func() time.Time
	shortID func() string
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(repo interfaces.ITransactionRepository, locker interfaces.ILocker, logger *zap.Logger) *PaymentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentUseCase{repo: repo, locker: locker, logger: logger, now: time.Now, shortID: randomShortID}
}

func randomShortID() string {
	return strconv.Itoa(10000 + rand.Intn(90000))
}

func (u *PaymentUseCase) CreatePayment(ctx context.Context, in CreatePaymentInput) (entities.Transaction, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.PlanID = strings.TrimSpace(in.PlanID)
	switch {
	case in.UserID == "":
		return entities.Transaction{}, ErrInvalidUserID
	case in.PlanID == "":
		return entities.Transaction{}, ErrInvalidPlanID
	case in.Amount <= 0:
		return entities.Transaction{}, ErrInvalidAmount
	case in.Provider != "" && !in.Provider.IsValid():
		return entities.Transaction{}, ErrInvalidProvider
	}

	unlock, err := u.locker.Lock(ctx, "payment:"+in.UserID+":"+in.PlanID)
	if err != nil {
		u.logger.Error("[payment][usecase] lock failed", zap.String("user_id", in.UserID), zap.String("plan_id", in.PlanID), zap.Error(err))
		return entities.Transaction{}, err
	}
	defer unlock()

	pending, err := u.repo.FindPending(ctx, in.UserID, in.PlanID)
	if err != nil {
		return entities.Transaction{}, fmt.Errorf("find pending: %w", err)
	}
	if pending.ID != "" {
		u.logger.Info("[payment][usecase] reusing pending transaction",
			zap.String("transaction_id", pending.ID), zap.String("user_id", in.UserID), zap.String("plan_id", in.PlanID))
		return pending, nil
	}

	shortID, release, err := u.allocateShortID(ctx)
	if err != nil {
		return entities.Transaction{}, err
	}
	defer release()

	now := u.now().UTC()
	created, err := u.repo.Create(ctx, entities.Transaction{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		PlanID:    in.PlanID,
		Provider:  in.Provider,
		Amount:    in.Amount,
		Status:    entities.TransactionStatusPending,
		ShortID:   &shortID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		u.logger.Error("[payment][usecase] create failed", zap.String("user_id", in.UserID), zap.Error(err))
		return entities.Transaction{}, err
	}
	u.logger.Info("[payment][usecase] transaction created",
		zap.String("transaction_id", created.ID), zap.String("short_id", shortID), zap.Int64("amount", created.Amount))
	return created, nil
}

// allocateShortID returns a shortId no live transaction holds, together with
// the release of its lock. The lock must stay held until the transaction
// carrying the shortId is stored. Lock order is always (user, plan) then shortId.
func (u *PaymentUseCase) allocateShortID(ctx context.Context) (string, func(), error) {
	for i := 0; i < maxShortIDAttempts; i++ {
		candidate := u.shortID()
		unlock, err := u.locker.Lock(ctx, "shortid:"+candidate)
		if err != nil {
			return "", nil, fmt.Errorf("lock short id: %w", err)
		}

		holder, err := u.repo.GetByShortID(ctx, candidate)
		if err != nil {
			unlock()
			return "", nil, fmt.Errorf("check short id: %w", err)
		}
		if holder.ID == "" || holder.Status.IsTerminal() {
			return candidate, unlock, nil
		}
		unlock()
	}
	return "", nil, ErrShortIDExhausted
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Transaction{}, ErrInvalidPaymentID
	}

	tx, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Transaction{}, err
	}
	if tx.ID == "" {
		return entities.Transaction{}, ErrPaymentNotFound
	}
	return tx, nil
}
