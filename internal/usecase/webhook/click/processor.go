package click

import (
	"context"
	"errors"
	"fmt"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"
	"payhook/internal/usecase/webhook"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AmountToleranceMinor absorbs rounding in the major-unit amount Click sends.
const AmountToleranceMinor int64 = 1

type Config struct {
	ServiceID string
	SecretKey string
}

// call is what an action handler works on: the verified request and the resolved transaction.
type call struct {
	req request
	tx  entities.Transaction
}

// Processor implements the Click Prepare/Complete protocol.
type Processor struct {
	cfg       Config
	repo      interfaces.ITransactionRepository
	lifecycle *webhook.Lifecycle
	logger    *zap.Logger
	actions   *webhook.Dispatcher[int, call]
}

var _ webhook.Processor = (*Processor)(nil)

func NewProcessor(cfg Config, repo interfaces.ITransactionRepository, callbacks interfaces.Callbacks, logger *zap.Logger, opts ...webhook.Option) (*Processor, error) {
	if cfg.ServiceID == "" || cfg.SecretKey == "" {
		return nil, webhook.ErrMissingCredentials
	}
	if callbacks.Payments == nil {
		return nil, webhook.ErrMissingCallbacks
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("click")

	p := &Processor{
		cfg:       cfg,
		repo:      repo,
		lifecycle: webhook.NewLifecycle(repo, callbacks.Payments, logger, opts...),
		logger:    logger,
	}
	p.actions = webhook.NewDispatcher(map[int]webhook.MethodFunc[call]{
		ActionPrepare:  p.prepare,
		ActionComplete: p.complete,
	})
	return p, nil
}

// Handle always answers with HTTP 200 and a flat body carrying the error code.
func (p *Processor) Handle(ctx context.Context, req webhook.Request) webhook.Response {
	in, err := decodeRequest(req.ContentType, req.Body)
	if err != nil {
		return webhook.OK(p.encode(in, nil, err))
	}
	result, err := p.process(ctx, in)
	return webhook.OK(p.encode(in, result, err))
}

func (p *Processor) process(ctx context.Context, req request) (any, error) {
	if !verifySignature(req, p.cfg.ServiceID, p.cfg.SecretKey) {
		p.logger.Warn("[click][processor] signature rejected", zap.String("click_trans_id", req.ClickTransID.String()))
		return nil, CodeSignCheckFailed
	}
	if !p.actions.Has(req.action) {
		return nil, CodeActionNotFound
	}

	tx, err := p.resolve(ctx, req.MerchantTransID.String())
	if err != nil {
		return nil, err
	}
	if tx.ID == "" {
		return nil, CodeUserNotFound
	}

	if req.errorCode < 0 {
		if err := p.forceFailed(ctx, tx, req); err != nil {
			return nil, err
		}
		return nil, CodeTransactionCancelled
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil || !webhook.MajorWithinTolerance(amount, tx.Amount, AmountToleranceMinor) {
		return nil, CodeInvalidAmount
	}

	return p.actions.Dispatch(ctx, req.action, call{req: req, tx: tx})
}

// resolve tries the merchant reference as the internal id first, then as a shortId.
func (p *Processor) resolve(ctx context.Context, ref string) (entities.Transaction, error) {
	tx, err := p.repo.GetByID(ctx, ref)
	if err != nil {
		return tx, fmt.Errorf("get transaction %s: %w", ref, err)
	}
	if tx.ID != "" {
		return tx, nil
	}
	tx, err = p.repo.GetByShortID(ctx, ref)
	if err != nil {
		return tx, fmt.Errorf("get transaction by short id %s: %w", ref, err)
	}
	return tx, nil
}

// forceFailed records a provider-side failure. Leaving COMPLETED is a refund and
// goes through the cancellation callback.
func (p *Processor) forceFailed(ctx context.Context, tx entities.Transaction, req request) error {
	if tx.Status == entities.TransactionStatusFailed {
		return nil
	}
	p.logger.Info("[click][processor] provider reported failure",
		zap.String("transaction_id", tx.ID), zap.Int("error", req.errorCode), zap.String("error_note", req.ErrorNote))

	_, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:             entities.Ptr(entities.TransactionStatusFailed),
		Provider:           entities.Ptr(entities.ProviderClick),
		CancelReason:       entities.Ptr(req.errorCode),
		ProviderCancelTime: entities.Ptr(p.lifecycle.NowMillis()),
	})
	return err
}

func (p *Processor) prepare(ctx context.Context, c call) (any, error) {
	tx, req := c.tx, c.req
	switch tx.Status {
	case entities.TransactionStatusCompleted:
		return nil, CodeAlreadyPaid
	case entities.TransactionStatusFailed:
		return nil, CodeTransactionCancelled
	}

	extID := req.ClickTransID.String()
	if tx.ProviderTransactionID != nil && !tx.HasProviderTransactionID(extID) {
		return nil, CodeBadRequest
	}
	if tx.Status == entities.TransactionStatusPrepared && tx.HasProviderTransactionID(extID) {
		return response{MerchantPrepareID: tx.ID}, nil
	}

	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:                entities.Ptr(entities.TransactionStatusPrepared),
		Provider:              entities.Ptr(entities.ProviderClick),
		ProviderTransactionID: entities.Ptr(extID),
		ProviderCreateTime:    entities.Ptr(p.lifecycle.NowMillis()),
	})
	if err != nil {
		return nil, err
	}
	return response{MerchantPrepareID: next.ID}, nil
}

func (p *Processor) complete(ctx context.Context, c call) (any, error) {
	tx, req := c.tx, c.req
	if req.MerchantPrepareID.String() != tx.ID {
		return nil, CodeIDMismatch
	}

	switch tx.Status {
	case entities.TransactionStatusCompleted:
		return response{MerchantConfirmID: tx.ID}, nil
	case entities.TransactionStatusFailed:
		return nil, CodeTransactionCancelled
	}

	extID := req.ClickTransID.String()
	if tx.ProviderTransactionID != nil && !tx.HasProviderTransactionID(extID) {
		return nil, CodeBadRequest
	}

	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:                entities.Ptr(entities.TransactionStatusCompleted),
		Provider:              entities.Ptr(entities.ProviderClick),
		ProviderTransactionID: entities.Ptr(extID),
		ProviderPerformTime:   entities.Ptr(p.lifecycle.NowMillis()),
	})
	if err != nil {
		return nil, err
	}
	return response{MerchantConfirmID: next.ID}, nil
}

func (p *Processor) encode(req request, result any, err error) response {
	out, _ := result.(response)
	out.ClickTransID = req.ClickTransID.String()
	out.MerchantTransID = req.MerchantTransID.String()

	code := CodeSuccess
	if err != nil {
		if !errors.As(err, &code) {
			p.logger.Error("[click][processor] action failed",
				zap.Int("action", req.action), zap.String("click_trans_id", out.ClickTransID), zap.Error(err))
			code = CodeInternalError
		}
	}
	out.Error = int(code)
	out.ErrorNote = code.Note()
	return out
}
