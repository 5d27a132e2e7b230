package paynet

import (
	"context"
	"encoding/json"
	"fmt"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/webhook"

	"go.uber.org/zap"
)

// Transaction states reported by CheckTransaction and CancelTransaction.
const (
	StateSuccess   = 1
	StateCancelled = 2
	StateNotFound  = 3
)

// CancelReasonProvider is stored when Paynet cancels; the protocol carries no reason code.
const CancelReasonProvider = 1

type fields struct {
	OrderID  webhook.FlexString `json:"order_id"`
	ClientID webhook.FlexString `json:"client_id"`
}

// shortID is the customer-facing reference; order_id wins over client_id.
func (f fields) shortID() string {
	if f.OrderID != "" {
		return f.OrderID.String()
	}
	return f.ClientID.String()
}

type informationParams struct {
	Fields fields `json:"fields"`
}

type performParams struct {
	TransactionID webhook.FlexString `json:"transactionId"`
	Amount        *int64             `json:"amount"`
	Fields        fields             `json:"fields"`
}

type transactionParams struct {
	TransactionID webhook.FlexString `json:"transactionId"`
}

type statementParams struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

type passwordParams struct {
	Password string `json:"password"`
}

type informationResult struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

type performResult struct {
	ProviderTrnID string            `json:"providerTrnId"`
	Timestamp     string            `json:"timestamp"`
	Fields        map[string]string `json:"fields"`
}

type checkResult struct {
	TransactionState int    `json:"transactionState"`
	Timestamp        string `json:"timestamp"`
	ProviderTrnID    string `json:"providerTrnId"`
}

type cancelResult struct {
	ProviderTrnID    string `json:"providerTrnId"`
	Timestamp        string `json:"timestamp"`
	TransactionState int    `json:"transactionState"`
}

type statementItem struct {
	Amount        int64  `json:"amount"`
	ProviderTrnID string `json:"providerTrnId"`
	TransactionID string `json:"transactionId"`
	Timestamp     string `json:"timestamp"`
}

type statementResult struct {
	Statements []statementItem `json:"statements"`
}

type passwordResult struct {
	Result string `json:"result"`
}

// stateOf reports non-terminal transactions as success: Paynet only sees them in flight.
func stateOf(tx entities.Transaction) int {
	switch tx.Status {
	case entities.TransactionStatusCompleted, entities.TransactionStatusPending, entities.TransactionStatusPrepared:
		return StateSuccess
	case entities.TransactionStatusFailed:
		return StateCancelled
	default:
		return StateNotFound
	}
}

func (p *Processor) getInformation(ctx context.Context, raw json.RawMessage) (any, error) {
	var params informationParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	shortID := params.Fields.shortID()
	if shortID == "" {
		return nil, errMissingParams.err()
	}

	tx, err := p.repo.GetByShortID(ctx, shortID)
	if err != nil {
		return nil, fmt.Errorf("get transaction by short id %s: %w", shortID, err)
	}
	if tx.ID == "" || tx.Status != entities.TransactionStatusPending {
		return nil, errClientNotFound.err()
	}

	if tx.Provider == "" {
		attributed, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{Provider: entities.Ptr(entities.ProviderPaynet)})
		if err != nil {
			p.logger.Warn("[paynet][processor] provider backfill failed", zap.String("transaction_id", tx.ID), zap.Error(err))
		} else {
			tx = attributed
		}
	}

	out := map[string]any{
		"order_id": shortID,
		"plan_id":  tx.PlanID,
		"amount":   webhook.RoundedMajor(tx.Amount),
	}
	if p.userInfo != nil {
		info, err := p.userInfo.GetUserInfo(ctx, tx.UserID)
		if err != nil {
			return nil, fmt.Errorf("user info for %s: %w", tx.UserID, err)
		}
		if info.Name != "" {
			out["name"] = info.Name
		}
		if info.Phone != "" {
			out["phone"] = info.Phone
		}
	}

	return informationResult{Status: "0", Timestamp: p.timestamp(p.lifecycle.NowMillis()), Fields: out}, nil
}

func (p *Processor) performTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params performParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	extID, shortID := params.TransactionID.String(), params.Fields.shortID()
	if extID == "" || params.Amount == nil || shortID == "" {
		return nil, errMissingParams.err()
	}

	// A redelivered perform finds its transaction by external id even if the
	// shortId has since been reused by a newer order.
	existing, err := p.repo.GetByProviderTransactionID(ctx, entities.ProviderPaynet, extID)
	if err != nil {
		return nil, fmt.Errorf("get paynet transaction %s: %w", extID, err)
	}
	if existing.ID != "" {
		return nil, p.stateError(existing)
	}

	tx, err := p.repo.GetByShortID(ctx, shortID)
	if err != nil {
		return nil, fmt.Errorf("get transaction by short id %s: %w", shortID, err)
	}
	if tx.ID == "" {
		return nil, errClientNotFound.err()
	}
	if *params.Amount != tx.Amount {
		return nil, errInvalidAmount.err()
	}
	if tx.Status.IsTerminal() {
		return nil, p.stateError(tx)
	}
	if tx.ProviderTransactionID != nil {
		// held by another provider's flow
		return nil, errTransactionExists.err()
	}

	now := p.lifecycle.NowMillis()
	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:                entities.Ptr(entities.TransactionStatusCompleted),
		Provider:              entities.Ptr(entities.ProviderPaynet),
		ProviderTransactionID: entities.Ptr(extID),
		ProviderCreateTime:    entities.Ptr(now),
		ProviderPerformTime:   entities.Ptr(now),
	})
	if err != nil {
		return nil, err
	}
	return performResult{
		ProviderTrnID: next.ID,
		Timestamp:     p.timestamp(now),
		Fields:        map[string]string{"order_id": shortID},
	}, nil
}

func (p *Processor) stateError(tx entities.Transaction) error {
	if tx.Status == entities.TransactionStatusFailed {
		return errTransactionCanceled.err()
	}
	return errTransactionExists.err()
}

func (p *Processor) checkTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params transactionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.TransactionID == "" {
		return nil, errMissingParams.err()
	}

	tx, err := p.repo.GetByProviderTransactionID(ctx, entities.ProviderPaynet, params.TransactionID.String())
	if err != nil {
		return nil, fmt.Errorf("get paynet transaction %s: %w", params.TransactionID, err)
	}
	if tx.ID == "" {
		return checkResult{TransactionState: StateNotFound, Timestamp: p.timestamp(p.lifecycle.NowMillis())}, nil
	}
	return checkResult{TransactionState: stateOf(tx), Timestamp: p.timestamp(lastEvent(tx)), ProviderTrnID: tx.ID}, nil
}

func (p *Processor) cancelTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params transactionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.TransactionID == "" {
		return nil, errMissingParams.err()
	}

	tx, err := p.repo.GetByProviderTransactionID(ctx, entities.ProviderPaynet, params.TransactionID.String())
	if err != nil {
		return nil, fmt.Errorf("get paynet transaction %s: %w", params.TransactionID, err)
	}
	if tx.ID == "" {
		return nil, errTransactionNotFound.err()
	}
	if tx.Status == entities.TransactionStatusFailed {
		return nil, errTransactionCanceled.err()
	}

	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:             entities.Ptr(entities.TransactionStatusFailed),
		CancelReason:       entities.Ptr(CancelReasonProvider),
		ProviderCancelTime: entities.Ptr(p.lifecycle.NowMillis()),
	})
	if err != nil {
		return nil, err
	}
	return cancelResult{ProviderTrnID: next.ID, Timestamp: p.timestamp(*next.ProviderCancelTime), TransactionState: StateCancelled}, nil
}

func (p *Processor) getStatement(ctx context.Context, raw json.RawMessage) (any, error) {
	var params statementParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.DateFrom == "" || params.DateTo == "" {
		return nil, errInvalidDateFormat.err()
	}
	from, err := p.parseTimestamp(params.DateFrom)
	if err != nil {
		return nil, errInvalidDateFormat.err()
	}
	to, err := p.parseTimestamp(params.DateTo)
	if err != nil {
		return nil, errInvalidDateFormat.err()
	}

	txs, err := p.repo.ListByDateRange(ctx, entities.ProviderPaynet, from, to)
	if err != nil {
		return nil, fmt.Errorf("list statement %s..%s: %w", params.DateFrom, params.DateTo, err)
	}

	items := make([]statementItem, 0, len(txs))
	for _, tx := range txs {
		item := statementItem{
			Amount:        webhook.RoundedMajor(tx.Amount),
			ProviderTrnID: tx.ID,
			Timestamp:     p.timestamp(lastEvent(tx)),
		}
		if tx.ProviderTransactionID != nil {
			item.TransactionID = *tx.ProviderTransactionID
		}
		items = append(items, item)
	}
	return statementResult{Statements: items}, nil
}

func (p *Processor) changePassword(ctx context.Context, raw json.RawMessage) (any, error) {
	var params passwordParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.Password == "" {
		return nil, errMissingParams.err()
	}

	if p.passwords != nil {
		if err := p.passwords.OnPasswordChangeRequested(ctx, params.Password); err != nil {
			return nil, fmt.Errorf("password rotation: %w", err)
		}
	}
	p.logger.Info("[paynet][processor] password change requested")
	return passwordResult{Result: "success"}, nil
}

// lastEvent is the most recent provider time on tx.
func lastEvent(tx entities.Transaction) int64 {
	for _, t := range []*int64{tx.ProviderCancelTime, tx.ProviderPerformTime, tx.ProviderCreateTime} {
		if t != nil {
			return *t
		}
	}
	return tx.UpdatedAt.UnixMilli()
}
