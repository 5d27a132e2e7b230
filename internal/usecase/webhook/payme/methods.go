package payme

import (
	"context"
	"encoding/json"
	"fmt"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/webhook"
)

type account struct {
	OrderID webhook.FlexString `json:"order_id"`
}

type checkPerformParams struct {
	Amount  int64   `json:"amount"`
	Account account `json:"account"`
}

type createParams struct {
	ID      string  `json:"id"`
	Time    int64   `json:"time"`
	Amount  int64   `json:"amount"`
	Account account `json:"account"`
}

type transactionParams struct {
	ID string `json:"id"`
}

type cancelParams struct {
	ID     string `json:"id"`
	Reason int    `json:"reason"`
}

type statementParams struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

type checkPerformResult struct {
	Allow  bool            `json:"allow"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

type createResult struct {
	CreateTime  int64  `json:"create_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
}

type performResult struct {
	Transaction string `json:"transaction"`
	PerformTime int64  `json:"perform_time"`
	State       int    `json:"state"`
}

type cancelResult struct {
	Transaction string `json:"transaction"`
	CancelTime  int64  `json:"cancel_time"`
	State       int    `json:"state"`
}

type checkResult struct {
	CreateTime  int64  `json:"create_time"`
	PerformTime int64  `json:"perform_time"`
	CancelTime  int64  `json:"cancel_time"`
	Transaction string `json:"transaction"`
	State       int    `json:"state"`
	Reason      *int   `json:"reason"`
}

type statementItem struct {
	ID          string            `json:"id"`
	Time        int64             `json:"time"`
	Amount      int64             `json:"amount"`
	Account     map[string]string `json:"account"`
	CreateTime  int64             `json:"create_time"`
	PerformTime int64             `json:"perform_time"`
	CancelTime  int64             `json:"cancel_time"`
	Transaction string            `json:"transaction"`
	State       int               `json:"state"`
	Reason      *int              `json:"reason"`
}

type statementResult struct {
	Transactions []statementItem `json:"transactions"`
}

func (p *Processor) checkPerformTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params checkPerformParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	tx, err := p.order(ctx, params.Account.OrderID)
	if err != nil {
		return nil, err
	}
	if tx.Amount != params.Amount {
		return nil, errInvalidAmount.err()
	}
	if tx.Status == entities.TransactionStatusFailed {
		return nil, errCannotPerform.err()
	}

	result := checkPerformResult{Allow: true}
	if p.fiscal != nil {
		detail, err := p.fiscal.GetFiscalData(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("fiscal data for %s: %w", tx.ID, err)
		}
		result.Detail = detail
	}
	return result, nil
}

func (p *Processor) createTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params createParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, errInvalidRequest.err()
	}

	tx, err := p.order(ctx, params.Account.OrderID)
	if err != nil {
		return nil, err
	}
	if tx.Amount != params.Amount {
		return nil, errInvalidAmount.err()
	}

	if tx.Provider == entities.ProviderPayme && tx.HasProviderTransactionID(params.ID) {
		return createResult{CreateTime: millis(tx.ProviderCreateTime), Transaction: tx.ID, State: stateOf(tx)}, nil
	}
	if tx.Status.IsTerminal() {
		return nil, errCannotPerform.err()
	}
	if tx.ProviderTransactionID != nil && !p.replaceable(tx) {
		return nil, errOrderAlreadyPaid.err()
	}

	createTime := params.Time
	if createTime == 0 {
		createTime = p.lifecycle.NowMillis()
	}
	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:                entities.Ptr(entities.TransactionStatusPrepared),
		Provider:              entities.Ptr(entities.ProviderPayme),
		ProviderTransactionID: entities.Ptr(params.ID),
		ProviderCreateTime:    entities.Ptr(createTime),
	})
	if err != nil {
		return nil, err
	}
	return createResult{CreateTime: millis(next.ProviderCreateTime), Transaction: next.ID, State: stateOf(next)}, nil
}

// replaceable reports whether the external id attached to tx has expired:
// a preparation by any provider older than PrepareTTLMillis may be taken over.
func (p *Processor) replaceable(tx entities.Transaction) bool {
	if tx.Status != entities.TransactionStatusPrepared || tx.ProviderCreateTime == nil {
		return false
	}
	return p.lifecycle.NowMillis()-*tx.ProviderCreateTime > PrepareTTLMillis
}

func (p *Processor) performTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params transactionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	tx, err := p.transaction(ctx, params.ID)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case entities.TransactionStatusCompleted:
		return performResult{Transaction: tx.ID, PerformTime: millis(tx.ProviderPerformTime), State: stateOf(tx)}, nil
	case entities.TransactionStatusPrepared:
	default:
		return nil, errCannotPerform.err()
	}

	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:              entities.Ptr(entities.TransactionStatusCompleted),
		ProviderPerformTime: entities.Ptr(p.lifecycle.NowMillis()),
	})
	if err != nil {
		return nil, err
	}
	return performResult{Transaction: next.ID, PerformTime: millis(next.ProviderPerformTime), State: stateOf(next)}, nil
}

func (p *Processor) cancelTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params cancelParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	tx, err := p.transaction(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if tx.Status == entities.TransactionStatusFailed {
		return cancelResult{Transaction: tx.ID, CancelTime: millis(tx.ProviderCancelTime), State: stateOf(tx)}, nil
	}
	if params.Reason == 0 {
		params.Reason = ReasonExecutionError
	}

	next, err := p.lifecycle.Transition(ctx, tx, entities.TransactionPatch{
		Status:             entities.Ptr(entities.TransactionStatusFailed),
		CancelReason:       entities.Ptr(params.Reason),
		ProviderCancelTime: entities.Ptr(p.lifecycle.NowMillis()),
	})
	if err != nil {
		return nil, err
	}
	return cancelResult{Transaction: next.ID, CancelTime: millis(next.ProviderCancelTime), State: stateOf(next)}, nil
}

func (p *Processor) checkTransaction(ctx context.Context, raw json.RawMessage) (any, error) {
	var params transactionParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	tx, err := p.transaction(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	return checkResult{
		CreateTime:  millis(tx.ProviderCreateTime),
		PerformTime: millis(tx.ProviderPerformTime),
		CancelTime:  millis(tx.ProviderCancelTime),
		Transaction: tx.ID,
		State:       stateOf(tx),
		Reason:      reasonOf(tx),
	}, nil
}

func (p *Processor) getStatement(ctx context.Context, raw json.RawMessage) (any, error) {
	var params statementParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	txs, err := p.repo.ListByDateRange(ctx, entities.ProviderPayme, params.From, params.To)
	if err != nil {
		return nil, fmt.Errorf("list statement %d..%d: %w", params.From, params.To, err)
	}

	items := make([]statementItem, 0, len(txs))
	for _, tx := range txs {
		var extID string
		if tx.ProviderTransactionID != nil {
			extID = *tx.ProviderTransactionID
		}
		items = append(items, statementItem{
			ID:          extID,
			Time:        millis(tx.ProviderCreateTime),
			Amount:      tx.Amount,
			Account:     map[string]string{"order_id": tx.ID},
			CreateTime:  millis(tx.ProviderCreateTime),
			PerformTime: millis(tx.ProviderPerformTime),
			CancelTime:  millis(tx.ProviderCancelTime),
			Transaction: tx.ID,
			State:       stateOf(tx),
			Reason:      reasonOf(tx),
		})
	}
	return statementResult{Transactions: items}, nil
}

// order resolves account.order_id, which carries the internal transaction id.
func (p *Processor) order(ctx context.Context, orderID webhook.FlexString) (entities.Transaction, error) {
	if orderID == "" {
		return entities.Transaction{}, errOrderNotFound.err()
	}
	tx, err := p.repo.GetByID(ctx, orderID.String())
	if err != nil {
		return tx, fmt.Errorf("get transaction %s: %w", orderID, err)
	}
	if tx.ID == "" {
		return tx, errOrderNotFound.err()
	}
	return tx, nil
}

func (p *Processor) transaction(ctx context.Context, extID string) (entities.Transaction, error) {
	if extID == "" {
		return entities.Transaction{}, errTransactionNotFound.err()
	}
	tx, err := p.repo.GetByProviderTransactionID(ctx, entities.ProviderPayme, extID)
	if err != nil {
		return tx, fmt.Errorf("get payme transaction %s: %w", extID, err)
	}
	if tx.ID == "" {
		return tx, errTransactionNotFound.err()
	}
	return tx, nil
}
