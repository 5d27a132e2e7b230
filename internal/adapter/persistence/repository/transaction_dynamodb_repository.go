package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultTransactionsTableName = "payment_transactions"
	transactionsShortIDIndex     = "short_id-index"
	transactionsProviderTxIndex  = "provider_tx-index"
	transactionsProviderIndex    = "provider-create_time-index"

	pendingPointerPrefix = "pending#"
	shortPointerPrefix   = "short#"
)

var ErrProviderRequired = errors.New("provider is required when setting a provider transaction id")

// dynamoAPI is the slice of *dynamodb.Client the repository uses.
type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type transactionItem struct {
	ID                    string  `dynamodbav:"id"`
	UserID                string  `dynamodbav:"user_id"`
	PlanID                string  `dynamodbav:"plan_id"`
	Provider              string  `dynamodbav:"provider,omitempty"`
	Amount                int64   `dynamodbav:"amount"`
	Status                string  `dynamodbav:"status"`
	ProviderTransactionID *string `dynamodbav:"provider_transaction_id,omitempty"`
	ProviderTxKey         string  `dynamodbav:"provider_tx_key,omitempty"`
	ProviderCreateTime    *int64  `dynamodbav:"provider_create_time,omitempty"`
	ProviderPerformTime   *int64  `dynamodbav:"provider_perform_time,omitempty"`
	ProviderCancelTime    *int64  `dynamodbav:"provider_cancel_time,omitempty"`
	CancelReason          *int    `dynamodbav:"cancel_reason,omitempty"`
	ShortID               string  `dynamodbav:"short_id,omitempty"`
	CreatedAt             string  `dynamodbav:"created_at"`
	UpdatedAt             string  `dynamodbav:"updated_at"`
}

// pointerItem names the transaction that last took a (user, plan) pair or a
// shortId. It is written in the same transaction as the PENDING row and read
// with a consistent read, so lookups right after a creation do not depend on
// GSI propagation. A pointer whose target moved on is ignored.
type pointerItem struct {
	ID            string `dynamodbav:"id"`
	TransactionID string `dynamodbav:"transaction_id"`
}

// TransactionDynamoRepository persists transactions in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: short_id-index (PK: short_id)
//   - GSI: provider_tx-index (PK: provider_tx_key = provider#external id)
//   - GSI: provider-create_time-index (PK: provider, SK: provider_create_time)
//   - pointer items with id pending#<user_id>#<plan_id> or short#<short_id> (no GSI attributes)
type TransactionDynamoRepository struct {
	ddb       dynamoAPI
	tableName string
}

var _ interfaces.ITransactionRepository = (*TransactionDynamoRepository)(nil)

func NewTransactionDynamoRepository(ddb dynamoAPI, tableName string) *TransactionDynamoRepository {
	if tableName == "" {
		tableName = defaultTransactionsTableName
	}
	return &TransactionDynamoRepository{ddb: ddb, tableName: tableName}
}

func (r *TransactionDynamoRepository) Create(ctx context.Context, tx entities.Transaction) (entities.Transaction, error) {
	av, err := attributevalue.MarshalMap(toTransactionItem(tx))
	if err != nil {
		return entities.Transaction{}, err
	}

	if tx.Status == entities.TransactionStatusPending {
		if err := r.createPending(ctx, tx, av); err != nil {
			return entities.Transaction{}, err
		}
		return tx, nil
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Transaction{}, ErrTransactionAlreadyExists
		}
		return entities.Transaction{}, err
	}
	return tx, nil
}

// createPending writes the row and its pointers atomically.
func (r *TransactionDynamoRepository) createPending(ctx context.Context, tx entities.Transaction, av map[string]types.AttributeValue) error {
	writes := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:                aws.String(r.tableName),
			Item:                     av,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		}},
	}
	keys := []string{pendingPointerKey(tx.UserID, tx.PlanID)}
	if tx.ShortID != nil {
		keys = append(keys, shortPointerPrefix+*tx.ShortID)
	}
	for _, key := range keys {
		pointer, err := attributevalue.MarshalMap(pointerItem{ID: key, TransactionID: tx.ID})
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{Put: &types.Put{
			TableName: aws.String(r.tableName),
			Item:      pointer,
		}})
	}

	_, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) > 0 &&
			aws.ToString(tce.CancellationReasons[0].Code) == "ConditionalCheckFailed" {
			return ErrTransactionAlreadyExists
		}
		return fmt.Errorf("create pending transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (r *TransactionDynamoRepository) GetByID(ctx context.Context, id string) (entities.Transaction, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	if len(out.Item) == 0 {
		return entities.Transaction{}, nil
	}

	var it transactionItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Transaction{}, err
	}
	return fromTransactionItem(it), nil
}

func (r *TransactionDynamoRepository) GetByShortID(ctx context.Context, shortID string) (entities.Transaction, error) {
	held, err := r.followPointer(ctx, shortPointerPrefix+shortID)
	if err != nil {
		return entities.Transaction{}, err
	}
	if held.ID != "" && !held.Status.IsTerminal() && held.ShortID != nil && *held.ShortID == shortID {
		return held, nil
	}

	items, err := r.queryIndex(ctx, transactionsShortIDIndex, "short_id", shortID)
	if err != nil {
		return entities.Transaction{}, err
	}
	return pickByShortID(items), nil
}

func (r *TransactionDynamoRepository) GetByProviderTransactionID(ctx context.Context, provider entities.Provider, extID string) (entities.Transaction, error) {
	items, err := r.queryIndex(ctx, transactionsProviderTxIndex, "provider_tx_key", providerTxKey(string(provider), extID))
	if err != nil {
		return entities.Transaction{}, err
	}
	if len(items) == 0 {
		return entities.Transaction{}, nil
	}
	// GSIs are eventually consistent; reread the item itself.
	tx, err := r.GetByID(ctx, items[0].ID)
	if err != nil || tx.Provider != provider || !tx.HasProviderTransactionID(extID) {
		return entities.Transaction{}, err
	}
	return tx, nil
}

// FindPending follows the pending pointer with consistent reads; GSIs may lag
// behind a creation that just released the creation lock.
func (r *TransactionDynamoRepository) FindPending(ctx context.Context, userID, planID string) (entities.Transaction, error) {
	tx, err := r.followPointer(ctx, pendingPointerKey(userID, planID))
	if err != nil {
		return entities.Transaction{}, err
	}
	if tx.Status != entities.TransactionStatusPending || tx.UserID != userID || tx.PlanID != planID {
		return entities.Transaction{}, nil
	}
	return tx, nil
}

// followPointer resolves a pointer item to its transaction; a zero
// Transaction means no pointer or a dangling one.
func (r *TransactionDynamoRepository) followPointer(ctx context.Context, key string) (entities.Transaction, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	if len(out.Item) == 0 {
		return entities.Transaction{}, nil
	}

	var pointer pointerItem
	if err := attributevalue.UnmarshalMap(out.Item, &pointer); err != nil {
		return entities.Transaction{}, err
	}
	return r.GetByID(ctx, pointer.TransactionID)
}

func (r *TransactionDynamoRepository) ListByDateRange(ctx context.Context, provider entities.Provider, fromMs, toMs int64) ([]entities.Transaction, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(transactionsProviderIndex),
		KeyConditionExpression: aws.String("#provider = :provider AND #ct BETWEEN :from AND :to"),
		ExpressionAttributeNames: map[string]string{
			"#provider": "provider",
			"#ct":       "provider_create_time",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":provider": &types.AttributeValueMemberS{Value: string(provider)},
			":from":     &types.AttributeValueMemberN{Value: strconv.FormatInt(fromMs, 10)},
			":to":       &types.AttributeValueMemberN{Value: strconv.FormatInt(toMs, 10)},
		},
	})

	return r.queryAll(ctx, p)
}

// Update applies patch with a single conditional UpdateItem. When the
// precondition fails the old image tells a missing item from a status conflict.
func (r *TransactionDynamoRepository) Update(ctx context.Context, id string, patch entities.TransactionPatch) error {
	if patch.ProviderTransactionID != nil && patch.Provider == nil {
		return ErrProviderRequired
	}

	updateExpr, values, names := buildTransactionUpdate(patch)
	if updateExpr == "" {
		return nil
	}

	condition := "attribute_exists(#id)"
	names["#id"] = "id"
	if patch.ExpectedStatus != nil {
		condition += " AND #status = :expected_status"
		names["#status"] = "status"
		values[":expected_status"] = &types.AttributeValueMemberS{Value: string(*patch.ExpectedStatus)}
	}

	_, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:                 aws.String(condition),
		UpdateExpression:                    aws.String(updateExpr),
		ExpressionAttributeValues:           values,
		ExpressionAttributeNames:            names,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			if len(cfe.Item) == 0 {
				return interfaces.ErrTransactionNotFound
			}
			return interfaces.ErrTransactionConflict
		}
		return fmt.Errorf("update transaction %s: %w", id, err)
	}
	return nil
}

func buildTransactionUpdate(patch entities.TransactionPatch) (string, map[string]types.AttributeValue, map[string]string) {
	values := map[string]types.AttributeValue{}
	names := map[string]string{}
	expr := ""

	set := func(attr string, v types.AttributeValue) {
		if expr == "" {
			expr = "SET "
		} else {
			expr += ", "
		}
		expr += "#" + attr + " = :" + attr
		names["#"+attr] = attr
		values[":"+attr] = v
	}
	str := func(s string) types.AttributeValue { return &types.AttributeValueMemberS{Value: s} }
	num := func(n int64) types.AttributeValue { return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)} }

	if patch.Status != nil {
		set("status", str(string(*patch.Status)))
	}
	if patch.Provider != nil {
		set("provider", str(string(*patch.Provider)))
	}
	if patch.ProviderTransactionID != nil {
		set("provider_transaction_id", str(*patch.ProviderTransactionID))
		set("provider_tx_key", str(providerTxKey(string(*patch.Provider), *patch.ProviderTransactionID)))
	}
	if patch.ProviderCreateTime != nil {
		set("provider_create_time", num(*patch.ProviderCreateTime))
	}
	if patch.ProviderPerformTime != nil {
		set("provider_perform_time", num(*patch.ProviderPerformTime))
	}
	if patch.ProviderCancelTime != nil {
		set("provider_cancel_time", num(*patch.ProviderCancelTime))
	}
	if patch.CancelReason != nil {
		set("cancel_reason", num(int64(*patch.CancelReason)))
	}
	if patch.UpdatedAt != nil {
		set("updated_at", str(patch.UpdatedAt.UTC().Format(time.RFC3339Nano)))
	}
	return expr, values, names
}

func (r *TransactionDynamoRepository) queryIndex(ctx context.Context, index, attr, value string) ([]entities.Transaction, error) {
	return r.queryAll(ctx, dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	}))
}

// queryAll drains every page of p.
func (r *TransactionDynamoRepository) queryAll(ctx context.Context, p *dynamodb.QueryPaginator) ([]entities.Transaction, error) {
	items := make([]entities.Transaction, 0)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		decoded, err := decodeTransactionItems(page.Items)
		if err != nil {
			return nil, err
		}
		items = append(items, decoded...)
	}
	return items, nil
}

func decodeTransactionItems(raw []map[string]types.AttributeValue) ([]entities.Transaction, error) {
	items := make([]entities.Transaction, 0, len(raw))
	for _, av := range raw {
		var it transactionItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return nil, err
		}
		items = append(items, fromTransactionItem(it))
	}
	return items, nil
}

func providerTxKey(provider, extID string) string {
	return provider + "#" + extID
}

func pendingPointerKey(userID, planID string) string {
	return pendingPointerPrefix + userID + "#" + planID
}

func toTransactionItem(tx entities.Transaction) transactionItem {
	it := transactionItem{
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
		CreatedAt:             tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:             tx.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if tx.ProviderTransactionID != nil {
		it.ProviderTxKey = providerTxKey(string(tx.Provider), *tx.ProviderTransactionID)
	}
	if tx.ShortID != nil {
		it.ShortID = *tx.ShortID
	}
	return it
}

func fromTransactionItem(it transactionItem) entities.Transaction {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)
	tx := entities.Transaction{
		ID:                    it.ID,
		UserID:                it.UserID,
		PlanID:                it.PlanID,
		Provider:              entities.Provider(it.Provider),
		Amount:                it.Amount,
		Status:                entities.TransactionStatus(it.Status),
		ProviderTransactionID: it.ProviderTransactionID,
		ProviderCreateTime:    it.ProviderCreateTime,
		ProviderPerformTime:   it.ProviderPerformTime,
		ProviderCancelTime:    it.ProviderCancelTime,
		CancelReason:          it.CancelReason,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
	if it.ShortID != "" {
		tx.ShortID = entities.Ptr(it.ShortID)
	}
	return tx
}
