package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	items           map[string]map[string]types.AttributeValue
	queryOut        []map[string]types.AttributeValue
	queryPages      [][]map[string]types.AttributeValue
	queryCalls      int
	lastQuery       *dynamodb.QueryInput
	update          *dynamodb.UpdateItemInput
	updateErr       error
	putErr          error
	inconsistentGet int
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if !aws.ToBool(in.ConsistentRead) {
		f.inconsistentGet++
	}
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.update = in
	return &dynamodb.UpdateItemOutput{}, f.updateErr
}

// Query serves queryPages when set, chaining them through a "page" cursor.
func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = in
	f.queryCalls++
	if f.queryPages == nil {
		return &dynamodb.QueryOutput{Items: f.queryOut}, nil
	}

	page := 0
	if cursor, ok := in.ExclusiveStartKey["page"].(*types.AttributeValueMemberN); ok {
		page, _ = strconv.Atoi(cursor.Value)
	}
	out := &dynamodb.QueryOutput{Items: f.queryPages[page]}
	if page+1 < len(f.queryPages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}

func (f *fakeDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	reasons := make([]types.CancellationReason, len(in.TransactItems))
	failed := false
	for i, item := range in.TransactItems {
		reasons[i].Code = aws.String("None")
		id := item.Put.Item["id"].(*types.AttributeValueMemberS).Value
		if item.Put.ConditionExpression != nil && f.items[id] != nil {
			reasons[i].Code = aws.String("ConditionalCheckFailed")
			failed = true
		}
	}
	if failed {
		return nil, &types.TransactionCanceledException{CancellationReasons: reasons}
	}
	for _, item := range in.TransactItems {
		f.items[item.Put.Item["id"].(*types.AttributeValueMemberS).Value] = item.Put.Item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func sampleTransaction() entities.Transaction {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return entities.Transaction{
		ID: "T1", UserID: "u1", PlanID: "pro", Provider: entities.ProviderPayme, Amount: 5000000,
		Status: entities.TransactionStatusPrepared, ProviderTransactionID: entities.Ptr("ext-1"),
		ProviderCreateTime: entities.Ptr(int64(1700000000000)), ShortID: entities.Ptr("12345"),
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestTransactionDynamoRepository_CreateAndGet(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewTransactionDynamoRepository(ddb, "")

	_, err := repo.Create(context.Background(), sampleTransaction())
	require.NoError(t, err)

	var it transactionItem
	require.NoError(t, attributevalue.UnmarshalMap(ddb.items["T1"], &it))
	require.Equal(t, "payme#ext-1", it.ProviderTxKey)
	require.Nil(t, ddb.items[pendingPointerKey("u1", "pro")], "only PENDING rows get a pointer")

	got, err := repo.GetByID(context.Background(), "T1")
	require.NoError(t, err)
	require.Equal(t, sampleTransaction(), got)

	missing, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, missing.ID)

	ddb.putErr = &types.ConditionalCheckFailedException{}
	_, err = repo.Create(context.Background(), sampleTransaction())
	require.ErrorIs(t, err, ErrTransactionAlreadyExists)
}

func TestTransactionDynamoRepository_Update(t *testing.T) {
	t.Run("conditional expression", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewTransactionDynamoRepository(ddb, "txs")
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		err := repo.Update(context.Background(), "T1", entities.TransactionPatch{
			ExpectedStatus:        entities.Ptr(entities.TransactionStatusPending),
			Status:                entities.Ptr(entities.TransactionStatusPrepared),
			Provider:              entities.Ptr(entities.ProviderClick),
			ProviderTransactionID: entities.Ptr("9001"),
			UpdatedAt:             &now,
		})
		require.NoError(t, err)

		in := ddb.update
		require.Equal(t, "attribute_exists(#id) AND #status = :expected_status", *in.ConditionExpression)
		require.True(t, strings.HasPrefix(*in.UpdateExpression, "SET #status = :status"))
		require.Contains(t, *in.UpdateExpression, "#provider_tx_key = :provider_tx_key")
		require.Equal(t, &types.AttributeValueMemberS{Value: "click#9001"}, in.ExpressionAttributeValues[":provider_tx_key"])
		require.Equal(t, &types.AttributeValueMemberS{Value: "PENDING"}, in.ExpressionAttributeValues[":expected_status"])
	})

	t.Run("failed precondition", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewTransactionDynamoRepository(ddb, "txs")
		patch := entities.TransactionPatch{Status: entities.Ptr(entities.TransactionStatusFailed)}

		ddb.updateErr = &types.ConditionalCheckFailedException{}
		require.ErrorIs(t, repo.Update(context.Background(), "T1", patch), interfaces.ErrTransactionNotFound)

		ddb.updateErr = &types.ConditionalCheckFailedException{Item: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "T1"},
		}}
		require.ErrorIs(t, repo.Update(context.Background(), "T1", patch), interfaces.ErrTransactionConflict)

		ddb.updateErr = errors.New("throttled")
		require.ErrorIs(t, repo.Update(context.Background(), "T1", patch), ddb.updateErr)
	})

	t.Run("external id needs a provider", func(t *testing.T) {
		repo := NewTransactionDynamoRepository(newFakeDynamo(), "txs")
		err := repo.Update(context.Background(), "T1", entities.TransactionPatch{ProviderTransactionID: entities.Ptr("x")})
		require.ErrorIs(t, err, ErrProviderRequired)
	})
}

func TestTransactionDynamoRepository_Lookups(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewTransactionDynamoRepository(ddb, "txs")
	_, err := repo.Create(context.Background(), sampleTransaction())
	require.NoError(t, err)

	ddb.queryOut = []map[string]types.AttributeValue{ddb.items["T1"]}

	got, err := repo.GetByProviderTransactionID(context.Background(), entities.ProviderPayme, "ext-1")
	require.NoError(t, err)
	require.Equal(t, "T1", got.ID)
	require.Equal(t, transactionsProviderTxIndex, *ddb.lastQuery.IndexName)

	other, err := repo.GetByProviderTransactionID(context.Background(), entities.ProviderPayme, "ext-2")
	require.NoError(t, err)
	require.Empty(t, other.ID)

	byShort, err := repo.GetByShortID(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, "T1", byShort.ID)

	pending, err := repo.FindPending(context.Background(), "u1", "pro")
	require.NoError(t, err)
	require.Empty(t, pending.ID, "PREPARED is not pending")

	listed, err := repo.ListByDateRange(context.Background(), entities.ProviderPayme, 0, 1800000000000)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, transactionsProviderIndex, *ddb.lastQuery.IndexName)
}

func pendingTransaction(id string) entities.Transaction {
	tx := sampleTransaction()
	tx.ID = id
	tx.Status = entities.TransactionStatusPending
	tx.ProviderTransactionID = nil
	tx.ProviderCreateTime = nil
	return tx
}

func TestTransactionDynamoRepository_FindPending(t *testing.T) {
	t.Run("visible before the index catches up", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewTransactionDynamoRepository(ddb, "txs")

		_, err := repo.Create(context.Background(), pendingTransaction("P1"))
		require.NoError(t, err)

		got, err := repo.FindPending(context.Background(), "u1", "pro")
		require.NoError(t, err)
		require.Equal(t, "P1", got.ID)
		require.Zero(t, ddb.queryCalls, "pending lookup must not read a GSI")
		require.Zero(t, ddb.inconsistentGet)
	})

	t.Run("pointer to a row that moved on", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewTransactionDynamoRepository(ddb, "txs")

		_, err := repo.Create(context.Background(), pendingTransaction("P1"))
		require.NoError(t, err)
		prepared := pendingTransaction("P1")
		prepared.Status = entities.TransactionStatusPrepared
		row, err := attributevalue.MarshalMap(toTransactionItem(prepared))
		require.NoError(t, err)
		ddb.items["P1"] = row

		got, err := repo.FindPending(context.Background(), "u1", "pro")
		require.NoError(t, err)
		require.Empty(t, got.ID)

		other, err := repo.FindPending(context.Background(), "u2", "pro")
		require.NoError(t, err)
		require.Empty(t, other.ID)
	})

	t.Run("duplicate id", func(t *testing.T) {
		ddb := newFakeDynamo()
		repo := NewTransactionDynamoRepository(ddb, "txs")

		_, err := repo.Create(context.Background(), pendingTransaction("P1"))
		require.NoError(t, err)
		_, err = repo.Create(context.Background(), pendingTransaction("P1"))
		require.ErrorIs(t, err, ErrTransactionAlreadyExists)
	})
}

func TestTransactionDynamoRepository_ShortIDVisibleBeforeIndex(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewTransactionDynamoRepository(ddb, "txs")

	_, err := repo.Create(context.Background(), pendingTransaction("P1"))
	require.NoError(t, err)

	held, err := repo.GetByShortID(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, "P1", held.ID)
	require.Zero(t, ddb.queryCalls)

	free, err := repo.GetByShortID(context.Background(), "54321")
	require.NoError(t, err)
	require.Empty(t, free.ID)
}

func TestTransactionDynamoRepository_IndexLookupsReadEveryPage(t *testing.T) {
	ddb := newFakeDynamo()
	repo := NewTransactionDynamoRepository(ddb, "txs")

	stale := sampleTransaction()
	stale.ID = "OLD"
	stale.Status = entities.TransactionStatusFailed
	oldRow, err := attributevalue.MarshalMap(toTransactionItem(stale))
	require.NoError(t, err)
	live := sampleTransaction()
	live.ShortID = stale.ShortID
	liveRow, err := attributevalue.MarshalMap(toTransactionItem(live))
	require.NoError(t, err)

	ddb.items["OLD"] = oldRow
	ddb.items["T1"] = liveRow
	ddb.queryPages = [][]map[string]types.AttributeValue{{oldRow}, {}, {liveRow}}

	got, err := repo.GetByShortID(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, "T1", got.ID, "the non-terminal holder sits on the last page")
	require.Equal(t, 3, ddb.queryCalls)
}
