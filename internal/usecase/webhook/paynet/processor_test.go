package paynet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"payhook/internal/adapter/persistence/repository"
	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"
	mock_interfaces "payhook/internal/usecase/interfaces/mocks"
	"payhook/internal/usecase/webhook"

	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo      *repository.TransactionMemoryRepository
	payments  *mock_interfaces.MockIPaymentCallbacks
	userInfo  *mock_interfaces.MockIUserInfoProvider
	passwords *mock_interfaces.MockIPasswordRotator
	proc      *Processor
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:      repository.NewTransactionMemoryRepository(),
		payments:  mock_interfaces.NewMockIPaymentCallbacks(ctrl),
		userInfo:  mock_interfaces.NewMockIUserInfoProvider(ctrl),
		passwords: mock_interfaces.NewMockIPasswordRotator(ctrl),
		now:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	proc, err := NewProcessor(
		Config{Username: "paynet", Password: "s3cret", ServiceID: "77", Location: time.FixedZone("UZT", 5*60*60)},
		f.repo,
		interfaces.Callbacks{Payments: f.payments, UserInfo: f.userInfo, Passwords: f.passwords},
		nil,
		webhook.WithClock(func() time.Time { return f.now }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.proc = proc
	return f
}

func (f *fixture) seed(t *testing.T, tx entities.Transaction) {
	t.Helper()
	if tx.Status == "" {
		tx.Status = entities.TransactionStatusPending
	}
	tx.CreatedAt, tx.UpdatedAt = f.now, f.now
	if _, err := f.repo.Create(context.Background(), tx); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (f *fixture) stored(t *testing.T, id string) entities.Transaction {
	t.Helper()
	tx, _ := f.repo.GetByID(context.Background(), id)
	if tx.ID == "" {
		t.Fatalf("expected transaction %s", id)
	}
	return tx
}

func basic(user, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}

func (f *fixture) call(t *testing.T, method string, params map[string]any) rpcResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 11, "method": method, "params": params})
	resp := f.proc.Handle(context.Background(), webhook.Request{Authorization: basic("paynet", "s3cret"), Body: body})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	return resp.Body.(rpcResponse)
}

func expectCode(t *testing.T, resp rpcResponse, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %+v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("expected error %d, got %d", code, resp.Error.Code)
	}
}

func performParamsFor(extID string, amount int64, shortID string) map[string]any {
	return map[string]any{
		"transactionId": extID, "amount": amount, "serviceId": 77,
		"transactionTime": "2026-03-01 17:00:00", "fields": map[string]any{"order_id": shortID},
	}
}

func TestProcessor_Auth(t *testing.T) {
	f := newFixture(t)

	for _, header := range []string{"", basic("paynet", "wrong"), basic("other", "s3cret"), "Bearer token"} {
		resp := f.proc.Handle(context.Background(), webhook.Request{Authorization: header, Body: []byte(`{`)})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		body := resp.Body.(rpcResponse)
		if body.Error == nil || body.Error.Code != 601 || string(body.ID) != "null" || body.JSONRPC != "2.0" {
			t.Fatalf("unexpected body %+v", body)
		}
	}
}

func TestProcessor_Envelope(t *testing.T) {
	f := newFixture(t)
	send := func(body string) rpcResponse {
		resp := f.proc.Handle(context.Background(), webhook.Request{Authorization: basic("paynet", "s3cret"), Body: []byte(body)})
		return resp.Body.(rpcResponse)
	}

	expectCode(t, send(`{`), -32700)
	expectCode(t, send(`{"jsonrpc":"1.0","id":1,"method":"CheckTransaction","params":{}}`), -32600)
	expectCode(t, send(`{"jsonrpc":"2.0","id":null,"method":"CheckTransaction","params":{}}`), -32600)
	expectCode(t, send(`{"jsonrpc":"2.0","id":1,"method":"","params":{}}`), -32600)
	expectCode(t, send(`{"jsonrpc":"2.0","id":1,"method":"CheckTransaction","params":"x"}`), -32600)

	resp := send(`{"jsonrpc":"2.0","id":"abc","method":"Unknown","params":{}}`)
	expectCode(t, resp, -32601)
	if string(resp.ID) != `"abc"` {
		t.Fatalf("expected string id to be echoed, got %s", resp.ID)
	}

	expectCode(t, f.call(t, MethodCheckTransaction, map[string]any{"serviceId": "78", "transactionId": "1"}), 305)
}

func TestProcessor_GetInformation(t *testing.T) {
	t.Run("pending transaction", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", UserID: "u1", PlanID: "pro", Amount: 5000050, ShortID: entities.Ptr("12345")})
		f.userInfo.EXPECT().GetUserInfo(gomock.Any(), "u1").Return(entities.UserInfo{Name: "Ali", Phone: "998901234567"}, nil)

		resp := f.call(t, MethodGetInformation, map[string]any{"serviceId": 77, "fields": map[string]any{"client_id": "12345"}})
		result, ok := resp.Result.(informationResult)
		if !ok {
			t.Fatalf("expected result, got %+v", resp.Error)
		}
		if result.Status != "0" || result.Timestamp != "2026-03-01 17:00:00" {
			t.Fatalf("unexpected result %+v", result)
		}
		if result.Fields["amount"] != int64(50001) || result.Fields["plan_id"] != "pro" || result.Fields["name"] != "Ali" {
			t.Fatalf("unexpected fields %+v", result.Fields)
		}
		if tx := f.stored(t, "T1"); tx.Provider != entities.ProviderPaynet || tx.Status != entities.TransactionStatusPending {
			t.Fatalf("expected provider backfill, got %+v", tx)
		}
	})

	t.Run("terminal transactions are hidden", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 100, ShortID: entities.Ptr("11111"), Status: entities.TransactionStatusCompleted})
		expectCode(t, f.call(t, MethodGetInformation, map[string]any{"fields": map[string]any{"order_id": "11111"}}), 302)
		expectCode(t, f.call(t, MethodGetInformation, map[string]any{"fields": map[string]any{"order_id": "99999"}}), 302)
	})

	t.Run("missing reference", func(t *testing.T) {
		f := newFixture(t)
		expectCode(t, f.call(t, MethodGetInformation, map[string]any{"fields": map[string]any{}}), 411)
	})
}

func TestProcessor_PerformTransaction(t *testing.T) {
	t.Run("completes once", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 5000000, ShortID: entities.Ptr("12345")})
		f.payments.EXPECT().OnPaymentCompleted(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		resp := f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 5000000, "12345"))
		result, ok := resp.Result.(performResult)
		if !ok {
			t.Fatalf("expected result, got %+v", resp.Error)
		}
		if result.ProviderTrnID != "T1" || result.Timestamp != "2026-03-01 17:00:00" || result.Fields["order_id"] != "12345" {
			t.Fatalf("unexpected result %+v", result)
		}

		tx := f.stored(t, "T1")
		if tx.Status != entities.TransactionStatusCompleted || tx.Provider != entities.ProviderPaynet || !tx.HasProviderTransactionID("pn-1") {
			t.Fatalf("unexpected stored transaction %+v", tx)
		}

		expectCode(t, f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 5000000, "12345")), 201)
	})

	t.Run("amount must match exactly", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 5000000, ShortID: entities.Ptr("12345")})
		expectCode(t, f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 5000001, "12345")), 413)
	})

	t.Run("failing callback keeps status", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 100, ShortID: entities.Ptr("12345")})
		f.payments.EXPECT().OnPaymentCompleted(gomock.Any(), gomock.Any()).Return(errors.New("grant failed"))

		expectCode(t, f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 100, "12345")), -32400)
		if tx := f.stored(t, "T1"); tx.Status != entities.TransactionStatusPending || tx.ProviderTransactionID != nil {
			t.Fatalf("expected untouched transaction, got %+v", tx)
		}
	})

	t.Run("cancelled transaction", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 100, ShortID: entities.Ptr("12345"), Status: entities.TransactionStatusFailed})
		expectCode(t, f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 100, "12345")), 202)
	})

	t.Run("missing params", func(t *testing.T) {
		f := newFixture(t)
		expectCode(t, f.call(t, MethodPerformTransaction, map[string]any{"transactionId": "pn-1", "fields": map[string]any{"order_id": "1"}}), 411)
	})
}

func TestProcessor_CheckTransaction(t *testing.T) {
	f := newFixture(t)

	resp := f.call(t, MethodCheckTransaction, map[string]any{"transactionId": "unknown"})
	if resp.Error != nil {
		t.Fatalf("expected success envelope, got %+v", resp.Error)
	}
	if result := resp.Result.(checkResult); result.TransactionState != StateNotFound {
		t.Fatalf("expected state 3, got %d", result.TransactionState)
	}

	f.seed(t, entities.Transaction{ID: "T1", Amount: 100, ShortID: entities.Ptr("12345")})
	f.payments.EXPECT().OnPaymentCompleted(gomock.Any(), gomock.Any()).Return(nil)
	f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 100, "12345"))

	result := f.call(t, MethodCheckTransaction, map[string]any{"transactionId": "pn-1"}).Result.(checkResult)
	if result.TransactionState != StateSuccess || result.ProviderTrnID != "T1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestProcessor_CancelTransaction(t *testing.T) {
	t.Run("refund after completion", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, entities.Transaction{ID: "T1", Amount: 100, Status: entities.TransactionStatusCompleted, Provider: entities.ProviderPaynet,
			ProviderTransactionID: entities.Ptr("pn-1"), ProviderPerformTime: entities.Ptr(int64(1))})
		f.payments.EXPECT().OnPaymentCancelled(gomock.Any(), gomock.Any()).Return(nil).Times(1)

		resp := f.call(t, MethodCancelTransaction, map[string]any{"transactionId": "pn-1"})
		result, ok := resp.Result.(cancelResult)
		if !ok || result.TransactionState != StateCancelled || result.ProviderTrnID != "T1" {
			t.Fatalf("unexpected response %+v / %+v", resp.Result, resp.Error)
		}
		expectCode(t, f.call(t, MethodCancelTransaction, map[string]any{"transactionId": "pn-1"}), 202)

		check := f.call(t, MethodCheckTransaction, map[string]any{"transactionId": "pn-1"}).Result.(checkResult)
		if check.TransactionState != StateCancelled {
			t.Fatalf("expected cancelled state, got %d", check.TransactionState)
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		f := newFixture(t)
		expectCode(t, f.call(t, MethodCancelTransaction, map[string]any{"transactionId": "nope"}), 203)
	})
}

func TestProcessor_GetStatement(t *testing.T) {
	f := newFixture(t)
	f.seed(t, entities.Transaction{ID: "T1", Amount: 5000000, ShortID: entities.Ptr("12345")})
	f.payments.EXPECT().OnPaymentCompleted(gomock.Any(), gomock.Any()).Return(nil)
	f.call(t, MethodPerformTransaction, performParamsFor("pn-1", 5000000, "12345"))

	expectCode(t, f.call(t, MethodGetStatement, map[string]any{"dateFrom": "2026-03-01 00:00:00"}), 414)
	expectCode(t, f.call(t, MethodGetStatement, map[string]any{"dateFrom": "01.03.2026", "dateTo": "2026-03-02 00:00:00"}), 414)

	resp := f.call(t, MethodGetStatement, map[string]any{"dateFrom": "2026-03-01 00:00:00", "dateTo": "2026-03-01 23:59:59"})
	result, ok := resp.Result.(statementResult)
	if !ok || len(result.Statements) != 1 {
		t.Fatalf("expected one statement, got %+v / %+v", resp.Result, resp.Error)
	}
	item := result.Statements[0]
	if item.Amount != 50000 || item.TransactionID != "pn-1" || item.ProviderTrnID != "T1" || item.Timestamp != "2026-03-01 17:00:00" {
		t.Fatalf("unexpected item %+v", item)
	}

	empty := f.call(t, MethodGetStatement, map[string]any{"dateFrom": "2026-03-02 00:00:00", "dateTo": "2026-03-03 00:00:00"}).Result.(statementResult)
	if len(empty.Statements) != 0 {
		t.Fatalf("expected empty statement, got %d", len(empty.Statements))
	}
}

func TestProcessor_ChangePassword(t *testing.T) {
	f := newFixture(t)
	expectCode(t, f.call(t, MethodChangePassword, map[string]any{}), 411)

	f.passwords.EXPECT().OnPasswordChangeRequested(gomock.Any(), "n3w").Return(nil)
	resp := f.call(t, MethodChangePassword, map[string]any{"password": "n3w"})
	if result, ok := resp.Result.(passwordResult); !ok || result.Result != "success" {
		t.Fatalf("unexpected response %+v / %+v", resp.Result, resp.Error)
	}
}
