package payments

import (
	"context"
	"testing"

	"payhook/internal/config"
	"payhook/internal/domain/entities"

	"github.com/stretchr/testify/require"
)

func TestNewFiscalReceiptBuilder_MissingCode(t *testing.T) {
	_, err := NewFiscalReceiptBuilder(config.FiscalConfig{})
	require.ErrorIs(t, err, ErrMissingFiscalCode)
}

func TestFiscalReceiptBuilder_GetFiscalData(t *testing.T) {
	builder, err := NewFiscalReceiptBuilder(config.FiscalConfig{
		Code:         "10899002001000000",
		PackageCode:  "1500296",
		VATPercent:   12,
		DefaultTitle: "Subscription",
		PlanTitles:   map[string]string{"pro": "Pro plan"},
	})
	require.NoError(t, err)

	t.Run("known plan", func(t *testing.T) {
		raw, err := builder.GetFiscalData(context.Background(), entities.Transaction{PlanID: "pro", Amount: 5000000})
		require.NoError(t, err)
		require.JSONEq(t, `{"receipt_type":0,"items":[{"title":"Pro plan","price":5000000,"count":1,"code":"10899002001000000","package_code":"1500296","vat_percent":12}]}`, string(raw))
	})

	t.Run("unknown plan uses default title", func(t *testing.T) {
		raw, err := builder.GetFiscalData(context.Background(), entities.Transaction{PlanID: "basic", Amount: 100})
		require.NoError(t, err)
		require.Contains(t, string(raw), `"title":"Subscription"`)
	})
}
