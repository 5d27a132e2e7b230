package payments

import (
	"context"
	"encoding/json"
	"errors"

	"payhook/internal/config"
	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"
)

var ErrMissingFiscalCode = errors.New("missing FISCAL_CODE")

// ReceiptTypeSale is the Payme receipt type for a regular sale.
const ReceiptTypeSale = 0

type Receipt struct {
	ReceiptType int           `json:"receipt_type"`
	Items       []ReceiptItem `json:"items"`
}

// ReceiptItem prices are in minor units, like every Payme amount.
type ReceiptItem struct {
	Title       string `json:"title"`
	Price       int64  `json:"price"`
	Count       int    `json:"count"`
	Code        string `json:"code"`
	PackageCode string `json:"package_code,omitempty"`
	VATPercent  int    `json:"vat_percent"`
}

// FiscalReceiptBuilder answers Payme CheckPerformTransaction with a one-line
// receipt describing the plan being paid for.
type FiscalReceiptBuilder struct {
	cfg config.FiscalConfig
}

var _ interfaces.IFiscalDataProvider = (*FiscalReceiptBuilder)(nil)

func NewFiscalReceiptBuilder(cfg config.FiscalConfig) (*FiscalReceiptBuilder, error) {
	if cfg.Code == "" {
		return nil, ErrMissingFiscalCode
	}
	return &FiscalReceiptBuilder{cfg: cfg}, nil
}

func (b *FiscalReceiptBuilder) GetFiscalData(_ context.Context, tx entities.Transaction) (json.RawMessage, error) {
	title, ok := b.cfg.PlanTitles[tx.PlanID]
	if !ok || title == "" {
		title = b.cfg.DefaultTitle
	}

	return json.Marshal(Receipt{
		ReceiptType: ReceiptTypeSale,
		Items: []ReceiptItem{{
			Title:       title,
			Price:       tx.Amount,
			Count:       1,
			Code:        b.cfg.Code,
			PackageCode: b.cfg.PackageCode,
			VATPercent:  b.cfg.VATPercent,
		}},
	})
}
