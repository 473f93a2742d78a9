package pricing

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Document currencies. Quipu quotes in PEN by default; USD documents carry
// an exchange rate supplied by the exchange service.
type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
)

// TaxCode selects a fixed percentage from the tax table.
// Codes are ENGINE-CONSTANTS. Do NOT rename once used in documents.
type TaxCode string

const (
	TaxCodeStandard   TaxCode = "STANDARD"    // IGV
	TaxCodeExempt     TaxCode = "EXEMPT"      // exonerado
	TaxCodeNotSubject TaxCode = "NOT_SUBJECT" // inafecto
)

// Mode is the total-computation strategy. Two formulas coexist in the
// business: quotes fold the discount into the sale price, sales orders apply
// it as a separate factor. They are not interchangeable; keep both.
type Mode string

const (
	ModeDiscountFoldedIntoPrice  Mode = "discount_folded_into_price"
	ModeDiscountAsSeparateFactor Mode = "discount_as_separate_factor"
)

// LineItem is one document line. Exactly one of ProductID or the free-text
// Code+Name pair identifies the item; free-text lines are used on sample
// documents for non-catalog goods.
type LineItem struct {
	ProductID       *snowflake.ID
	Code            string
	Name            string
	Unit            string
	Quantity        decimal.Decimal
	BasePrice       decimal.Decimal
	SalePrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// IsCatalog reports whether the line references a catalog product.
func (l LineItem) IsCatalog() bool {
	return l.ProductID != nil && *l.ProductID != 0
}

// Validate enforces the catalog-or-freetext invariant.
func (l LineItem) Validate() error {
	if l.IsCatalog() {
		if l.Code != "" || l.Name != "" {
			return ErrAmbiguousLineReference
		}
		return nil
	}
	if l.Code == "" || l.Name == "" {
		return ErrMissingLineReference
	}
	return nil
}

// Totals are derived from the line list and tax selection, never persisted
// independently of a recompute.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Document is the in-memory computation state for a quote or sales order.
type Document struct {
	Mode         Mode
	Currency     Currency
	ExchangeRate decimal.Decimal
	TaxCode      TaxCode
	Lines        []LineItem
	Totals       Totals
}

// NewDocument returns an empty local-currency document in the given mode.
func NewDocument(mode Mode) *Document {
	return &Document{
		Mode:         mode,
		Currency:     CurrencyPEN,
		ExchangeRate: decimal.NewFromInt(1),
		TaxCode:      TaxCodeStandard,
	}
}
