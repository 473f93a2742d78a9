package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("pricing",
	fx.Provide(NewTaxTable),
	fx.Provide(NewEngine),
)

// Engine applies line mutations and keeps document totals consistent. Every
// mutator ends in a recompute so a document never carries stale totals.
// Invalid numeric input is clamped, never rejected.
type Engine struct {
	taxes TaxTable
}

type EngineParams struct {
	fx.In

	Taxes TaxTable
	Log   *zap.Logger
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{taxes: p.Taxes}
}

// NewEngineWith builds an engine over a fixed tax table. Used by tests.
func NewEngineWith(taxes TaxTable) *Engine {
	return &Engine{taxes: taxes}
}

var hundred = decimal.NewFromInt(100)

// SetQuantity coerces the value to a non-negative quantity and recomputes.
func (e *Engine) SetQuantity(doc *Document, idx int, qty decimal.Decimal) error {
	if idx < 0 || idx >= len(doc.Lines) {
		return ErrLineIndexOutOfRange
	}
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	doc.Lines[idx].Quantity = qty
	e.Recompute(doc)
	return nil
}

// SetSalePrice stores the sale price and re-derives the discount percent
// from the base price. A non-positive base price pins the discount to zero
// instead of deriving it.
func (e *Engine) SetSalePrice(doc *Document, idx int, price decimal.Decimal) error {
	if idx < 0 || idx >= len(doc.Lines) {
		return ErrLineIndexOutOfRange
	}
	if price.IsNegative() {
		price = decimal.Zero
	}
	line := &doc.Lines[idx]
	line.SalePrice = price
	if line.BasePrice.IsPositive() {
		// discount = (sale - base) / base * 100
		line.DiscountPercent = price.Sub(line.BasePrice).Div(line.BasePrice).Mul(hundred)
	} else {
		line.DiscountPercent = decimal.Zero
	}
	e.Recompute(doc)
	return nil
}

// SetDiscountPercent stores the discount and re-derives the sale price from
// the base price. With a non-positive base price the discount is pinned to
// zero and the sale price left untouched.
func (e *Engine) SetDiscountPercent(doc *Document, idx int, pct decimal.Decimal) error {
	if idx < 0 || idx >= len(doc.Lines) {
		return ErrLineIndexOutOfRange
	}
	line := &doc.Lines[idx]
	if !line.BasePrice.IsPositive() {
		line.DiscountPercent = decimal.Zero
		e.Recompute(doc)
		return nil
	}
	line.DiscountPercent = pct
	// sale = base * (1 + discount/100)
	line.SalePrice = line.BasePrice.Mul(decimal.NewFromInt(1).Add(pct.Div(hundred)))
	e.Recompute(doc)
	return nil
}

// SetTaxCode selects the tax entry and recomputes. Unknown codes resolve to
// the table's standard entry.
func (e *Engine) SetTaxCode(doc *Document, code TaxCode) {
	resolved, _ := e.taxes.Resolve(code)
	doc.TaxCode = resolved
	e.Recompute(doc)
}

// SetCurrency switches the document currency. Returning to PEN resets the
// rate to 1.0000 unconditionally; switching to USD keeps whatever rate the
// caller supplies (the asynchronous fetch updates it later) and defaults to
// 1.0000 when none is set yet.
func (e *Engine) SetCurrency(doc *Document, currency Currency, rate decimal.Decimal) {
	doc.Currency = currency
	if currency == CurrencyPEN {
		doc.ExchangeRate = decimal.NewFromInt(1)
	} else if rate.IsPositive() {
		doc.ExchangeRate = rate
	} else if !doc.ExchangeRate.IsPositive() {
		doc.ExchangeRate = decimal.NewFromInt(1)
	}
	e.Recompute(doc)
}

// SetExchangeRate applies a freshly fetched rate to a foreign-currency
// document. Non-positive rates are ignored.
func (e *Engine) SetExchangeRate(doc *Document, rate decimal.Decimal) {
	if doc.Currency == CurrencyPEN || !rate.IsPositive() {
		return
	}
	doc.ExchangeRate = rate
	e.Recompute(doc)
}

// AddLine validates and appends a line, then recomputes.
func (e *Engine) AddLine(doc *Document, line LineItem) error {
	if err := line.Validate(); err != nil {
		return err
	}
	if line.Quantity.IsNegative() {
		line.Quantity = decimal.Zero
	}
	if line.SalePrice.IsNegative() {
		line.SalePrice = decimal.Zero
	}
	if !line.BasePrice.IsPositive() {
		line.DiscountPercent = decimal.Zero
	}
	doc.Lines = append(doc.Lines, line)
	e.Recompute(doc)
	return nil
}

// RemoveLine drops a line and recomputes.
func (e *Engine) RemoveLine(doc *Document, idx int) error {
	if idx < 0 || idx >= len(doc.Lines) {
		return ErrLineIndexOutOfRange
	}
	doc.Lines = append(doc.Lines[:idx], doc.Lines[idx+1:]...)
	e.Recompute(doc)
	return nil
}

// Recompute derives Totals from the current line list and tax selection.
// It is a pure function of the document state.
func (e *Engine) Recompute(doc *Document) {
	subtotal := decimal.Zero
	for _, line := range doc.Lines {
		amount := line.Quantity.Mul(line.SalePrice)
		if doc.Mode == ModeDiscountAsSeparateFactor {
			amount = amount.Mul(decimal.NewFromInt(1).Sub(line.DiscountPercent.Div(hundred)))
		}
		subtotal = subtotal.Add(amount)
	}
	pct := e.taxes.Percent(doc.TaxCode)
	tax := subtotal.Mul(pct).Div(hundred)
	doc.Totals = Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// ParseAmount coerces free-form numeric input. Anything unparseable maps to
// zero, matching the clamp-don't-error contract of the engine.
func ParseAmount(raw string) decimal.Decimal {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}
