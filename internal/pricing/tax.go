package pricing

import (
	"strings"

	"github.com/quipuerp/quipu/internal/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TaxTable resolves a tax code to its fixed percentage. Unknown codes fall
// back to the first (standard) entry; callers never see an error from a bad
// code, only the fallback percentage.
type TaxTable interface {
	Percent(code TaxCode) decimal.Decimal
	Resolve(code TaxCode) (TaxCode, decimal.Decimal)
}

type holderTable struct {
	holder *config.RatesHolder
	log    *zap.Logger
}

// NewTaxTable builds a table backed by the hot-reloadable rates config.
func NewTaxTable(holder *config.RatesHolder, log *zap.Logger) TaxTable {
	return &holderTable{holder: holder, log: log.Named("pricing.taxtable")}
}

func (t *holderTable) Percent(code TaxCode) decimal.Decimal {
	_, pct := t.Resolve(code)
	return pct
}

func (t *holderTable) Resolve(code TaxCode) (TaxCode, decimal.Decimal) {
	entries := t.holder.Get().Taxes
	for _, entry := range entries {
		if strings.EqualFold(entry.Code, string(code)) {
			return TaxCode(entry.Code), decimal.NewFromFloat(entry.Percent)
		}
	}
	// Unknown codes resolve to the first entry so totals stay computable.
	first := entries[0]
	t.log.Warn("unknown tax code, using standard entry",
		zap.String("code", string(code)),
		zap.String("fallback", first.Code),
	)
	return TaxCode(first.Code), decimal.NewFromFloat(first.Percent)
}

// StaticTaxTable is a fixed in-memory table, used by tests and by callers
// that do not carry the rates holder.
type StaticTaxTable []config.TaxEntry

func (t StaticTaxTable) Percent(code TaxCode) decimal.Decimal {
	_, pct := t.Resolve(code)
	return pct
}

func (t StaticTaxTable) Resolve(code TaxCode) (TaxCode, decimal.Decimal) {
	for _, entry := range t {
		if strings.EqualFold(entry.Code, string(code)) {
			return TaxCode(entry.Code), decimal.NewFromFloat(entry.Percent)
		}
	}
	first := t[0]
	return TaxCode(first.Code), decimal.NewFromFloat(first.Percent)
}
