package pricing

import (
	"testing"

	"github.com/quipuerp/quipu/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine() *Engine {
	return NewEngineWith(StaticTaxTable(config.DefaultRatesConfig().Taxes))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func freeLine(qty, base, sale string) LineItem {
	return LineItem{
		Code:      "MUE-001",
		Name:      "Muestra",
		Unit:      "UND",
		Quantity:  dec(qty),
		BasePrice: dec(base),
		SalePrice: dec(sale),
	}
}

func TestRecomputeStandardTax(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("2", "10.00", "10.00")))

	assert.True(t, doc.Totals.Subtotal.Equal(dec("20.00")), "subtotal=%s", doc.Totals.Subtotal)
	assert.True(t, doc.Totals.Tax.Equal(dec("3.60")), "tax=%s", doc.Totals.Tax)
	assert.True(t, doc.Totals.Total.Equal(dec("23.60")), "total=%s", doc.Totals.Total)
}

func TestRecomputeTotalIsSubtotalPlusTax(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountAsSeparateFactor)
	require.NoError(t, e.AddLine(doc, freeLine("3", "7.50", "7.13")))
	require.NoError(t, e.AddLine(doc, freeLine("1.5", "120", "99.99")))

	sum := doc.Totals.Subtotal.Add(doc.Totals.Tax)
	assert.True(t, doc.Totals.Total.Equal(sum))
}

func TestRecomputeIsPure(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("4", "25.00", "23.00")))

	first := doc.Totals
	e.Recompute(doc)
	e.Recompute(doc)
	assert.True(t, doc.Totals.Subtotal.Equal(first.Subtotal))
	assert.True(t, doc.Totals.Tax.Equal(first.Tax))
	assert.True(t, doc.Totals.Total.Equal(first.Total))
}

func TestSetDiscountPercentDerivesSalePrice(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("1", "100.00", "100.00")))

	require.NoError(t, e.SetDiscountPercent(doc, 0, dec("-10")))
	assert.True(t, doc.Lines[0].SalePrice.Equal(dec("90.00")), "sale=%s", doc.Lines[0].SalePrice)
}

func TestSalePriceDiscountRoundTrip(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("1", "37.90", "37.90")))

	for _, price := range []string{"35.00", "41.27", "0.01", "37.90"} {
		require.NoError(t, e.SetSalePrice(doc, 0, dec(price)))
		derived := doc.Lines[0].DiscountPercent
		require.NoError(t, e.SetDiscountPercent(doc, 0, derived))

		diff := doc.Lines[0].SalePrice.Sub(dec(price)).Abs()
		assert.True(t, diff.LessThan(dec("0.000001")), "price %s round-tripped to %s", price, doc.Lines[0].SalePrice)
	}
}

func TestDiscountPinnedWithoutBasePrice(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("1", "0", "15.00")))

	require.NoError(t, e.SetSalePrice(doc, 0, dec("12.00")))
	assert.True(t, doc.Lines[0].DiscountPercent.IsZero())

	require.NoError(t, e.SetDiscountPercent(doc, 0, dec("25")))
	assert.True(t, doc.Lines[0].DiscountPercent.IsZero())
	assert.True(t, doc.Lines[0].SalePrice.Equal(dec("12.00")), "sale price must stay untouched")
}

func TestQuantityClampedNonNegative(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("2", "10.00", "10.00")))

	require.NoError(t, e.SetQuantity(doc, 0, dec("-5")))
	assert.True(t, doc.Lines[0].Quantity.IsZero())
	assert.True(t, doc.Totals.Total.IsZero())
}

func TestParseAmountCoercesGarbage(t *testing.T) {
	assert.True(t, ParseAmount("abc").IsZero())
	assert.True(t, ParseAmount("").IsZero())
	assert.True(t, ParseAmount("12.5").Equal(dec("12.5")))
}

func TestModesDiverge(t *testing.T) {
	e := testEngine()

	folded := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(folded, freeLine("1", "100.00", "100.00")))
	require.NoError(t, e.SetDiscountPercent(folded, 0, dec("-10")))

	separate := NewDocument(ModeDiscountAsSeparateFactor)
	require.NoError(t, e.AddLine(separate, freeLine("1", "100.00", "100.00")))
	require.NoError(t, e.SetDiscountPercent(separate, 0, dec("-10")))

	// Folded: subtotal = 90. Separate: subtotal = 90 * (1 - (-10)/100) = 99.
	assert.True(t, folded.Totals.Subtotal.Equal(dec("90")), "folded=%s", folded.Totals.Subtotal)
	assert.True(t, separate.Totals.Subtotal.Equal(dec("99")), "separate=%s", separate.Totals.Subtotal)
}

func TestUnknownTaxCodeFallsBackToStandard(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)
	require.NoError(t, e.AddLine(doc, freeLine("1", "100.00", "100.00")))

	e.SetTaxCode(doc, TaxCode("IVA_21"))
	assert.Equal(t, TaxCodeStandard, doc.TaxCode)
	assert.True(t, doc.Totals.Tax.Equal(dec("18")))
}

func TestExemptAndNotSubjectAreZeroRated(t *testing.T) {
	e := testEngine()
	for _, code := range []TaxCode{TaxCodeExempt, TaxCodeNotSubject} {
		doc := NewDocument(ModeDiscountFoldedIntoPrice)
		require.NoError(t, e.AddLine(doc, freeLine("2", "50.00", "50.00")))
		e.SetTaxCode(doc, code)

		assert.True(t, doc.Totals.Tax.IsZero(), "code %s", code)
		assert.True(t, doc.Totals.Total.Equal(doc.Totals.Subtotal), "code %s", code)
	}
}

func TestCurrencySwitchResetsRateOnPEN(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)

	e.SetCurrency(doc, CurrencyUSD, dec("3.524"))
	assert.True(t, doc.ExchangeRate.Equal(dec("3.524")))

	e.SetCurrency(doc, CurrencyPEN, dec("3.524"))
	assert.True(t, doc.ExchangeRate.Equal(dec("1")))
}

func TestCurrencySwitchToUSDDefaultsRate(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)

	e.SetCurrency(doc, CurrencyUSD, decimal.Zero)
	assert.True(t, doc.ExchangeRate.Equal(dec("1")), "rate stays at default until the fetch lands")

	e.SetExchangeRate(doc, dec("3.80"))
	assert.True(t, doc.ExchangeRate.Equal(dec("3.80")))
}

func TestLineReferenceInvariant(t *testing.T) {
	e := testEngine()
	doc := NewDocument(ModeDiscountFoldedIntoPrice)

	err := e.AddLine(doc, LineItem{Quantity: dec("1")})
	assert.ErrorIs(t, err, ErrMissingLineReference)
}
