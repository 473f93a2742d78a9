package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/config"
	"github.com/quipuerp/quipu/internal/credit"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	customerrepo "github.com/quipuerp/quipu/internal/customer/repository"
	customerservice "github.com/quipuerp/quipu/internal/customer/service"
	notificationdomain "github.com/quipuerp/quipu/internal/notification/domain"
	"github.com/quipuerp/quipu/internal/pricing"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	productrepo "github.com/quipuerp/quipu/internal/product/repository"
	productservice "github.com/quipuerp/quipu/internal/product/service"
	"github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/internal/quote/repository"
	"github.com/quipuerp/quipu/pkg/db"
	"github.com/quipuerp/quipu/pkg/sessionctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	quotes    domain.Service
	customers *customerservice.Service
	products  productdomain.Service
	customer  customerdomain.Customer
	notifier  *notifierStub
}

type notifierStub struct {
	created []notificationdomain.CreateRequest
}

func (n *notifierStub) Create(_ context.Context, req notificationdomain.CreateRequest) (notificationdomain.Notification, error) {
	n.created = append(n.created, req)
	return notificationdomain.Notification{UserID: req.UserID}, nil
}

func (n *notifierStub) List(context.Context, snowflake.ID) (notificationdomain.ListResponse, error) {
	return notificationdomain.ListResponse{}, nil
}

func (n *notifierStub) MarkRead(context.Context, snowflake.ID, string) error { return nil }

func (n *notifierStub) MarkAllRead(context.Context, snowflake.ID) error { return nil }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&customerdomain.Customer{},
		&productdomain.Product{},
		&domain.Document{},
		&domain.Line{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	taxes := pricing.StaticTaxTable(config.DefaultRatesConfig().Taxes)
	engine := pricing.NewEngineWith(taxes)

	customers := customerservice.New(customerservice.Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Repo: customerrepo.Provide(),
	})
	products := productservice.New(productservice.Params{
		DB: dbConn, Log: zap.NewNop(), GenID: node, Repo: productrepo.Provide(), TaxTable: taxes,
	})
	creditSvc := credit.NewService(credit.Params{Store: customers, Log: zap.NewNop()})

	notifier := &notifierStub{}
	quotes := New(Params{
		DB:        dbConn,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		Engine:    engine,
		Credit:    creditSvc,
		Customers: customers,
		Products:  products,
		Notifier:  notifier,
	})

	customer, err := customers.Create(context.Background(), customerdomain.CreateCustomerRequest{
		Name:        "Comercial Pacifico SAC",
		TaxID:       "20456789012",
		Email:       "compras@pacifico.pe",
		PaymentTerm: customerdomain.PaymentTermCredit30,
	})
	require.NoError(t, err)

	return &fixture{quotes: quotes, customers: customers, products: products, customer: customer, notifier: notifier}
}

func str(s string) *string { return &s }

func freeLine(qty, base string) domain.LineInput {
	return domain.LineInput{
		Code:      "SRV-CORTE",
		Name:      "Servicio de corte a medida",
		Quantity:  qty,
		BasePrice: base,
	}
}

func TestCreateQuoteComputesTotals(t *testing.T) {
	f := newFixture(t)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("2", "10")},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DocTypeQuote, doc.DocType)
	assert.Contains(t, doc.Number, "COT-")
	assert.Equal(t, domain.StatusDraft, doc.Status)
	assert.Equal(t, customerdomain.PaymentTermCredit30, doc.PaymentTerm)
	assert.True(t, doc.Subtotal.Equal(decimal.NewFromInt(20)), "subtotal=%s", doc.Subtotal)
	assert.True(t, doc.Tax.Equal(decimal.RequireFromString("3.6")), "tax=%s", doc.Tax)
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("23.6")), "total=%s", doc.Total)
}

func TestCreateQuoteFromCatalogLine(t *testing.T) {
	f := newFixture(t)

	product, err := f.products.Create(context.Background(), productdomain.CreateRequest{
		Code:      "TUB-PVC-12",
		Name:      "Tubo PVC 1/2\"",
		Unit:      productdomain.UnitMeter,
		ListPrice: decimal.RequireFromString("4.50"),
	})
	require.NoError(t, err)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines: []domain.LineInput{{
			ProductID: product.ID.String(),
			Quantity:  "10",
		}},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	line := doc.Lines[0]
	assert.Equal(t, "TUB-PVC-12", line.Code)
	assert.Equal(t, "Tubo PVC 1/2\"", line.Name)
	assert.True(t, line.BasePrice.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, doc.Subtotal.Equal(decimal.NewFromInt(45)))
}

func TestQuoteDiscountFoldsIntoPrice(t *testing.T) {
	f := newFixture(t)

	input := freeLine("1", "100")
	input.DiscountPercent = str("-10")
	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{input},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].SalePrice.Equal(decimal.NewFromInt(90)), "sale=%s", doc.Lines[0].SalePrice)
	assert.True(t, doc.Subtotal.Equal(decimal.NewFromInt(90)), "subtotal=%s", doc.Subtotal)
}

func TestUpdateLinesRecomputes(t *testing.T) {
	f := newFixture(t)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("2", "10")},
	})
	require.NoError(t, err)

	updated, err := f.quotes.UpdateLines(context.Background(), domain.UpdateLinesRequest{
		ID:    doc.ID.String(),
		Lines: []domain.LineInput{freeLine("5", "10")},
	})
	require.NoError(t, err)
	assert.True(t, updated.Subtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(59)))

	// Reload to prove the totals were persisted, not just returned.
	got, err := f.quotes.GetByID(context.Background(), doc.ID.String())
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(59)))
	require.Len(t, got.Lines, 1)
}

func TestSubmitEmptyQuote(t *testing.T) {
	f := newFixture(t)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.quotes.Submit(context.Background(), doc.ID.String())
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func enableCredit(t *testing.T, f *fixture, limitPEN int64) {
	t.Helper()
	enabled := true
	limit := decimal.NewFromInt(limitPEN)
	_, err := f.customers.UpdateCredit(context.Background(), customerdomain.UpdateCreditRequest{
		ID:             f.customer.ID.String(),
		CreditEnabled:  &enabled,
		CreditLimitPEN: &limit,
	})
	require.NoError(t, err)
}

func TestSubmitCreditExceeded(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 50)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("10", "10")}, // total 118.00
	})
	require.NoError(t, err)

	_, err = f.quotes.Submit(context.Background(), doc.ID.String())
	require.Error(t, err)
	assert.True(t, errors.Is(err, credit.ErrExceeded))

	var creditErr *domain.CreditExceededError
	require.ErrorAs(t, err, &creditErr)
	assert.True(t, creditErr.Available.Equal(decimal.NewFromInt(50)))
	assert.True(t, creditErr.Requested.Equal(decimal.NewFromInt(118)))

	got, err := f.quotes.GetByID(context.Background(), doc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, got.Status, "failed submit must not change status")
}

func TestSubmitCashIgnoresCredit(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 1)

	cash, err := f.customers.Create(context.Background(), customerdomain.CreateCustomerRequest{
		Name:        "Bodega Rosita",
		TaxID:       "10456789012",
		Email:       "rosita@gmail.com",
		PaymentTerm: customerdomain.PaymentTermCash,
	})
	require.NoError(t, err)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: cash.ID.String(),
		Lines:      []domain.LineInput{freeLine("10", "10")},
	})
	require.NoError(t, err)

	submitted, err := f.quotes.Submit(context.Background(), doc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
}

func TestSubmitWithinLimit(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 118)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("10", "10")},
	})
	require.NoError(t, err)

	submitted, err := f.quotes.Submit(context.Background(), doc.ID.String())
	require.NoError(t, err, "total equal to available credit passes")
	assert.Equal(t, domain.StatusSubmitted, submitted.Status)
}

func TestSubmitNotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := sessionctx.WithSession(context.Background(), sessionctx.Session{
		UserID: snowflake.ID(77),
		Role:   "seller",
	})

	doc, err := f.quotes.Create(ctx, domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("1", "10")},
	})
	require.NoError(t, err)

	_, err = f.quotes.Submit(ctx, doc.ID.String())
	require.NoError(t, err)

	require.Len(t, f.notifier.created, 1)
	got := f.notifier.created[0]
	assert.Equal(t, snowflake.ID(77), got.UserID)
	assert.Equal(t, notificationdomain.KindSuccess, got.Kind)
	assert.Equal(t, doc.Number, got.Message)
	require.NotNil(t, got.TargetRoute)
	assert.Equal(t, "/cotizaciones", *got.TargetRoute)
}

func TestConvertRequiresSubmitted(t *testing.T) {
	f := newFixture(t)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("1", "100")},
	})
	require.NoError(t, err)

	_, err = f.quotes.Convert(context.Background(), doc.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotSubmitted)
}

func TestConvertProducesOrderUnderSeparateFactor(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 1000)

	input := freeLine("1", "100")
	input.DiscountPercent = str("-10")
	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{input},
	})
	require.NoError(t, err)
	require.True(t, doc.Subtotal.Equal(decimal.NewFromInt(90)))

	_, err = f.quotes.Submit(context.Background(), doc.ID.String())
	require.NoError(t, err)

	order, err := f.quotes.Convert(context.Background(), doc.ID.String())
	require.NoError(t, err)

	assert.Equal(t, domain.DocTypeOrder, order.DocType)
	assert.Contains(t, order.Number, "PED-")
	require.NotNil(t, order.SourceQuoteID)
	assert.Equal(t, doc.ID, *order.SourceQuoteID)

	// Same lines, different formula: sale 90 with discount -10 as a separate
	// factor gives 90 * 1.10 = 99.
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(99)), "subtotal=%s", order.Subtotal)

	converted, err := f.quotes.GetByID(context.Background(), doc.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConverted, converted.Status)
}

func TestConvertedQuoteIsImmutable(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 1000)

	doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
		CustomerID: f.customer.ID.String(),
		Lines:      []domain.LineInput{freeLine("1", "100")},
	})
	require.NoError(t, err)
	_, err = f.quotes.Submit(context.Background(), doc.ID.String())
	require.NoError(t, err)
	_, err = f.quotes.Convert(context.Background(), doc.ID.String())
	require.NoError(t, err)

	_, err = f.quotes.UpdateLines(context.Background(), domain.UpdateLinesRequest{
		ID:    doc.ID.String(),
		Lines: []domain.LineInput{freeLine("2", "100")},
	})
	assert.ErrorIs(t, err, domain.ErrQuoteConverted)

	_, err = f.quotes.Convert(context.Background(), doc.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteConverted)

	_, err = f.quotes.Submit(context.Background(), doc.ID.String())
	assert.ErrorIs(t, err, domain.ErrQuoteConverted)
}

func TestListFiltersByDocType(t *testing.T) {
	f := newFixture(t)
	enableCredit(t, f, 10000)

	for i := 0; i < 3; i++ {
		doc, err := f.quotes.Create(context.Background(), domain.CreateRequest{
			CustomerID: f.customer.ID.String(),
			Lines:      []domain.LineInput{freeLine("1", "10")},
		})
		require.NoError(t, err)
		if i == 0 {
			_, err = f.quotes.Submit(context.Background(), doc.ID.String())
			require.NoError(t, err)
			_, err = f.quotes.Convert(context.Background(), doc.ID.String())
			require.NoError(t, err)
		}
	}

	resp, err := f.quotes.List(context.Background(), domain.ListRequest{DocType: domain.DocTypeOrder})
	require.NoError(t, err)
	assert.Len(t, resp.Documents, 1)

	resp, err = f.quotes.List(context.Background(), domain.ListRequest{DocType: domain.DocTypeQuote})
	require.NoError(t, err)
	assert.Len(t, resp.Documents, 3)
}
