package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/customer/repository"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/quipuerp/quipu/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, dbConn
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:        "Ferreteria El Sol SAC",
		TaxID:       "20123456789",
		Email:       "ventas@elsol.pe",
		PaymentTerm: domain.PaymentTermCredit30,
	})
	require.NoError(t, err)
	assert.NotZero(t, customer.ID)
	assert.Equal(t, domain.PaymentTermCredit30, customer.PaymentTerm)
	assert.False(t, customer.CreditEnabled)
}

func TestCreateCustomerDefaultsToCash(t *testing.T) {
	svc, _ := newTestService(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Bodega Rosita",
		TaxID: "10456789012",
		Email: "rosita@gmail.com",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentTermCash, customer.PaymentTerm)
}

func TestCreateCustomerRejectsBadTaxID(t *testing.T) {
	svc, _ := newTestService(t)

	for _, taxID := range []string{"", "2012345678", "201234567890", "99123456789", "20123a56789"} {
		_, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
			Name:  "Cliente",
			TaxID: taxID,
			Email: "c@c.pe",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidTaxID, "tax_id=%q", taxID)
	}
}

func TestCreateCustomerDuplicateTaxID(t *testing.T) {
	svc, _ := newTestService(t)

	req := domain.CreateCustomerRequest{
		Name:  "Cliente Uno",
		TaxID: "20123456789",
		Email: "uno@c.pe",
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req.Name = "Cliente Dos"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDuplicateTaxID)
}

func TestUpdateCreditAndSnapshot(t *testing.T) {
	svc, _ := newTestService(t)

	customer, err := svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:        "Distribuidora Andina SAC",
		TaxID:       "20555666777",
		Email:       "cobranzas@andina.pe",
		PaymentTerm: domain.PaymentTermCredit15,
	})
	require.NoError(t, err)

	enabled := true
	limitPEN := decimal.NewFromInt(5000)
	limitUSD := decimal.NewFromInt(1200)
	_, err = svc.UpdateCredit(context.Background(), domain.UpdateCreditRequest{
		ID:             customer.ID.String(),
		CreditEnabled:  &enabled,
		CreditLimitPEN: &limitPEN,
		CreditLimitUSD: &limitUSD,
	})
	require.NoError(t, err)

	snapshot, err := svc.CreditSnapshot(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.True(t, snapshot.Enabled)
	assert.True(t, snapshot.ByCurrency[pricing.CurrencyPEN].Limit.Equal(limitPEN))
	assert.True(t, snapshot.ByCurrency[pricing.CurrencyUSD].Limit.Equal(limitUSD))
	assert.True(t, snapshot.ByCurrency[pricing.CurrencyPEN].Available().Equal(limitPEN))
}

func TestCreditSnapshotUnknownCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	_, err = svc.CreditSnapshot(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByIDInvalid(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
