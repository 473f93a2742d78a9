package domain

import (
	"context"
	"time"

	"github.com/quipuerp/quipu/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	UpdateCredit(ctx context.Context, req UpdateCreditRequest) (Customer, error)
}

type CreateCustomerRequest struct {
	Name        string      `json:"name"`
	TaxID       string      `json:"tax_id"`
	Email       string      `json:"email"`
	PaymentTerm PaymentTerm `json:"payment_term"`
}

type ListCustomerRequest struct {
	PageToken   string
	PageSize    int
	Name        string
	TaxID       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	Customers []Customer          `json:"customers"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}

type UpdateCreditRequest struct {
	ID             string           `json:"id"`
	CreditEnabled  *bool            `json:"credit_enabled,omitempty"`
	CreditLimitPEN *decimal.Decimal `json:"credit_limit_pen,omitempty"`
	CreditLimitUSD *decimal.Decimal `json:"credit_limit_usd,omitempty"`
}
