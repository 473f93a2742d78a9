package domain

import (
	"context"

	"github.com/quipuerp/quipu/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (Product, error)
}

type CreateRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Unit        Unit            `json:"unit"`
	ListPrice   decimal.Decimal `json:"list_price"`
	TaxCode     string          `json:"tax_code"`
}

type ListRequest struct {
	PageToken string
	PageSize  int
	Name      string
	Code      string
	Active    *bool
}

type ListResponse struct {
	Products []Product           `json:"products"`
	PageInfo pagination.PageInfo `json:"page_info"`
}
