package domain

import (
	"context"
	"io"
	"time"

	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/quipuerp/quipu/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Document, error)
	GetByID(ctx context.Context, id string) (Document, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// UpdateLines replaces the line set, runs the pricing engine and persists
	// the recomputed totals.
	UpdateLines(ctx context.Context, req UpdateLinesRequest) (Document, error)
	// Submit freezes a draft after a fresh credit check.
	Submit(ctx context.Context, id string) (Document, error)
	// Convert turns a submitted quote into a sales order, one way.
	Convert(ctx context.Context, quoteID string) (Document, error)
	// RenderPDF produces the printable quote.
	RenderPDF(ctx context.Context, id string) (io.Reader, error)
}

// LineInput is one line as edited by the user. A catalog line carries a
// product id and takes code, name, unit and base price from the catalog; a
// free-text line spells them out. SalePrice and DiscountPercent are
// co-derived: send one, the engine fills the other.
type LineInput struct {
	ProductID       string  `json:"product_id,omitempty"`
	Code            string  `json:"code,omitempty"`
	Name            string  `json:"name,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	BasePrice       string  `json:"base_price,omitempty"`
	Quantity        string  `json:"quantity"`
	SalePrice       *string `json:"sale_price,omitempty"`
	DiscountPercent *string `json:"discount_percent,omitempty"`
}

type CreateRequest struct {
	DocType      DocType          `json:"doc_type"`
	CustomerID   string           `json:"customer_id"`
	Currency     pricing.Currency `json:"currency"`
	TaxCode      pricing.TaxCode  `json:"tax_code"`
	ValidUntil   *time.Time       `json:"valid_until,omitempty"`
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Lines        []LineInput      `json:"lines"`
}

type UpdateLinesRequest struct {
	ID       string           `json:"id"`
	Currency pricing.Currency `json:"currency,omitempty"`
	TaxCode  pricing.TaxCode  `json:"tax_code,omitempty"`
	Lines    []LineInput      `json:"lines"`
}

type ListRequest struct {
	PageToken  string
	PageSize   int
	DocType    DocType
	Status     Status
	CustomerID string
}

type ListResponse struct {
	Documents []Document          `json:"documents"`
	PageInfo  pagination.PageInfo `json:"page_info"`
}

// Renderer produces the printable form of a document.
type Renderer interface {
	RenderQuote(ctx context.Context, doc Document, customerName string) (io.Reader, error)
}
