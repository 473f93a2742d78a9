package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/shopspring/decimal"
)

// DocType separates quotes from sales orders. Both share the document
// tables; the type decides the number prefix and the pricing mode.
type DocType string

const (
	DocTypeQuote DocType = "QUOTE"
	DocTypeOrder DocType = "ORDER"
)

// ModeFor binds the total-computation strategy to the document type. Quotes
// fold the discount into the sale price; sales orders apply it as a separate
// factor. The two formulas are not interchangeable.
func ModeFor(docType DocType) pricing.Mode {
	if docType == DocTypeOrder {
		return pricing.ModeDiscountAsSeparateFactor
	}
	return pricing.ModeDiscountFoldedIntoPrice
}

// NumberPrefix returns the human-facing document number prefix.
func NumberPrefix(docType DocType) string {
	if docType == DocTypeOrder {
		return "PED"
	}
	return "COT"
}

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	// StatusConverted terminates a quote: a sales order exists for it and the
	// quote is immutable from then on.
	StatusConverted Status = "CONVERTED"
)

type Document struct {
	ID            snowflake.ID               `json:"id" gorm:"primaryKey"`
	DocType       DocType                    `json:"doc_type" gorm:"column:doc_type;type:text;not null;index"`
	Number        string                     `json:"number" gorm:"type:text;not null;uniqueIndex"`
	CustomerID    snowflake.ID               `json:"customer_id" gorm:"column:customer_id;not null;index"`
	Currency      pricing.Currency           `json:"currency" gorm:"type:text;not null;default:'PEN'"`
	ExchangeRate  decimal.Decimal            `json:"exchange_rate" gorm:"column:exchange_rate;type:numeric(10,4);not null;default:1"`
	TaxCode       pricing.TaxCode            `json:"tax_code" gorm:"column:tax_code;type:text;not null;default:'STANDARD'"`
	PaymentTerm   customerdomain.PaymentTerm `json:"payment_term" gorm:"column:payment_term;type:text;not null"`
	Status        Status                     `json:"status" gorm:"type:text;not null;default:'DRAFT';index"`
	ValidUntil    *time.Time                 `json:"valid_until,omitempty" gorm:"column:valid_until"`
	DeliveryDate  *time.Time                 `json:"delivery_date,omitempty" gorm:"column:delivery_date"`
	Notes         string                     `json:"notes,omitempty" gorm:"type:text"`
	SourceQuoteID *snowflake.ID              `json:"source_quote_id,omitempty" gorm:"column:source_quote_id;index"`

	Subtotal decimal.Decimal `json:"subtotal" gorm:"type:numeric(14,2);not null;default:0"`
	Tax      decimal.Decimal `json:"tax" gorm:"type:numeric(14,2);not null;default:0"`
	Total    decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null;default:0"`

	CreatedBy snowflake.ID `json:"created_by" gorm:"column:created_by;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Lines []Line `json:"lines" gorm:"-"`
}

func (Document) TableName() string { return "documents" }

// Line is one persisted document line. Position keeps the user's ordering;
// lines are replaced wholesale on every edit.
type Line struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	DocumentID      snowflake.ID    `json:"document_id" gorm:"column:document_id;not null;index"`
	Position        int             `json:"position" gorm:"not null"`
	ProductID       *snowflake.ID   `json:"product_id,omitempty" gorm:"column:product_id"`
	Code            string          `json:"code" gorm:"type:text;not null"`
	Name            string          `json:"name" gorm:"type:text;not null"`
	Unit            string          `json:"unit" gorm:"type:text;not null;default:'UND'"`
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:numeric(14,3);not null;default:0"`
	BasePrice       decimal.Decimal `json:"base_price" gorm:"column:base_price;type:numeric(14,6);not null;default:0"`
	SalePrice       decimal.Decimal `json:"sale_price" gorm:"column:sale_price;type:numeric(14,6);not null;default:0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"column:discount_percent;type:numeric(8,4);not null;default:0"`
}

func (Line) TableName() string { return "document_lines" }

// Editable reports whether the document still accepts changes.
func (d Document) Editable() bool {
	return d.Status == StatusDraft
}
