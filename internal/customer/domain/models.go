package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentTerm is the closed set of payment conditions. Credit checks only
// apply to the credit terms; cash documents always pass.
type PaymentTerm string

const (
	PaymentTermCash     PaymentTerm = "CASH"
	PaymentTermCredit15 PaymentTerm = "CREDIT_15"
	PaymentTermCredit30 PaymentTerm = "CREDIT_30"
	PaymentTermCredit60 PaymentTerm = "CREDIT_60"
)

func (t PaymentTerm) IsCredit() bool {
	switch t {
	case PaymentTermCredit15, PaymentTermCredit30, PaymentTermCredit60:
		return true
	default:
		return false
	}
}

func (t PaymentTerm) Valid() bool {
	switch t {
	case PaymentTermCash, PaymentTermCredit15, PaymentTermCredit30, PaymentTermCredit60:
		return true
	default:
		return false
	}
}

// Customer is the customer master record, including the per-currency credit
// position consulted at document submission.
type Customer struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"not null" json:"name"`
	TaxID       string            `gorm:"column:tax_id;not null;uniqueIndex" json:"tax_id"`
	Email       string            `gorm:"not null" json:"email"`
	PaymentTerm PaymentTerm       `gorm:"column:payment_term;type:text;not null" json:"payment_term"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`

	CreditEnabled  bool            `gorm:"column:credit_enabled;not null;default:false" json:"credit_enabled"`
	CreditLimitPEN decimal.Decimal `gorm:"column:credit_limit_pen;type:numeric(14,2);not null;default:0" json:"credit_limit_pen"`
	CreditUsedPEN  decimal.Decimal `gorm:"column:credit_used_pen;type:numeric(14,2);not null;default:0" json:"credit_used_pen"`
	CreditLimitUSD decimal.Decimal `gorm:"column:credit_limit_usd;type:numeric(14,2);not null;default:0" json:"credit_limit_usd"`
	CreditUsedUSD  decimal.Decimal `gorm:"column:credit_used_usd;type:numeric(14,2);not null;default:0" json:"credit_used_usd"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
