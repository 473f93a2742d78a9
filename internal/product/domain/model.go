package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPrice  = errors.New("invalid_price")
	ErrDuplicateCode = errors.New("duplicate_code")
	ErrInsufficient  = errors.New("insufficient_stock")
)

// Unit is the unit of measure printed on documents.
type Unit string

const (
	UnitPiece Unit = "UND"
	UnitKilo  Unit = "KG"
	UnitMeter Unit = "M"
	UnitBox   Unit = "CJA"
)

type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey"`
	Code        string            `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Unit        Unit              `json:"unit" gorm:"type:text;not null;default:'UND'"`
	ListPrice   decimal.Decimal   `json:"list_price" gorm:"column:list_price;type:numeric(14,6);not null;default:0"`
	TaxCode     string            `json:"tax_code" gorm:"column:tax_code;type:text;not null;default:'STANDARD'"`
	Stock       decimal.Decimal   `json:"stock" gorm:"type:numeric(14,3);not null;default:0"`
	Active      bool              `json:"active" gorm:"not null;default:true"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
