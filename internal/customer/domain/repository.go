package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerFilter struct {
	Name        string
	TaxID       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
}
