package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Name   string
	Code   string
	Active *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Product, error)
}
