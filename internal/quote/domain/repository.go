package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	DocType    DocType
	Status     Status
	CustomerID snowflake.ID
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Document, error)
	// UpdateHeader persists header fields and totals; lines are untouched.
	UpdateHeader(ctx context.Context, db *gorm.DB, doc *Document) error
	// ReplaceLines drops and rewrites the document's line set.
	ReplaceLines(ctx context.Context, db *gorm.DB, docID snowflake.ID, lines []Line) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Document, error)
}
