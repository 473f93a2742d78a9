package option

import (
	"time"

	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

// ApplyPagination applies cursor pagination. One extra row beyond the page
// size is requested so callers can detect a next page.
func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}
	stmt = stmt.Limit(size + 1)

	if o.page.PageToken == "" {
		return stmt
	}
	cursor, err := pagination.DecodeCursor(o.page.PageToken)
	if err != nil || cursor == nil {
		return stmt
	}
	createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
	if err != nil {
		return stmt
	}
	return stmt.Where("(created_at, id) < (?, ?)", createdAt, cursor.ID)
}
