package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/pkg/db/option"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO documents (
				id, doc_type, number, customer_id, currency, exchange_rate, tax_code,
				payment_term, status, valid_until, delivery_date, notes, source_quote_id,
				subtotal, tax, total, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.ID,
			doc.DocType,
			doc.Number,
			doc.CustomerID,
			doc.Currency,
			doc.ExchangeRate,
			doc.TaxCode,
			doc.PaymentTerm,
			doc.Status,
			doc.ValidUntil,
			doc.DeliveryDate,
			doc.Notes,
			doc.SourceQuoteID,
			doc.Subtotal,
			doc.Tax,
			doc.Total,
			doc.CreatedBy,
			doc.CreatedAt,
			doc.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
		return insertLines(ctx, tx, doc.ID, doc.Lines)
	})
}

func insertLines(ctx context.Context, tx *gorm.DB, docID snowflake.ID, lines []domain.Line) error {
	for _, line := range lines {
		err := tx.WithContext(ctx).Exec(
			`INSERT INTO document_lines (
				id, document_id, position, product_id, code, name, unit,
				quantity, base_price, sale_price, discount_percent)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID,
			docID,
			line.Position,
			line.ProductID,
			line.Code,
			line.Name,
			line.Unit,
			line.Quantity,
			line.BasePrice,
			line.SalePrice,
			line.DiscountPercent,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Document, error) {
	var doc domain.Document
	err := db.WithContext(ctx).Raw(
		`SELECT id, doc_type, number, customer_id, currency, exchange_rate, tax_code,
			payment_term, status, valid_until, delivery_date, notes, source_quote_id,
			subtotal, tax, total, created_by, created_at, updated_at
		 FROM documents WHERE id = ?`,
		id,
	).Scan(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, nil
	}

	var lines []domain.Line
	err = db.WithContext(ctx).Raw(
		`SELECT id, document_id, position, product_id, code, name, unit,
			quantity, base_price, sale_price, discount_percent
		 FROM document_lines WHERE document_id = ?
		 ORDER BY position ASC`,
		id,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *repo) UpdateHeader(ctx context.Context, db *gorm.DB, doc *domain.Document) error {
	return db.WithContext(ctx).Exec(
		`UPDATE documents
		 SET currency = ?, exchange_rate = ?, tax_code = ?, payment_term = ?, status = ?,
			valid_until = ?, delivery_date = ?, notes = ?,
			subtotal = ?, tax = ?, total = ?, updated_at = ?
		 WHERE id = ?`,
		doc.Currency,
		doc.ExchangeRate,
		doc.TaxCode,
		doc.PaymentTerm,
		doc.Status,
		doc.ValidUntil,
		doc.DeliveryDate,
		doc.Notes,
		doc.Subtotal,
		doc.Tax,
		doc.Total,
		doc.UpdatedAt,
		doc.ID,
	).Error
}

func (r *repo) ReplaceLines(ctx context.Context, db *gorm.DB, docID snowflake.ID, lines []domain.Line) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM document_lines WHERE document_id = ?`, docID).Error; err != nil {
			return err
		}
		return insertLines(ctx, tx, docID, lines)
	})
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Document, error) {
	var docs []*domain.Document
	stmt := db.WithContext(ctx).Model(&domain.Document{})
	if filter.DocType != "" {
		stmt = stmt.Where("doc_type = ?", filter.DocType)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
