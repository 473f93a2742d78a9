package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/pkg/db/option"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (
			id, name, tax_id, email, payment_term, metadata,
			credit_enabled, credit_limit_pen, credit_used_pen, credit_limit_usd, credit_used_usd,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.TaxID,
		customer.Email,
		customer.PaymentTerm,
		customer.Metadata,
		customer.CreditEnabled,
		customer.CreditLimitPEN,
		customer.CreditUsedPEN,
		customer.CreditLimitUSD,
		customer.CreditUsedUSD,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, tax_id, email, payment_term, metadata,
			credit_enabled, credit_limit_pen, credit_used_pen, credit_limit_usd, credit_used_usd,
			created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, email = ?, payment_term = ?,
			credit_enabled = ?, credit_limit_pen = ?, credit_used_pen = ?,
			credit_limit_usd = ?, credit_used_usd = ?, updated_at = ?
		 WHERE id = ?`,
		customer.Name,
		customer.Email,
		customer.PaymentTerm,
		customer.CreditEnabled,
		customer.CreditLimitPEN,
		customer.CreditUsedPEN,
		customer.CreditLimitUSD,
		customer.CreditUsedUSD,
		customer.UpdatedAt,
		customer.ID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	stmt := db.WithContext(ctx).Model(&domain.Customer{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.TaxID != "" {
		stmt = stmt.Where("tax_id = ?", filter.TaxID)
	}
	if filter.CreatedFrom != nil {
		stmt = stmt.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		stmt = stmt.Where("created_at <= ?", *filter.CreatedTo)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
