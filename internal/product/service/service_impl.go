package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/quipuerp/quipu/internal/product/domain"
	"github.com/quipuerp/quipu/pkg/db"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	TaxTable pricing.TaxTable
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	taxTable pricing.TaxTable
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		taxTable: p.TaxTable,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Product, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Product{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.ListPrice.IsNegative() {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	unit := req.Unit
	if unit == "" {
		unit = domain.UnitPiece
	}

	// The catalog stores the resolved code so documents built from it never
	// carry a code the tax table does not know.
	taxCode := string(pricing.TaxCodeStandard)
	if trimmed := strings.ToUpper(strings.TrimSpace(req.TaxCode)); trimmed != "" {
		resolved, _ := s.taxTable.Resolve(pricing.TaxCode(trimmed))
		taxCode = string(resolved)
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Code:        code,
		Name:        name,
		Description: req.Description,
		Unit:        unit,
		ListPrice:   req.ListPrice,
		TaxCode:     taxCode,
		Stock:       decimal.Zero,
		Active:      true,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	productID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Product{}, domain.ErrInvalidID
	}

	product, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

// AdjustStock applies a signed stock movement. Negative deltas that would
// leave the stock below zero are rejected.
func (s *Service) AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (domain.Product, error) {
	productID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Product{}, domain.ErrInvalidID
	}

	var updated domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		next := product.Stock.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficient
		}

		product.Stock = next
		product.UpdatedAt = time.Now().UTC()
		if err := s.repo.Update(ctx, tx, product); err != nil {
			return err
		}
		updated = *product
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		Name:   strings.TrimSpace(req.Name),
		Code:   strings.ToUpper(strings.TrimSpace(req.Code)),
		Active: req.Active,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(product *domain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        product.ID.String(),
			CreatedAt: product.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}

	return domain.ListResponse{Products: products, PageInfo: *pageInfo}, nil
}
