package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/credit"
	"github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/pricing"
	"github.com/quipuerp/quipu/pkg/db"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	taxID := strings.TrimSpace(req.TaxID)
	if !validTaxID(taxID) {
		return domain.Customer{}, domain.ErrInvalidTaxID
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	term := req.PaymentTerm
	if term == "" {
		term = domain.PaymentTermCash
	}
	if !term.Valid() {
		return domain.Customer{}, domain.ErrInvalidPaymentTerm
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:          s.genID.Generate(),
		Name:        name,
		TaxID:       taxID,
		Email:       email,
		PaymentTerm: term,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrDuplicateTaxID
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

// validTaxID accepts a RUC: 11 digits starting with 10, 15, 17 or 20.
func validTaxID(taxID string) bool {
	if len(taxID) != 11 {
		return false
	}
	for _, r := range taxID {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	switch taxID[:2] {
	case "10", "15", "17", "20":
		return true
	default:
		return false
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customerID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Customer{}, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *customer, nil
}

func (s *Service) UpdateCredit(ctx context.Context, req domain.UpdateCreditRequest) (domain.Customer, error) {
	customerID, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.Customer{}, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.CreditEnabled != nil {
		customer.CreditEnabled = *req.CreditEnabled
	}
	if req.CreditLimitPEN != nil {
		customer.CreditLimitPEN = *req.CreditLimitPEN
	}
	if req.CreditLimitUSD != nil {
		customer.CreditLimitUSD = *req.CreditLimitUSD
	}
	customer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Name:        strings.TrimSpace(req.Name),
		TaxID:       strings.TrimSpace(req.TaxID),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
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
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{
		Customers: customers,
		PageInfo:  *pageInfo,
	}, nil
}

// CreditSnapshot reads the customer's current credit position. Called at
// document submission, never from cached page state.
func (s *Service) CreditSnapshot(ctx context.Context, customerID snowflake.ID) (credit.Snapshot, error) {
	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return credit.Snapshot{}, err
	}
	if customer == nil {
		return credit.Snapshot{}, domain.ErrNotFound
	}

	return credit.Snapshot{
		Enabled: customer.CreditEnabled,
		ByCurrency: map[pricing.Currency]credit.State{
			pricing.CurrencyPEN: {
				Limit:   customer.CreditLimitPEN,
				Used:    customer.CreditUsedPEN,
				Enabled: customer.CreditEnabled,
			},
			pricing.CurrencyUSD: {
				Limit:   customer.CreditLimitUSD,
				Used:    customer.CreditUsedUSD,
				Enabled: customer.CreditEnabled,
			},
		},
	}, nil
}
