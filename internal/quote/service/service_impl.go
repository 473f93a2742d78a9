package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/credit"
	customerdomain "github.com/quipuerp/quipu/internal/customer/domain"
	"github.com/quipuerp/quipu/internal/exchange"
	notificationdomain "github.com/quipuerp/quipu/internal/notification/domain"
	"github.com/quipuerp/quipu/internal/pricing"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	"github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Engine    *pricing.Engine
	Credit    *credit.Service
	Customers customerdomain.Service
	Products  productdomain.Service
	Exchange  *exchange.Service          `optional:"true"`
	Renderer  domain.Renderer            `optional:"true"`
	Notifier  notificationdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	engine    *pricing.Engine
	credit    *credit.Service
	customers customerdomain.Service
	products  productdomain.Service
	exchange  *exchange.Service
	renderer  domain.Renderer
	notifier  notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quote.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		engine:    p.Engine,
		credit:    p.Credit,
		customers: p.Customers,
		products:  p.Products,
		exchange:  p.Exchange,
		renderer:  p.Renderer,
		notifier:  p.Notifier,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.Document, error) {
	docType := req.DocType
	if docType == "" {
		docType = domain.DocTypeQuote
	}
	if docType != domain.DocTypeQuote && docType != domain.DocTypeOrder {
		return domain.Document{}, domain.ErrInvalidDocType
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if err == customerdomain.ErrNotFound || err == customerdomain.ErrInvalidID {
			return domain.Document{}, domain.ErrInvalidCustomer
		}
		return domain.Document{}, err
	}

	calc, lines, err := s.buildLines(ctx, docType, req.Currency, req.TaxCode, req.Lines)
	if err != nil {
		return domain.Document{}, err
	}

	now := time.Now().UTC()
	id := s.genID.Generate()
	doc := domain.Document{
		ID:           id,
		DocType:      docType,
		Number:       domain.NumberPrefix(docType) + "-" + strings.ToUpper(id.Base36()),
		CustomerID:   customer.ID,
		Currency:     calc.Currency,
		ExchangeRate: calc.ExchangeRate,
		TaxCode:      calc.TaxCode,
		PaymentTerm:  customer.PaymentTerm,
		Status:       domain.StatusDraft,
		ValidUntil:   req.ValidUntil,
		DeliveryDate: req.DeliveryDate,
		Notes:        strings.TrimSpace(req.Notes),
		Subtotal:     calc.Totals.Subtotal,
		Tax:          calc.Totals.Tax,
		Total:        calc.Totals.Total,
		CreatedBy:    createdBy(ctx),
		CreatedAt:    now,
		UpdatedAt:    now,
		Lines:        s.assignLineIDs(id, lines),
	}

	if err := s.repo.Insert(ctx, s.db, &doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Document, error) {
	docID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Document{}, domain.ErrInvalidID
	}

	doc, err := s.repo.FindByID(ctx, s.db, docID)
	if err != nil {
		return domain.Document{}, err
	}
	if doc == nil {
		return domain.Document{}, domain.ErrNotFound
	}
	return *doc, nil
}

// UpdateLines replaces the whole line set and persists the recomputed
// totals. Converted quotes reject any further edit.
func (s *Service) UpdateLines(ctx context.Context, req domain.UpdateLinesRequest) (domain.Document, error) {
	doc, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.Status == domain.StatusConverted {
		return domain.Document{}, domain.ErrQuoteConverted
	}
	if !doc.Editable() {
		return domain.Document{}, domain.ErrNotEditable
	}

	currency := doc.Currency
	if req.Currency != "" {
		currency = req.Currency
	}
	taxCode := doc.TaxCode
	if req.TaxCode != "" {
		taxCode = req.TaxCode
	}

	calc, lines, err := s.buildLines(ctx, doc.DocType, currency, taxCode, req.Lines)
	if err != nil {
		return domain.Document{}, err
	}

	doc.Currency = calc.Currency
	doc.ExchangeRate = calc.ExchangeRate
	doc.TaxCode = calc.TaxCode
	doc.Subtotal = calc.Totals.Subtotal
	doc.Tax = calc.Totals.Tax
	doc.Total = calc.Totals.Total
	doc.UpdatedAt = time.Now().UTC()
	doc.Lines = s.assignLineIDs(doc.ID, lines)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ReplaceLines(ctx, tx, doc.ID, doc.Lines); err != nil {
			return err
		}
		return s.repo.UpdateHeader(ctx, tx, &doc)
	})
	if err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// Submit freezes a draft. The credit snapshot is re-read here, never taken
// from page state, so a limit lowered after load still blocks the document.
func (s *Service) Submit(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, err
	}
	if doc.Status == domain.StatusConverted {
		return domain.Document{}, domain.ErrQuoteConverted
	}
	if doc.Status != domain.StatusDraft {
		return domain.Document{}, domain.ErrNotEditable
	}
	if len(doc.Lines) == 0 {
		return domain.Document{}, domain.ErrEmptyDocument
	}

	result, err := s.credit.Check(ctx, doc.CustomerID, doc.Currency, doc.Total, doc.PaymentTerm.IsCredit())
	if err != nil {
		return domain.Document{}, err
	}
	if !result.OK {
		return domain.Document{}, &domain.CreditExceededError{
			Available: result.Available,
			Requested: result.Requested,
		}
	}

	doc.Status = domain.StatusSubmitted
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateHeader(ctx, s.db, &doc); err != nil {
		return domain.Document{}, err
	}

	title := "Cotización enviada"
	route := "/cotizaciones"
	if doc.DocType == domain.DocTypeOrder {
		title = "Pedido enviado"
		route = "/pedidos"
	}
	s.notify(ctx, doc.CreatedBy, title, doc.Number, notificationdomain.KindSuccess, route)
	return doc, nil
}

// Convert creates the sales order for a submitted quote and terminates the
// quote. Totals are recomputed under the order's pricing mode, so the two
// documents can legitimately disagree on the subtotal.
func (s *Service) Convert(ctx context.Context, quoteID string) (domain.Document, error) {
	quote, err := s.GetByID(ctx, quoteID)
	if err != nil {
		return domain.Document{}, err
	}
	if quote.DocType != domain.DocTypeQuote {
		return domain.Document{}, domain.ErrNotAQuote
	}
	if quote.Status == domain.StatusConverted {
		return domain.Document{}, domain.ErrQuoteConverted
	}
	if quote.Status != domain.StatusSubmitted {
		return domain.Document{}, domain.ErrNotSubmitted
	}

	calc := pricing.NewDocument(domain.ModeFor(domain.DocTypeOrder))
	s.engine.SetCurrency(calc, quote.Currency, quote.ExchangeRate)
	s.engine.SetTaxCode(calc, quote.TaxCode)
	for _, line := range quote.Lines {
		item := pricing.LineItem{
			Quantity:        line.Quantity,
			BasePrice:       line.BasePrice,
			SalePrice:       line.SalePrice,
			DiscountPercent: line.DiscountPercent,
		}
		if line.ProductID != nil {
			item.ProductID = line.ProductID
		} else {
			item.Code = line.Code
			item.Name = line.Name
			item.Unit = line.Unit
		}
		if err := s.engine.AddLine(calc, item); err != nil {
			return domain.Document{}, err
		}
	}

	now := time.Now().UTC()
	orderID := s.genID.Generate()
	order := domain.Document{
		ID:            orderID,
		DocType:       domain.DocTypeOrder,
		Number:        domain.NumberPrefix(domain.DocTypeOrder) + "-" + strings.ToUpper(orderID.Base36()),
		CustomerID:    quote.CustomerID,
		Currency:      quote.Currency,
		ExchangeRate:  quote.ExchangeRate,
		TaxCode:       quote.TaxCode,
		PaymentTerm:   quote.PaymentTerm,
		Status:        domain.StatusDraft,
		DeliveryDate:  quote.DeliveryDate,
		Notes:         quote.Notes,
		SourceQuoteID: &quote.ID,
		Subtotal:      calc.Totals.Subtotal,
		Tax:           calc.Totals.Tax,
		Total:         calc.Totals.Total,
		CreatedBy:     createdBy(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
		Lines:         s.assignLineIDs(orderID, copyLines(quote.Lines)),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		quote.Status = domain.StatusConverted
		quote.UpdatedAt = now
		return s.repo.UpdateHeader(ctx, tx, &quote)
	})
	if err != nil {
		return domain.Document{}, err
	}

	s.log.Info("quote converted",
		zap.String("quote", quote.Number),
		zap.String("order", order.Number),
	)
	s.notify(ctx, quote.CreatedBy, "Pedido creado", order.Number+" desde "+quote.Number,
		notificationdomain.KindInfo, "/pedidos")
	return order, nil
}

// notify pushes a best-effort notification to the document owner. Failures
// are logged and swallowed; the document operation already committed.
func (s *Service) notify(ctx context.Context, userID snowflake.ID, title, message string, kind notificationdomain.Kind, route string) {
	if s.notifier == nil || userID == 0 {
		return
	}
	if _, err := s.notifier.Create(ctx, notificationdomain.CreateRequest{
		UserID:      userID,
		Title:       title,
		Message:     message,
		Kind:        kind,
		TargetRoute: &route,
	}); err != nil {
		s.log.Warn("notification create failed", zap.Error(err))
	}
}

func (s *Service) RenderPDF(ctx context.Context, id string) (io.Reader, error) {
	if s.renderer == nil {
		return nil, domain.ErrRenderUnavailable
	}

	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocType != domain.DocTypeQuote {
		return nil, domain.ErrNotAQuote
	}

	customer, err := s.customers.GetByID(ctx, doc.CustomerID.String())
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderQuote(ctx, doc, customer.Name)
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	filter := domain.ListFilter{
		DocType: req.DocType,
		Status:  req.Status,
	}
	if req.CustomerID != "" {
		customerID, err := snowflake.ParseString(req.CustomerID)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
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

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(doc *domain.Document) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        doc.ID.String(),
			CreatedAt: doc.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	docs := make([]domain.Document, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		docs = append(docs, *item)
	}
	return domain.ListResponse{Documents: docs, PageInfo: *pageInfo}, nil
}
