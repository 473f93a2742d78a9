package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/quipuerp/quipu/internal/pricing"
	productdomain "github.com/quipuerp/quipu/internal/product/domain"
	"github.com/quipuerp/quipu/internal/quote/domain"
	"github.com/quipuerp/quipu/pkg/sessionctx"
	"github.com/shopspring/decimal"
)

type lineMeta struct {
	productID *snowflake.ID
	code      string
	name      string
	unit      string
}

// buildLines runs the user's line inputs through the pricing engine under
// the document type's mode and returns both the computed document and the
// persistable lines. Catalog lines pull code, name, unit and base price from
// the product; free-text lines spell them out.
func (s *Service) buildLines(
	ctx context.Context,
	docType domain.DocType,
	currency pricing.Currency,
	taxCode pricing.TaxCode,
	inputs []domain.LineInput,
) (*pricing.Document, []domain.Line, error) {
	calc := pricing.NewDocument(domain.ModeFor(docType))

	if currency == "" {
		currency = pricing.CurrencyPEN
	}
	s.engine.SetCurrency(calc, currency, s.rateFor(ctx, currency))
	if taxCode == "" {
		taxCode = pricing.TaxCodeStandard
	}
	s.engine.SetTaxCode(calc, taxCode)

	metas := make([]lineMeta, 0, len(inputs))
	for _, input := range inputs {
		item := pricing.LineItem{
			Quantity: pricing.ParseAmount(input.Quantity),
		}
		var meta lineMeta

		if input.ProductID != "" {
			product, err := s.products.GetByID(ctx, input.ProductID)
			if err != nil {
				if err == productdomain.ErrNotFound || err == productdomain.ErrInvalidID {
					return nil, nil, pricing.ErrMissingLineReference
				}
				return nil, nil, err
			}
			productID := product.ID
			item.ProductID = &productID
			item.BasePrice = product.ListPrice
			item.SalePrice = product.ListPrice
			meta = lineMeta{
				productID: &productID,
				code:      product.Code,
				name:      product.Name,
				unit:      string(product.Unit),
			}
		} else {
			item.Code = input.Code
			item.Name = input.Name
			item.Unit = input.Unit
			if item.Unit == "" {
				item.Unit = string(productdomain.UnitPiece)
			}
			item.BasePrice = pricing.ParseAmount(input.BasePrice)
			item.SalePrice = item.BasePrice
			meta = lineMeta{code: item.Code, name: item.Name, unit: item.Unit}
		}

		if err := s.engine.AddLine(calc, item); err != nil {
			return nil, nil, err
		}
		idx := len(calc.Lines) - 1

		// Sale price and discount are co-derived; whichever the user sent
		// last wins and fills the other.
		if input.SalePrice != nil {
			if err := s.engine.SetSalePrice(calc, idx, pricing.ParseAmount(*input.SalePrice)); err != nil {
				return nil, nil, err
			}
		} else if input.DiscountPercent != nil {
			if err := s.engine.SetDiscountPercent(calc, idx, pricing.ParseAmount(*input.DiscountPercent)); err != nil {
				return nil, nil, err
			}
		}
		metas = append(metas, meta)
	}

	lines := make([]domain.Line, 0, len(calc.Lines))
	for i, item := range calc.Lines {
		meta := metas[i]
		lines = append(lines, domain.Line{
			Position:        i,
			ProductID:       meta.productID,
			Code:            meta.code,
			Name:            meta.name,
			Unit:            meta.unit,
			Quantity:        item.Quantity,
			BasePrice:       item.BasePrice,
			SalePrice:       item.SalePrice,
			DiscountPercent: item.DiscountPercent,
		})
	}
	return calc, lines, nil
}

// rateFor resolves today's exchange rate for foreign-currency documents.
// Without an exchange service the engine falls back to its default rate.
func (s *Service) rateFor(ctx context.Context, currency pricing.Currency) decimal.Decimal {
	if currency != pricing.CurrencyUSD || s.exchange == nil {
		return decimal.Decimal{}
	}
	return s.exchange.RateForDate(ctx, time.Now().UTC().Format("2006-01-02")).Value
}

func (s *Service) assignLineIDs(docID snowflake.ID, lines []domain.Line) []domain.Line {
	for i := range lines {
		lines[i].ID = s.genID.Generate()
		lines[i].DocumentID = docID
	}
	return lines
}

func copyLines(lines []domain.Line) []domain.Line {
	out := make([]domain.Line, len(lines))
	copy(out, lines)
	return out
}

func createdBy(ctx context.Context) snowflake.ID {
	userID, _ := sessionctx.UserIDFromContext(ctx)
	return userID
}
