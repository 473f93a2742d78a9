package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
)

type QuoteRenderer struct{}

// RenderQuote lays out the printable quote: header, customer block, line
// table and totals.
func (r *QuoteRenderer) RenderQuote(ctx context.Context, doc quotedomain.Document, customerName string) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Cotización "+doc.Number, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Cliente: "+customerName, props.Text{Top: 0}),
			text.New("Fecha: "+doc.CreatedAt.Format("02/01/2006"), props.Text{Top: 5}),
			text.New("Condición: "+string(doc.PaymentTerm), props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Moneda: "+string(doc.Currency), props.Text{Top: 0}),
			text.New("T.C.: "+doc.ExchangeRate.StringFixed(4), props.Text{Top: 5}),
		),
	)

	m.AddRow(8,
		text.NewCol(2, "Código", props.Text{Style: fontstyle.Bold}),
		text.NewCol(4, "Descripción", props.Text{Style: fontstyle.Bold}),
		text.NewCol(1, "Und", props.Text{Style: fontstyle.Bold}),
		text.NewCol(1, "Cant.", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "P. Unit.", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Importe", props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	for _, line := range doc.Lines {
		amount := line.Quantity.Mul(line.SalePrice)
		m.AddRows(row.New(6).Add(
			text.NewCol(2, line.Code),
			text.NewCol(4, line.Name),
			text.NewCol(1, line.Unit),
			text.NewCol(1, line.Quantity.StringFixed(2), props.Text{Align: align.Right}),
			text.NewCol(2, line.SalePrice.StringFixed(2), props.Text{Align: align.Right}),
			text.NewCol(2, amount.StringFixed(2), props.Text{Align: align.Right}),
		))
	}

	m.AddRow(6, col.New(12))
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Align: align.Right}),
		text.NewCol(2, doc.Subtotal.StringFixed(2), props.Text{Align: align.Right}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "IGV", props.Text{Align: align.Right}),
		text.NewCol(2, doc.Tax.StringFixed(2), props.Text{Align: align.Right}),
	)
	m.AddRow(6,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, doc.Total.StringFixed(2), props.Text{Style: fontstyle.Bold, Align: align.Right}),
	)

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render quote %s: %w", doc.Number, err)
	}
	return bytes.NewReader(rendered.GetBytes()), nil
}
