package pdf

import (
	quotedomain "github.com/quipuerp/quipu/internal/quote/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(func() quotedomain.Renderer { return New() }),
)

func New() *QuoteRenderer {
	return &QuoteRenderer{}
}
