package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quipuerp/quipu/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("exchange",
	fx.Provide(NewService),
)

// Rate is the PEN/USD exchange rate for one date.
type Rate struct {
	Value decimal.Decimal `json:"value"`
	Date  string          `json:"date"`
	// Fallback marks a rate that did not come from the provider.
	Fallback bool `json:"fallback"`
}

// apiResponse mirrors the provider payload. Providers disagree on the field
// name for the rate; any of the three is accepted.
type apiResponse struct {
	Data struct {
		Venta      *float64 `json:"venta"`
		Compra     *float64 `json:"compra"`
		TipoCambio *float64 `json:"tipo_cambio"`
		Fecha      string   `json:"fecha"`
	} `json:"data"`
}

type Service struct {
	client *http.Client
	cache  *redis.Client
	url    string
	rates  *config.RatesHolder
	log    *zap.Logger
}

type Params struct {
	fx.In

	Config config.Config
	Rates  *config.RatesHolder
	Cache  *redis.Client `optional:"true"`
	Log    *zap.Logger
}

func NewService(p Params) *Service {
	return &Service{
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  p.Cache,
		url:    p.Config.ExchangeAPIURL,
		rates:  p.Rates,
		log:    p.Log.Named("exchange.service"),
	}
}

// NewServiceForTest builds a service against a custom endpoint without cache.
func NewServiceForTest(url string, rates *config.RatesHolder, log *zap.Logger) *Service {
	return &Service{
		client: &http.Client{Timeout: 5 * time.Second},
		url:    url,
		rates:  rates,
		log:    log,
	}
}

// RateForDate returns the sale rate for the date (YYYY-MM-DD), consulting
// the cache first. Provider failures and payloads without any numeric field
// fail over to the configured fallback rate; the caller always gets a rate.
func (s *Service) RateForDate(ctx context.Context, date string) Rate {
	if cached, ok := s.fromCache(ctx, date); ok {
		return cached
	}

	rate, err := s.fetch(ctx, date)
	if err != nil {
		fallback := s.fallback(date)
		s.log.Warn("exchange fetch failed, using fallback rate",
			zap.String("date", date),
			zap.String("rate", fallback.Value.String()),
			zap.Error(err),
		)
		return fallback
	}

	s.store(ctx, date, rate)
	return rate
}

func (s *Service) fetch(ctx context.Context, date string) (Rate, error) {
	url := fmt.Sprintf("%s?date=%s", s.url, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Rate{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Rate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("exchange provider returned %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rate{}, err
	}

	value, ok := pickRate(payload)
	if !ok {
		return Rate{}, errors.New("exchange payload carries no numeric rate")
	}

	day := payload.Data.Fecha
	if day == "" {
		day = date
	}
	return Rate{Value: value, Date: day}, nil
}

// pickRate prefers venta, then compra, then tipo_cambio.
func pickRate(payload apiResponse) (decimal.Decimal, bool) {
	for _, candidate := range []*float64{payload.Data.Venta, payload.Data.Compra, payload.Data.TipoCambio} {
		if candidate != nil && *candidate > 0 {
			return decimal.NewFromFloat(*candidate), true
		}
	}
	return decimal.Decimal{}, false
}

func (s *Service) fallback(date string) Rate {
	return Rate{
		Value:    decimal.NewFromFloat(s.rates.Get().FallbackExchange),
		Date:     date,
		Fallback: true,
	}
}

func cacheKey(date string) string {
	return "exchange:pen-usd:" + date
}

func (s *Service) fromCache(ctx context.Context, date string) (Rate, bool) {
	if s.cache == nil {
		return Rate{}, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(date)).Result()
	if err != nil {
		return Rate{}, false
	}
	var rate Rate
	if err := json.Unmarshal([]byte(raw), &rate); err != nil {
		return Rate{}, false
	}
	return rate, true
}

func (s *Service) store(ctx context.Context, date string, rate Rate) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rate)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(date), raw, 24*time.Hour).Err(); err != nil {
		s.log.Warn("exchange cache write failed", zap.Error(err))
	}
}
