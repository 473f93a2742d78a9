package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/quipuerp/quipu/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRatesHolder(t *testing.T) *config.RatesHolder {
	t.Helper()
	holder, err := config.NewRatesHolder()
	require.NoError(t, err)
	return holder
}

func TestRateForDatePicksVenta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"venta":3.524,"compra":3.512,"fecha":"2026-08-28"}}`))
	}))
	defer srv.Close()

	svc := NewServiceForTest(srv.URL, newRatesHolder(t), zap.NewNop())
	rate := svc.RateForDate(context.Background(), "2026-08-28")

	assert.False(t, rate.Fallback)
	assert.True(t, rate.Value.Equal(decimal.NewFromFloat(3.524)), "rate=%s", rate.Value)
	assert.Equal(t, "2026-08-28", rate.Date)
}

func TestRateForDateFallsBackThroughFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"tipo_cambio":3.49,"fecha":"2026-08-28"}}`))
	}))
	defer srv.Close()

	svc := NewServiceForTest(srv.URL, newRatesHolder(t), zap.NewNop())
	rate := svc.RateForDate(context.Background(), "2026-08-28")

	assert.False(t, rate.Fallback)
	assert.True(t, rate.Value.Equal(decimal.NewFromFloat(3.49)))
}

func TestRateForDateNoNumericFieldUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"fecha":"2026-08-28"}}`))
	}))
	defer srv.Close()

	svc := NewServiceForTest(srv.URL, newRatesHolder(t), zap.NewNop())
	rate := svc.RateForDate(context.Background(), "2026-08-28")

	assert.True(t, rate.Fallback)
	assert.True(t, rate.Value.Equal(decimal.NewFromFloat(3.80)), "rate=%s", rate.Value)
}

func TestRateForDateProviderDownUsesFallback(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewServiceForTest(srv.URL, newRatesHolder(t), zap.NewNop())
	rate := svc.RateForDate(context.Background(), "2026-08-28")

	assert.True(t, rate.Fallback)
	assert.True(t, rate.Value.Equal(decimal.NewFromFloat(3.80)))
	assert.Equal(t, int32(1), calls.Load(), "no automatic retry")
}
