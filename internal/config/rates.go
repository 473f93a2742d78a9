package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// TaxEntry is one row of the document tax table.
type TaxEntry struct {
	Code    string  `mapstructure:"code"`
	Percent float64 `mapstructure:"percent"`
}

// RatesConfig holds the tax table and the exchange-rate fallback. Values are
// fixed per deployment but operators can override them via rates.yml.
type RatesConfig struct {
	Taxes            []TaxEntry `mapstructure:"taxes"`
	FallbackExchange float64    `mapstructure:"fallbackExchange"`
}

func DefaultRatesConfig() RatesConfig {
	return RatesConfig{
		Taxes: []TaxEntry{
			{Code: "STANDARD", Percent: 18},
			{Code: "EXEMPT", Percent: 0},
			{Code: "NOT_SUBJECT", Percent: 0},
		},
		FallbackExchange: 3.80,
	}
}

type RatesHolder struct {
	current atomic.Value // holds RatesConfig
}

func NewRatesHolder() (*RatesHolder, error) {
	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/quipu/config") // Volume-mounted config
	v.AddConfigPath("/etc/quipu")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("QUIPU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRatesConfig()
	v.SetDefault("rates.taxes", defaults.Taxes)
	v.SetDefault("rates.fallbackExchange", defaults.FallbackExchange)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg RatesConfig
	if err := v.UnmarshalKey("rates", &cfg); err != nil {
		return nil, err
	}
	if err := validateRatesConfig(cfg); err != nil {
		return nil, err
	}

	holder := &RatesHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RatesConfig
		if err := v.UnmarshalKey("rates", &updated); err != nil {
			log.Printf("[rates-config] reload failed: %v", err)
			return
		}
		if err := validateRatesConfig(updated); err != nil {
			log.Printf("[rates-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[rates-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *RatesHolder) Get() RatesConfig {
	return h.current.Load().(RatesConfig)
}

func validateRatesConfig(cfg RatesConfig) error {
	if len(cfg.Taxes) == 0 {
		return errors.New("rates.taxes cannot be empty")
	}
	if cfg.FallbackExchange <= 0 {
		return errors.New("rates.fallbackExchange must be positive")
	}
	for _, tax := range cfg.Taxes {
		if strings.TrimSpace(tax.Code) == "" {
			return errors.New("rates.taxes entries need a code")
		}
		if tax.Percent < 0 {
			return errors.New("rates.taxes percent cannot be negative")
		}
	}
	return nil
}
