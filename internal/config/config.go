package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Shreyr69/indiport/internal/domain/pricing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string `mapstructure:"PORT"`   // サーバーポート（8080）
	GoEnv string `mapstructure:"GO_ENV"` // dev/prod

	DatabaseURL      string `mapstructure:"DATABASE_URL"` // あれば最優先
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     int    `mapstructure:"POSTGRES_PORT"`
	PostgresSSLMode  string `mapstructure:"POSTGRES_SSLMODE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret string `mapstructure:"JWT_SECRET"` // 認証基盤と共有する署名シークレット

	RazorpayKeyID       string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret   string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayAPIBase     string `mapstructure:"RAZORPAY_API_BASE"`
	RazorpayCheckoutURL string `mapstructure:"RAZORPAY_CHECKOUT_URL"`
	Currency            string `mapstructure:"CURRENCY"`

	//金額は文字列で受けて decimal にする
	FreeShippingThreshold string `mapstructure:"FREE_SHIPPING_THRESHOLD"`
	FreeShippingCap       string `mapstructure:"FREE_SHIPPING_CAP"`
	TaxRate               string `mapstructure:"TAX_RATE"`

	CheckoutSessionTTL  time.Duration `mapstructure:"CHECKOUT_SESSION_TTL"`
	PlaceOrderLockTTL   time.Duration `mapstructure:"PLACE_ORDER_LOCK_TTL"`
	DeliveryMethodCache time.Duration `mapstructure:"DELIVERY_METHOD_CACHE_TTL"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]interface{}{
	"PORT":                      "8080",
	"GO_ENV":                    "dev",
	"DATABASE_URL":              "",
	"POSTGRES_USER":             "postgres",
	"POSTGRES_PASSWORD":         "postgres",
	"POSTGRES_DB":               "indiport",
	"POSTGRES_HOST":             "localhost",
	"POSTGRES_PORT":             5432,
	"POSTGRES_SSLMODE":          "disable",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"JWT_SECRET":                "",
	"RAZORPAY_KEY_ID":           "",
	"RAZORPAY_KEY_SECRET":       "",
	"RAZORPAY_API_BASE":         "https://api.razorpay.com",
	"RAZORPAY_CHECKOUT_URL":     "https://checkout.razorpay.com/v1/checkout.js",
	"CURRENCY":                  "INR",
	"FREE_SHIPPING_THRESHOLD":   pricing.DefaultFreeShippingThreshold.String(),
	"FREE_SHIPPING_CAP":         pricing.DefaultFreeShippingCap.String(),
	"TAX_RATE":                  pricing.DefaultTaxRate.String(),
	"CHECKOUT_SESSION_TTL":      "30m",
	"PLACE_ORDER_LOCK_TTL":      "2m",
	"DELIVERY_METHOD_CACHE_TTL": "5m",
	"LOG_LEVEL":                 "info",
}

// Loadは環境変数から読む（.env は main で読み込み済み）
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RazorpayKeyID == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_ID is required")
	}
	if cfg.RazorpayKeySecret == "" {
		return Config{}, fmt.Errorf("RAZORPAY_KEY_SECRET is required")
	}
	if cfg.CheckoutSessionTTL <= 0 || cfg.PlaceOrderLockTTL <= 0 {
		return Config{}, fmt.Errorf("CHECKOUT_SESSION_TTL and PLACE_ORDER_LOCK_TTL must be positive")
	}
	if _, err := cfg.PricingPolicy(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// 送料・税の設定
func (c Config) PricingPolicy() (pricing.Policy, error) {
	threshold, err := parseDecimal("FREE_SHIPPING_THRESHOLD", c.FreeShippingThreshold)
	if err != nil {
		return pricing.Policy{}, err
	}
	capCost, err := parseDecimal("FREE_SHIPPING_CAP", c.FreeShippingCap)
	if err != nil {
		return pricing.Policy{}, err
	}
	rate, err := parseDecimal("TAX_RATE", c.TaxRate)
	if err != nil {
		return pricing.Policy{}, err
	}
	if rate.IsNegative() {
		return pricing.Policy{}, fmt.Errorf("TAX_RATE must not be negative")
	}
	return pricing.Policy{
		FreeShippingThreshold: threshold,
		FreeShippingCap:       capCost,
		TaxRate:               rate,
	}, nil
}

// DATABASE_URL が無ければ POSTGRES_* から組み立てる
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func parseDecimal(key, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s must be number: %w", key, err)
	}
	return d, nil
}
