package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds every setting the API and worker binaries read from the environment.
type Config struct {
	Port      string `envconfig:"APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	RabbitMQ   RabbitMQConfig   `envconfig:"RABBITMQ"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Storage    StorageConfig    `envconfig:"STORAGE"`
	Checkout   CheckoutConfig   `envconfig:"CHECKOUT"`
	Shop       ShopConfig       `envconfig:"SHOP"`
	BulkUpload BulkUploadConfig `envconfig:"BULK_UPLOAD"`
}

type RabbitMQConfig struct {
	URL               string `envconfig:"URL"`
	PrefetchCount     int    `envconfig:"PREFETCH_COUNT" default:"10"`
	NotificationQueue string `envconfig:"NOTIFICATION_QUEUE" default:"storefront.notifications"`
	BulkUploadQueue   string `envconfig:"BULK_UPLOAD_QUEUE" default:"storefront.process-bulk-upload"`
	OrderEventQueue   string `envconfig:"ORDER_EVENT_QUEUE" default:"storefront.order-events"`
}

type ClickHouseConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"9000"`
	Database string `envconfig:"DATABASE" default:"storefront"`
	Username string `envconfig:"USERNAME" default:"default"`
	Password string `envconfig:"PASSWORD"`
}

type StorageConfig struct {
	Dir       string `envconfig:"DIR" default:"./data/uploads"`
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080/uploads"`
}

type CheckoutConfig struct {
	BaseURL    string `envconfig:"BASE_URL" default:"https://checkout.sandbox.local"`
	SuccessURL string `envconfig:"SUCCESS_URL" default:"http://localhost:5173/payment-success"`
	CancelURL  string `envconfig:"CANCEL_URL" default:"http://localhost:5173/cart"`
}

// ShopConfig carries the storefront's pricing knobs.
type ShopConfig struct {
	Currency              string          `envconfig:"CURRENCY" default:"KRW"`
	FreeShippingThreshold decimal.Decimal `envconfig:"FREE_SHIPPING_THRESHOLD" default:"50000"`
	ShippingFee           decimal.Decimal `envconfig:"SHIPPING_FEE" default:"3000"`
	LowStockThreshold     int             `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
}

// BulkUploadConfig bounds how long a claimed upload may stay in processing
// before the worker gives up on it.
type BulkUploadConfig struct {
	StaleAfter    time.Duration `envconfig:"STALE_AFTER" default:"15m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
}

// Load reads an optional .env file and decodes the environment into a Config.
// A missing .env file is not an error; the process environment is used as-is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig tags cannot express.
func (c *Config) Validate() error {
	if c.ClickHouse.Host != "" && c.ClickHouse.Database == "" {
		return errors.New("CLICKHOUSE_DATABASE is required when CLICKHOUSE_HOST is set")
	}
	if c.RabbitMQ.URL != "" && c.RabbitMQ.PrefetchCount <= 0 {
		return errors.New("RABBITMQ_PREFETCH_COUNT must be greater than 0")
	}
	if c.Shop.ShippingFee.IsNegative() || c.Shop.FreeShippingThreshold.IsNegative() {
		return errors.New("shipping fee and free shipping threshold must not be negative")
	}
	if c.Shop.LowStockThreshold <= 0 {
		return errors.New("LOW_STOCK_THRESHOLD must be greater than 0")
	}
	if c.BulkUpload.StaleAfter <= 0 || c.BulkUpload.SweepInterval <= 0 {
		return errors.New("BULK_UPLOAD_STALE_AFTER and BULK_UPLOAD_SWEEP_INTERVAL must be positive")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	return nil
}
