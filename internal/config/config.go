package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StoreMySQL    = "mysql"

	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config is the whole service configuration, read from the environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"payhook"`
	Env         string `env:"APP_ENV" envDefault:"local"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory"`
	LockDriver  string `env:"LOCK_DRIVER" envDefault:"memory"`

	HTTP   HTTPConfig   `envPrefix:"HTTP_"`
	Log    LogConfig    `envPrefix:"LOG_"`
	MySQL  MySQLConfig  `envPrefix:"MYSQL_"`
	Redis  RedisConfig  `envPrefix:"REDIS_"`
	Kafka  KafkaConfig  `envPrefix:"KAFKA_"`
	Payme  PaymeConfig  `envPrefix:"PAYME_"`
	Click  ClickConfig  `envPrefix:"CLICK_"`
	Paynet PaynetConfig `envPrefix:"PAYNET_"`
	Fiscal FiscalConfig `envPrefix:"FISCAL_"`

	DynamoDB DynamoDBConfig
}

type HTTPConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT"`
}

// DynamoDBConfig keeps the AWS variable names the SDK users already know.
type DynamoDBConfig struct {
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `env:"DYNAMODB_ENDPOINT"`
	Table           string `env:"DYNAMODB_TABLE" envDefault:"payment_transactions"`
}

type MySQLConfig struct {
	DSN             string        `env:"DSN"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RedisConfig struct {
	Addrs     []string      `env:"ADDRS" envSeparator:"," envDefault:"localhost:6379"`
	Password  string        `env:"PASSWORD"`
	DB        int           `env:"DB" envDefault:"0"`
	KeyPrefix string        `env:"KEY_PREFIX" envDefault:"payhook:"`
	LockTTL   time.Duration `env:"LOCK_TTL" envDefault:"10s"`
}

// KafkaConfig enables the entitlement event publisher when Brokers is set.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"payment.events"`
}

func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

type PaymeConfig struct {
	Login string `env:"LOGIN" envDefault:"Paycom"`
	Key   string `env:"KEY"`
}

func (c PaymeConfig) Enabled() bool { return c.Key != "" }

type ClickConfig struct {
	ServiceID string `env:"SERVICE_ID"`
	SecretKey string `env:"SECRET_KEY"`
}

func (c ClickConfig) Enabled() bool { return c.SecretKey != "" }

type PaynetConfig struct {
	Username  string `env:"USERNAME"`
	Password  string `env:"PASSWORD"`
	ServiceID string `env:"SERVICE_ID"`
	Location  string `env:"TIMEZONE" envDefault:"Asia/Tashkent"`
}

func (c PaynetConfig) Enabled() bool { return c.Username != "" && c.Password != "" }

// FiscalConfig describes the single receipt line attached to Payme checks.
// PlanTitles maps plan ids to receipt titles, e.g. "pro:Pro plan,basic:Basic plan".
type FiscalConfig struct {
	Code         string            `env:"CODE"`
	PackageCode  string            `env:"PACKAGE_CODE"`
	VATPercent   int               `env:"VAT_PERCENT" envDefault:"12"`
	DefaultTitle string            `env:"DEFAULT_TITLE" envDefault:"Subscription"`
	PlanTitles   map[string]string `env:"PLAN_TITLES" envSeparator:"," envKeyValSeparator:":"`
}

func (c FiscalConfig) Enabled() bool { return c.Code != "" }

// Load parses the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environ instead of the process environment when it is non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver selection and the settings each driver needs.
// Provider credentials are checked by the processors themselves.
func (c Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreMemory:
	case StoreDynamoDB:
		if c.DynamoDB.Table == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb store"))
		}
	case StoreMySQL:
		if c.MySQL.DSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is required for the mysql store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.LockDriver {
	case LockMemory:
	case LockRedis:
		if len(c.Redis.Addrs) == 0 {
			errs = append(errs, errors.New("REDIS_ADDRS is required for the redis lock"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOCK_DRIVER %q", c.LockDriver))
	}

	if !c.Payme.Enabled() && !c.Click.Enabled() && !c.Paynet.Enabled() {
		errs = append(errs, errors.New("no payment provider configured"))
	}

	return errors.Join(errs...)
}
