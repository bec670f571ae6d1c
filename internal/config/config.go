package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	API              APIHTTPConfig           `env:",prefix=API_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Order            OrderConfig             `env:",prefix=ORDER_"`
	Digest           DigestConfig            `env:",prefix=DIGEST_"`
	DefaultLanguage  string                  `env:"DEFAULT_LANGUAGE,default=en"`
	ShopConfigPath   string                  `env:"SHOP_CONFIG_PATH"`
}

type TelegramConfig struct {
	BotToken         string        `env:"BOT_TOKEN,required"`
	Timeout          time.Duration `env:"TIMEOUT,default=30s"`
	OperatorID       int64         `env:"OPERATOR_ID,required"`
	AdminIDs         []int64       `env:"ADMIN_IDS"`
	OperatorLanguage string        `env:"OPERATOR_LANGUAGE,default=ru"`
}

type OrderConfig struct {
	// FallbackItemPrice is charged for free-text items that are not bound to a catalog product.
	FallbackItemPrice int64 `env:"FALLBACK_ITEM_PRICE,default=250"`
}

type DigestConfig struct {
	Enabled  bool   `env:"ENABLED,default=true"`
	Schedule string `env:"SCHEDULE,default=0 21 * * *"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type APIHTTPConfig struct {
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           uint16        `env:"PORT,default=5000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=1m"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,default=*"`
}

func (a APIHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string `env:"PATH,default=./data/spirit.db?_busy_timeout=5000"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS,default=1"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS,default=1"`
	MaxLifetime  string `env:"MAX_LIFETIME,default=5m"`
}
