package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	DB        DBConfig
	HTTP      HTTPConfig
	Portion   PortionConfig
	Directory DirectoryConfig
	Telegram  TelegramConfig
	Admin     AdminConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns a postgres URL accepted by both pgx and golang-migrate.
func (c DBConfig) DSN() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.Database + "?sslmode=" + c.SSLMode
}

type HTTPConfig struct {
	Addr           string
	JWTSecret      string
	TokenTTL       time.Duration
	LoginPerMinute int
	Production     bool
}

type PortionConfig struct {
	Default decimal.Decimal // used only when no value was stored yet
}

type DirectoryConfig struct {
	URL       string
	Token     string
	ItemsPath string // gjson path to the employee array; empty means the root
	CodeField string
	NameField string
	CacheTTL  time.Duration
	SyncSpec  string // cron spec, empty disables periodic sync
	Timeout   time.Duration
}

type TelegramConfig struct {
	Token       string
	AdminChatID int64
}

type AdminConfig struct {
	Code     string
	Password string
	FullName string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	loginPerMinute, _ := strconv.Atoi(getEnv("LOGIN_PER_MINUTE", "10"))
	chatID, _ := strconv.ParseInt(getEnv("TELEGRAM_ADMIN_CHAT_ID", "0"), 10, 64)

	portion, err := decimal.NewFromString(getEnv("COMPANY_PORTION", "0"))
	if err != nil {
		return nil, fmt.Errorf("COMPANY_PORTION: %w", err)
	}
	if portion.IsNegative() {
		return nil, fmt.Errorf("COMPANY_PORTION must be >= 0, got %s", portion)
	}
	portion = portion.Round(2)

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "meals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			JWTSecret:      getEnv("JWT_SECRET", ""),
			TokenTTL:       getDuration("TOKEN_TTL", 12*time.Hour),
			LoginPerMinute: loginPerMinute,
			Production:     strings.EqualFold(getEnv("APP_ENV", "development"), "production"),
		},
		Portion: PortionConfig{
			Default: portion,
		},
		Directory: DirectoryConfig{
			URL:       getEnv("DIRECTORY_URL", ""),
			Token:     getEnv("DIRECTORY_TOKEN", ""),
			ItemsPath: getEnv("DIRECTORY_ITEMS_PATH", ""),
			CodeField: getEnv("DIRECTORY_CODE_FIELD", "code"),
			NameField: getEnv("DIRECTORY_NAME_FIELD", "name"),
			CacheTTL:  getDuration("DIRECTORY_CACHE_TTL", 15*time.Minute),
			SyncSpec:  getEnv("DIRECTORY_SYNC_CRON", "@every 1h"),
			Timeout:   getDuration("DIRECTORY_TIMEOUT", 10*time.Second),
		},
		Telegram: TelegramConfig{
			Token:       getEnv("TELEGRAM_TOKEN", ""),
			AdminChatID: chatID,
		},
		Admin: AdminConfig{
			Code:     getEnv("ADMIN_CODE", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			FullName: getEnv("ADMIN_NAME", "Administrator"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
