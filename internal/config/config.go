package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Session   SessionConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Polling   PollingConfig
	Receipt   ReceiptConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	Debug    bool
	LogLevel string
}

// BackendConfig points at the TradeMate REST API the console fronts.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the sealed browser-session cookie.
type SessionConfig struct {
	CookieName string
	Key        string // 32-byte static key sealing the cookie
	Secure     bool
	IdleTTL    time.Duration
	TokenSkew  time.Duration
}

// DatabaseConfig configures the idempotency store. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// RedisConfig selects the shared terminal store; an empty URL keeps terminals in memory.
type RedisConfig struct {
	URL       string
	KeyPrefix string
	TTL       time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type PrinterConfig struct {
	Type      string
	SpoolDir  string
	CharWidth int
}

type PollingConfig struct {
	CatalogInterval   time.Duration
	DashboardInterval time.Duration
	IdleTimeout       time.Duration
}

// ReceiptConfig holds the static parts of a printed receipt.
type ReceiptConfig struct {
	Currency string
	Locale   string
	Symbol   string
	Footer   string
	Notice   string
}

// RegisterFlags declares the command-line flags that override file and environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", ".env", "path to the env/config file")
	fs.String("port", "", "HTTP port to listen on (overrides APP_PORT)")
	fs.String("backend-url", "", "TradeMate API base URL (overrides BACKEND_BASE_URL)")
}

// Load reads configuration from the config file, the environment, and bound flags.
// fs may be nil when no command line is available (tests).
func Load(fs *pflag.FlagSet) *Config {
	v := viper.New()

	configFile := ".env"
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			configFile = f.Value.String()
		}
		bindFlag(v, fs, "APP_PORT", "port")
		bindFlag(v, fs, "BACKEND_BASE_URL", "backend-url")
	}

	v.SetConfigFile(configFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: %s not found, using environment variables: %v", configFile, err)
	}

	setDefaults(v)

	return &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			Debug:    v.GetBool("APP_DEBUG"),
			LogLevel: v.GetString("APP_LOG_LEVEL"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Session: SessionConfig{
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
			Key:        v.GetString("SESSION_KEY"),
			Secure:     v.GetBool("SESSION_SECURE"),
			IdleTTL:    v.GetDuration("SESSION_IDLE_TTL"),
			TokenSkew:  v.GetDuration("SESSION_TOKEN_SKEW"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			Path:     v.GetString("DB_PATH"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
			Timezone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			URL:       v.GetString("REDIS_URL"),
			KeyPrefix: v.GetString("REDIS_KEY_PREFIX"),
			TTL:       v.GetDuration("REDIS_TERMINAL_TTL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: v.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Printer: PrinterConfig{
			Type:      v.GetString("PRINTER_TYPE"),
			SpoolDir:  v.GetString("PRINTER_SPOOL_DIR"),
			CharWidth: v.GetInt("PRINTER_CHAR_WIDTH"),
		},
		Polling: PollingConfig{
			CatalogInterval:   v.GetDuration("POLL_CATALOG_INTERVAL"),
			DashboardInterval: v.GetDuration("POLL_DASHBOARD_INTERVAL"),
			IdleTimeout:       v.GetDuration("POLL_IDLE_TIMEOUT"),
		},
		Receipt: ReceiptConfig{
			Currency: v.GetString("RECEIPT_CURRENCY"),
			Locale:   v.GetString("RECEIPT_LOCALE"),
			Symbol:   v.GetString("RECEIPT_SYMBOL"),
			Footer:   v.GetString("RECEIPT_FOOTER"),
			Notice:   v.GetString("RECEIPT_NOTICE"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "trademate-console")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("BACKEND_BASE_URL", "https://trademate-bn9u.onrender.com/api")
	v.SetDefault("BACKEND_TIMEOUT", 15*time.Second)
	v.SetDefault("SESSION_COOKIE_NAME", "tm_session")
	v.SetDefault("SESSION_KEY", "change-this-32-byte-session-key!")
	v.SetDefault("SESSION_SECURE", false)
	v.SetDefault("SESSION_IDLE_TTL", 12*time.Hour)
	v.SetDefault("SESSION_TOKEN_SKEW", 30*time.Second)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "console.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "trademate_console")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Africa/Lagos")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_KEY_PREFIX", "trademate:terminal:")
	v.SetDefault("REDIS_TERMINAL_TTL", 12*time.Hour)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:8080")
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	v.SetDefault("RATE_LIMIT_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_SPOOL_DIR", "./spool")
	v.SetDefault("PRINTER_CHAR_WIDTH", 48)
	v.SetDefault("POLL_CATALOG_INTERVAL", 20*time.Second)
	v.SetDefault("POLL_DASHBOARD_INTERVAL", 30*time.Second)
	v.SetDefault("POLL_IDLE_TIMEOUT", 10*time.Minute)
	v.SetDefault("RECEIPT_CURRENCY", "NGN")
	v.SetDefault("RECEIPT_LOCALE", "en-NG")
	v.SetDefault("RECEIPT_SYMBOL", "₦")
	v.SetDefault("RECEIPT_FOOTER", "Thanks for coming. We'll love to serve you again.")
	v.SetDefault("RECEIPT_NOTICE", "No refund after payment")
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	if err := v.BindPFlag(key, f); err != nil {
		log.Printf("Warning: failed to bind flag --%s: %v", name, err)
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
