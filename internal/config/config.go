package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Predictor  PredictorConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	History    HistoryConfig
	DB         DBConfig
	S3         S3Config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProviderConfig holds settings for a single text generation provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	Endpoint     string `mapstructure:"endpoint"`
}

// LLMConfig holds text generation settings with ordered provider fallback.
type LLMConfig struct {
	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order.
func (l *LLMConfig) Providers() []*ProviderConfig {
	var out []*ProviderConfig
	for _, p := range []*ProviderConfig{&l.Primary, &l.Secondary, &l.Tertiary} {
		if p.Provider != "" && p.APIKey != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractionConfig holds feature extraction retry settings.
type ExtractionConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	RepairJSON bool          `mapstructure:"repair_json"`
}

// PredictorConfig selects and locates the price model.
type PredictorConfig struct {
	Kind         string `mapstructure:"kind"`
	ArtifactPath string `mapstructure:"artifact_path"`
	Endpoint     string `mapstructure:"endpoint"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// RateLimitConfig holds the process-wide daily request budget.
type RateLimitConfig struct {
	PerDay int `mapstructure:"per_day"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// HistoryConfig toggles persistence of served estimates.
type HistoryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DBConfig holds history database connection settings.
type DBConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MigrateURL returns the database URL in the form golang-migrate expects.
func (d *DBConfig) MigrateURL() string {
	if d.Driver == "sqlite" {
		return "sqlite://" + d.Path
	}
	return d.DSN()
}

// S3Config holds object storage settings used to fetch model artifacts.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// legacyEnv maps environment variable names used by earlier deployments onto config keys.
// They apply only when the prefixed variable is not set.
var legacyEnv = map[string]string{
	"llm.primary.api_key":       "GEMINI_API_KEY",
	"llm.primary.default_model": "GEMINI_MODEL_NAME",
	"rate_limit.per_day":        "RATE_LIMIT_PER_DAY",
	"extraction.max_retries":    "LLM_MAX_RETRIES",
}

// Load reads configuration from a .env file (if present) and environment variables
// with the AUTOPRICE_ prefix.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("AUTOPRICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// LLM defaults
	v.SetDefault("llm.primary.provider", "gemini")
	v.SetDefault("llm.primary.api_key", "")
	v.SetDefault("llm.primary.default_model", "gemini-2.5-flash")
	v.SetDefault("llm.primary.timeout_secs", 60)
	v.SetDefault("llm.primary.endpoint", "")
	v.SetDefault("llm.secondary.provider", "")
	v.SetDefault("llm.secondary.api_key", "")
	v.SetDefault("llm.secondary.default_model", "")
	v.SetDefault("llm.secondary.timeout_secs", 60)
	v.SetDefault("llm.secondary.endpoint", "")
	v.SetDefault("llm.tertiary.provider", "")
	v.SetDefault("llm.tertiary.api_key", "")
	v.SetDefault("llm.tertiary.default_model", "")
	v.SetDefault("llm.tertiary.timeout_secs", 60)
	v.SetDefault("llm.tertiary.endpoint", "")

	// Extraction defaults
	v.SetDefault("extraction.max_retries", 3)
	v.SetDefault("extraction.retry_delay", "0s")
	v.SetDefault("extraction.repair_json", false)

	// Predictor defaults
	v.SetDefault("predictor.kind", "linear")
	v.SetDefault("predictor.artifact_path", "models/price_linear_v0.json")
	v.SetDefault("predictor.endpoint", "")
	v.SetDefault("predictor.timeout_secs", 10)

	v.SetDefault("rate_limit.per_day", 30)
	v.SetDefault("cors.allowed_origins", "*")

	// History defaults
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.auto_migrate", true)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "autoprice.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "autoprice")
	v.SetDefault("db.password", "autoprice_secret")
	v.SetDefault("db.name", "autoprice_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "AUTOPRICE_SERVER_PORT",
		"server.read_timeout":           "AUTOPRICE_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "AUTOPRICE_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":       "AUTOPRICE_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":            "AUTOPRICE_SERVER_ENVIRONMENT",
		"log.level":                     "AUTOPRICE_LOG_LEVEL",
		"log.format":                    "AUTOPRICE_LOG_FORMAT",
		"llm.primary.provider":          "AUTOPRICE_LLM_PRIMARY_PROVIDER",
		"llm.primary.api_key":           "AUTOPRICE_LLM_PRIMARY_API_KEY",
		"llm.primary.default_model":     "AUTOPRICE_LLM_PRIMARY_DEFAULT_MODEL",
		"llm.primary.timeout_secs":      "AUTOPRICE_LLM_PRIMARY_TIMEOUT_SECS",
		"llm.primary.endpoint":          "AUTOPRICE_LLM_PRIMARY_ENDPOINT",
		"llm.secondary.provider":        "AUTOPRICE_LLM_SECONDARY_PROVIDER",
		"llm.secondary.api_key":         "AUTOPRICE_LLM_SECONDARY_API_KEY",
		"llm.secondary.default_model":   "AUTOPRICE_LLM_SECONDARY_DEFAULT_MODEL",
		"llm.secondary.timeout_secs":    "AUTOPRICE_LLM_SECONDARY_TIMEOUT_SECS",
		"llm.secondary.endpoint":        "AUTOPRICE_LLM_SECONDARY_ENDPOINT",
		"llm.tertiary.provider":         "AUTOPRICE_LLM_TERTIARY_PROVIDER",
		"llm.tertiary.api_key":          "AUTOPRICE_LLM_TERTIARY_API_KEY",
		"llm.tertiary.default_model":    "AUTOPRICE_LLM_TERTIARY_DEFAULT_MODEL",
		"llm.tertiary.timeout_secs":     "AUTOPRICE_LLM_TERTIARY_TIMEOUT_SECS",
		"llm.tertiary.endpoint":         "AUTOPRICE_LLM_TERTIARY_ENDPOINT",
		"extraction.max_retries":        "AUTOPRICE_EXTRACTION_MAX_RETRIES",
		"extraction.retry_delay":        "AUTOPRICE_EXTRACTION_RETRY_DELAY",
		"extraction.repair_json":        "AUTOPRICE_EXTRACTION_REPAIR_JSON",
		"predictor.kind":                "AUTOPRICE_PREDICTOR_KIND",
		"predictor.artifact_path":       "AUTOPRICE_PREDICTOR_ARTIFACT_PATH",
		"predictor.endpoint":            "AUTOPRICE_PREDICTOR_ENDPOINT",
		"predictor.timeout_secs":        "AUTOPRICE_PREDICTOR_TIMEOUT_SECS",
		"rate_limit.per_day":            "AUTOPRICE_RATE_LIMIT_PER_DAY",
		"cors.allowed_origins":          "AUTOPRICE_CORS_ALLOWED_ORIGINS",
		"history.enabled":               "AUTOPRICE_HISTORY_ENABLED",
		"history.auto_migrate":          "AUTOPRICE_HISTORY_AUTO_MIGRATE",
		"db.driver":                     "AUTOPRICE_DB_DRIVER",
		"db.path":                       "AUTOPRICE_DB_PATH",
		"db.host":                       "AUTOPRICE_DB_HOST",
		"db.port":                       "AUTOPRICE_DB_PORT",
		"db.user":                       "AUTOPRICE_DB_USER",
		"db.password":                   "AUTOPRICE_DB_PASSWORD",
		"db.name":                       "AUTOPRICE_DB_NAME",
		"db.sslmode":                    "AUTOPRICE_DB_SSLMODE",
		"db.max_open":                   "AUTOPRICE_DB_MAX_OPEN",
		"db.max_idle":                   "AUTOPRICE_DB_MAX_IDLE",
		"s3.region":                     "AUTOPRICE_S3_REGION",
		"s3.endpoint":                   "AUTOPRICE_S3_ENDPOINT",
		"s3.access_key":                 "AUTOPRICE_S3_ACCESS_KEY",
		"s3.secret_key":                 "AUTOPRICE_S3_SECRET_KEY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	for key, env := range legacyEnv {
		if os.Getenv(envBindings[key]) != "" {
			continue
		}
		if val := os.Getenv(env); val != "" {
			v.Set(key, val)
		}
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if AUTOPRICE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("AUTOPRICE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:            serverPort,
		ReadTimeout:     v.GetDuration("server.read_timeout"),
		WriteTimeout:    v.GetDuration("server.write_timeout"),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		Environment:     v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.LLM = LLMConfig{
		Primary:   providerConfig(v, "llm.primary"),
		Secondary: providerConfig(v, "llm.secondary"),
		Tertiary:  providerConfig(v, "llm.tertiary"),
	}
	cfg.Extraction = ExtractionConfig{
		MaxRetries: v.GetInt("extraction.max_retries"),
		RetryDelay: v.GetDuration("extraction.retry_delay"),
		RepairJSON: v.GetBool("extraction.repair_json"),
	}
	cfg.Predictor = PredictorConfig{
		Kind:         v.GetString("predictor.kind"),
		ArtifactPath: v.GetString("predictor.artifact_path"),
		Endpoint:     v.GetString("predictor.endpoint"),
		TimeoutSecs:  v.GetInt("predictor.timeout_secs"),
	}
	cfg.RateLimit = RateLimitConfig{
		PerDay: v.GetInt("rate_limit.per_day"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.History = HistoryConfig{
		Enabled:     v.GetBool("history.enabled"),
		AutoMigrate: v.GetBool("history.auto_migrate"),
	}
	cfg.DB = DBConfig{
		Driver:   v.GetString("db.driver"),
		Path:     v.GetString("db.path"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
	}
}

func (c *Config) validate() error {
	if c.Extraction.MaxRetries < 1 {
		return fmt.Errorf("extraction.max_retries must be at least 1, got %d", c.Extraction.MaxRetries)
	}
	if c.RateLimit.PerDay < 0 {
		return fmt.Errorf("rate_limit.per_day must not be negative, got %d", c.RateLimit.PerDay)
	}
	switch c.Predictor.Kind {
	case "linear":
		if c.Predictor.ArtifactPath == "" {
			return fmt.Errorf("predictor.artifact_path is required for the linear predictor")
		}
	case "remote":
		if c.Predictor.Endpoint == "" {
			return fmt.Errorf("predictor.endpoint is required for the remote predictor")
		}
	default:
		return fmt.Errorf("unknown predictor.kind: %s", c.Predictor.Kind)
	}
	if c.History.Enabled && c.DB.Driver != "sqlite" && c.DB.Driver != "postgres" {
		return fmt.Errorf("unknown db.driver: %s", c.DB.Driver)
	}
	return nil
}
