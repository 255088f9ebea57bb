// internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig indicates a required configuration value is absent.
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config is the root of all runtime configuration, populated from the
// environment (and a .env file during local development).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Asynq    AsynqConfig
	AWS      AWSConfig
	Stock    StockConfig
	Security SecurityConfig
	Server   ServerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text
	Debug       bool
}

type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	EnableQueryLogging bool
	MigrationPath      string
}

type RedisConfig struct {
	Host            string
	Port            string
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	MaxConnAge      time.Duration
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	TTL             time.Duration
}

type AsynqConfig struct {
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	Concurrency          int
	Queues               map[string]int // queue name -> priority
	StrictPriority       bool
	RetryMax             int
	ShutdownTimeout      time.Duration
	HealthCheckInterval  time.Duration
	DelayedTaskCheckTime time.Duration
}

type AWSConfig struct {
	Region            string
	SecretName        string
	UseSecretsManager bool
}

// StockConfig tunes the low stock monitoring worker.
type StockConfig struct {
	LowStockThreshold int
	AlertTTL          time.Duration
}

type SecurityConfig struct {
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	TrustedProxies    []string
	SecureHeaders     bool
	RequestIDHeader   string
}

type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GracefulTimeout   time.Duration
	EnablePprof       bool
	EnableHealthCheck bool
	TLSEnabled        bool
	TLSCertFile       string
	TLSKeyFile        string
}

// Load reads configuration from the environment and validates it.
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetTypeByDefaultValue(true)
	viper.SetDefault("app.name", "chainstore-api")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	cfg := &Config{
		App:      loadApp(env),
		Database: loadDatabase(env),
		Redis:    loadRedis(),
		Asynq:    loadAsynq(),
		AWS:      loadAWS(env),
		Stock:    loadStock(),
		Security: loadSecurity(env),
		Server:   loadServer(env),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadApp(env string) AppConfig {
	return AppConfig{
		Name:        envString("APP_NAME", "chainstore-api"),
		Environment: env,
		Version:     envString("APP_VERSION", "dev"),
		LogLevel:    envString("LOG_LEVEL", "debug"),
		LogFormat:   envString("LOG_FORMAT", "json"),
		Debug:       envBool("APP_DEBUG", env == "development"),
	}
}

func loadDatabase(env string) DatabaseConfig {
	return DatabaseConfig{
		Host:               envString("DB_HOST", "localhost"),
		Port:               envString("DB_PORT", "5432"),
		User:               envString("DB_USER", "chainstore"),
		Password:           envString("DB_PASSWORD", "chainstore_dev_2026"),
		Name:               envString("DB_NAME", "chainstore"),
		SSLMode:            envString("DB_SSL_MODE", "disable"),
		MaxConnections:     int32(envInt("DB_MAX_CONNECTIONS", 25)),
		MinConnections:     int32(envInt("DB_MIN_CONNECTIONS", 5)),
		MaxConnLifetime:    envDuration("DB_CONNECTION_LIFETIME", time.Hour),
		MaxConnIdleTime:    envDuration("DB_IDLE_TIME", 30*time.Minute),
		HealthCheckPeriod:  envDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		ConnectTimeout:     envDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		EnableQueryLogging: envBool("DB_QUERY_LOGGING", env == "development"),
		MigrationPath:      envString("DB_MIGRATION_PATH", "migrations"),
	}
}

func loadRedis() RedisConfig {
	return RedisConfig{
		Host:            envString("REDIS_HOST", "localhost"),
		Port:            envString("REDIS_PORT", "6379"),
		Password:        envString("REDIS_PASSWORD", ""),
		DB:              envInt("REDIS_DB", 0),
		MaxRetries:      envInt("REDIS_MAX_RETRIES", 3),
		MinRetryBackoff: envDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
		MaxRetryBackoff: envDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
		DialTimeout:     envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:     envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout:    envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		PoolSize:        envInt("REDIS_POOL_SIZE", 10),
		MinIdleConns:    envInt("REDIS_MIN_IDLE_CONNS", 2),
		MaxConnAge:      envDuration("REDIS_MAX_CONN_AGE", 0),
		PoolTimeout:     envDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
		IdleTimeout:     envDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		TTL:             envDuration("REDIS_TTL", time.Hour),
	}
}

func loadAsynq() AsynqConfig {
	return AsynqConfig{
		RedisAddr:            envString("REDIS_HOST", "localhost") + ":" + envString("REDIS_PORT", "6379"),
		RedisPassword:        envString("REDIS_PASSWORD", ""),
		RedisDB:              envInt("ASYNQ_REDIS_DB", 0),
		Concurrency:          envInt("ASYNQ_CONCURRENCY", 10),
		Queues:               parseQueues(envString("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
		StrictPriority:       envBool("ASYNQ_STRICT_PRIORITY", false),
		RetryMax:             envInt("ASYNQ_RETRY_MAX", 3),
		ShutdownTimeout:      envDuration("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthCheckInterval:  envDuration("ASYNQ_HEALTH_CHECK_INTERVAL", 30*time.Second),
		DelayedTaskCheckTime: envDuration("ASYNQ_DELAYED_TASK_CHECK", 5*time.Second),
	}
}

func loadAWS(env string) AWSConfig {
	return AWSConfig{
		Region:            envString("AWS_REGION", "us-east-1"),
		SecretName:        envString("AWS_SECRET_NAME", "chainstore/backend"),
		UseSecretsManager: envBool("AWS_USE_SECRETS_MANAGER", env == "production"),
	}
}

func loadStock() StockConfig {
	return StockConfig{
		LowStockThreshold: envInt("STOCK_LOW_THRESHOLD", 5),
		AlertTTL:          envDuration("STOCK_ALERT_TTL", 24*time.Hour),
	}
}

func loadSecurity(env string) SecurityConfig {
	return SecurityConfig{
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitDuration: envDuration("RATE_LIMIT_DURATION", time.Minute),
		AllowedOrigins:    envSlice("ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:    envSlice("TRUSTED_PROXIES", []string{}),
		SecureHeaders:     envBool("SECURE_HEADERS", env == "production"),
		RequestIDHeader:   envString("REQUEST_ID_HEADER", "X-Request-ID"),
	}
}

func loadServer(env string) ServerConfig {
	return ServerConfig{
		Host:              envString("SERVER_HOST", "0.0.0.0"),
		Port:              envString("SERVER_PORT", "8080"),
		ReadTimeout:       envDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      envDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       envDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("SERVER_MAX_HEADER_BYTES", 1<<20),
		GracefulTimeout:   envDuration("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		EnablePprof:       envBool("ENABLE_PPROF", env == "development"),
		EnableHealthCheck: envBool("ENABLE_HEALTH_CHECK", true),
		TLSEnabled:        envBool("TLS_ENABLED", false),
		TLSCertFile:       envString("TLS_CERT_FILE", ""),
		TLSKeyFile:        envString("TLS_KEY_FILE", ""),
	}
}

// Validate runs the basic checks everywhere, plus the stricter
// production and security validators when the environment calls for it.
func (c *Config) Validate() error {
	validators := []Validator{&BasicValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{}, &SecurityValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabaseURL formats the PostgreSQL connection string.
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress formats the HTTP listen address.
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSlice(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}

// parseQueues reads "name:priority" pairs, e.g. "critical:6,default:3".
func parseQueues(spec string) map[string]int {
	queues := make(map[string]int)
	for _, pair := range strings.Split(spec, ",") {
		name, prio, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		if p, err := strconv.Atoi(strings.TrimSpace(prio)); err == nil {
			queues[strings.TrimSpace(name)] = p
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}
