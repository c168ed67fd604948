package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sarpras/pkg/client"
	"sarpras/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration
	MongoTransactions bool

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockBackend       string
	LockTTL           time.Duration
	LockWaitTimeout   time.Duration
	LockRetryInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaEnabled              bool
	ReservationEventsTopic    string
	ReservationEventsDLQTopic string
	NotifierGroupID           string

	DefaultPhoneRegion string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		MongoTransactions: getEnvBool(EnvMongoTransactions, DefaultMongoTransactions),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockBackend:       strings.ToLower(getEnvStr(EnvLockBackend, DefaultLockBackend)),
		LockTTL:           getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockWaitTimeout:   getEnvDuration(EnvLockWaitTimeout, DefaultLockWaitTimeout),
		LockRetryInterval: getEnvDuration(EnvLockRetryInterval, DefaultLockRetryInterval),

		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		KafkaEnabled:              getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		ReservationEventsTopic:    getEnvStr(EnvReservationEventsTopic, DefaultReservationEventsTopic),
		ReservationEventsDLQTopic: getEnvStr(EnvReservationEventsDLQTopic, DefaultReservationEventsDLQTopic),
		NotifierGroupID:           getEnvStr(EnvNotifierGroupID, DefaultNotifierGroupID),

		DefaultPhoneRegion: strings.ToUpper(getEnvStr(EnvDefaultPhoneRegion, DefaultPhoneRegion)),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, DefaultLogFormat),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// UsesRedis reports whether any component of the service needs a Redis connection.
func (cfg *Config) UsesRedis() bool {
	return cfg.LockBackend == LockBackendRedis
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positive := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
		{"LockWaitTimeout", cfg.LockWaitTimeout},
		{"LockRetryInterval", cfg.LockRetryInterval},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", p.name, p.value))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	switch cfg.LockBackend {
	case LockBackendMongo:
	case LockBackendRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [%s %s], got: %s", LockBackendMongo, LockBackendRedis, cfg.LockBackend))
	}
	if cfg.LockRetryInterval >= cfg.LockWaitTimeout && cfg.LockWaitTimeout > 0 {
		errors = append(errors, fmt.Sprintf("LockRetryInterval (%s) must be shorter than LockWaitTimeout (%s)", cfg.LockRetryInterval, cfg.LockWaitTimeout))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.KafkaEnabled {
		if cfg.ReservationEventsTopic == "" {
			errors = append(errors, "ReservationEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.ReservationEventsDLQTopic == cfg.ReservationEventsTopic {
			errors = append(errors, "ReservationEventsDLQTopic must differ from ReservationEventsTopic")
		}
	}

	if !regexp.MustCompile(`^[A-Z]{2}$`).MatchString(cfg.DefaultPhoneRegion) {
		errors = append(errors, fmt.Sprintf("DefaultPhoneRegion must be a two-letter region code, got: %s", cfg.DefaultPhoneRegion))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"mongo_transactions", cfg.MongoTransactions,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"lock_wait_timeout", cfg.LockWaitTimeout,
		"lock_retry_interval", cfg.LockRetryInterval,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"redis_db", cfg.RedisDB,
		"kafka_enabled", cfg.KafkaEnabled,
		"reservation_events_topic", cfg.ReservationEventsTopic,
		"reservation_events_dlq_topic", cfg.ReservationEventsDLQTopic,
		"notifier_group_id", cfg.NotifierGroupID,
		"default_phone_region", cfg.DefaultPhoneRegion,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
