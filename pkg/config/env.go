package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvMongoTransactions = "MONGO_TRANSACTIONS"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend       = "LOCK_BACKEND"
	EnvLockTTL           = "LOCK_TTL"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"
	EnvLockRetryInterval = "LOCK_RETRY_INTERVAL"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaEnabled              = "KAFKA_ENABLED"
	EnvReservationEventsTopic    = "RESERVATION_EVENTS_TOPIC"
	EnvReservationEventsDLQTopic = "RESERVATION_EVENTS_DLQ_TOPIC"
	EnvNotifierGroupID           = "NOTIFIER_GROUP_ID"

	EnvDefaultPhoneRegion = "DEFAULT_PHONE_REGION"
)
