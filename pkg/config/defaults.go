package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sarpras"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	LockBackendMongo = "mongo"
	LockBackendRedis = "redis"

	DefaultLockBackend       = LockBackendMongo
	DefaultLockTTL           = 15 * time.Second
	DefaultLockWaitTimeout   = 3 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaEnabled              = false
	DefaultReservationEventsTopic    = "reservation-events"
	DefaultReservationEventsDLQTopic = "reservation-events-dlq"
	DefaultNotifierGroupID           = "reservation-notifier"

	DefaultPhoneRegion = "ID"
)
