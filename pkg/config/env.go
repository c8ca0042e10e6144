package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret       = "JWT_SECRET"
	EnvAdminTokenTTL   = "ADMIN_TOKEN_TTL"
	EnvStudentTokenTTL = "STUDENT_TOKEN_TTL"

	EnvAutoCloseAt       = "AUTO_CLOSE_AT"
	EnvAutoCloseTimezone = "AUTO_CLOSE_TZ"

	EnvScanLockTTL    = "SCAN_LOCK_TTL"
	EnvBookingLockTTL = "BOOKING_LOCK_TTL"

	EnvKafkaBrokers   = "KAFKA_BROKERS"
	EnvKafkaGateTopic = "KAFKA_GATE_TOPIC"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvMaxRequestSize  = "MAX_REQUEST_SIZE"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
