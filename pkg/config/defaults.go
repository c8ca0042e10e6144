package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "campusgate"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultAdminTokenTTL = 8 * time.Hour
	// Student tokens double as printed gate QR codes, so they outlive a
	// browser session. See DESIGN.md for the expiry decision.
	DefaultStudentTokenTTL = 720 * time.Hour

	DefaultAutoCloseAt       = "22:00"
	DefaultAutoCloseTimezone = "Local"

	DefaultScanLockTTL    = 10 * time.Second
	DefaultBookingLockTTL = 10 * time.Second

	DefaultKafkaGateTopic = "campus.gate.events"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = time.Minute

	DefaultRequestTimeout  = 15 * time.Second
	DefaultMaxRequestSize  = 1 << 20
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 20 * time.Second
)
