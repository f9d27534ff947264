package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "barberbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "6000"
	DefaultLogLevel = "info"

	DefaultTokenTTL    = 24 * time.Hour
	DefaultPhoneRegion = "PH"
	MinJWTSecretLength = 16

	DefaultAdminName = "Administrator"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDotEnvFile = ".env"
)
