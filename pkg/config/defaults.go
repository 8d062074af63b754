package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "voyara"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Holds abandoned mid-creation are reclaimed after this TTL so failed
	// requests never strand capacity.
	DefaultHoldTTL           = 2 * time.Minute
	DefaultHoldSweepInterval = 30 * time.Second

	DefaultReferenceMaxAttempts    = 5
	DefaultStatusUpdateMaxAttempts = 3

	DefaultBookingEventsTopic   = "booking-events"
	DefaultPaymentEventsTopic   = "payment-events"
	DefaultPaymentConsumerGroup = "reservations-payment-results"

	DefaultPaginationLimit = 100
)
