package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvHoldTTL           = "HOLD_TTL"
	EnvHoldSweepInterval = "HOLD_SWEEP_INTERVAL"

	EnvReferenceMaxAttempts    = "REFERENCE_MAX_ATTEMPTS"
	EnvStatusUpdateMaxAttempts = "STATUS_UPDATE_MAX_ATTEMPTS"

	EnvBookingEventsTopic   = "BOOKING_EVENTS_TOPIC"
	EnvPaymentEventsTopic   = "PAYMENT_EVENTS_TOPIC"
	EnvPaymentConsumerGroup = "PAYMENT_CONSUMER_GROUP"
)
