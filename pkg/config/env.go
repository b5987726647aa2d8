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
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingAdvanceHours = "BOOKING_ADVANCE_HOURS"
	EnvMinClassDuration    = "MIN_CLASS_DURATION"
	EnvMaxClassDuration    = "MAX_CLASS_DURATION"
	EnvMaxClassCapacity    = "MAX_CLASS_CAPACITY"
	EnvBusinessStartHour   = "BUSINESS_START_HOUR"
	EnvBusinessEndHour     = "BUSINESS_END_HOUR"
	EnvDefaultTimezone     = "DEFAULT_TIMEZONE"

	EnvKafkaBrokers           = "KAFKA_BROKERS"
	EnvKafkaBookingEventTopic = "KAFKA_BOOKING_EVENT_TOPIC"
)
