package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "fitbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingAdvanceHours = 1
	DefaultMinClassDuration    = 15  // minutes
	DefaultMaxClassDuration    = 180 // minutes
	DefaultMaxClassCapacity    = 50

	DefaultBusinessStartHour = 6
	DefaultBusinessEndHour   = 22

	DefaultDefaultTimezone = "Asia/Kolkata"

	DefaultKafkaBookingEventTopic = "booking-events"
)
