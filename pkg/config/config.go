package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fitbook/pkg/client"
	"fitbook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Booking/class business rules. These used to live as an implicit
	// settings singleton in older deployments; they are explicit here and
	// passed into services at construction.
	BookingAdvanceHours int
	MinClassDuration    int // minutes
	MaxClassDuration    int // minutes
	MaxClassCapacity    int
	BusinessStartHour   int
	BusinessEndHour     int
	DefaultTimezone     string

	KafkaBrokers           []string
	KafkaBookingEventTopic string

	Log    *logger.Logger
	Client *client.Client

	location *time.Location
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BookingAdvanceHours: getEnvNum(EnvBookingAdvanceHours, DefaultBookingAdvanceHours),
		MinClassDuration:    getEnvNum(EnvMinClassDuration, DefaultMinClassDuration),
		MaxClassDuration:    getEnvNum(EnvMaxClassDuration, DefaultMaxClassDuration),
		MaxClassCapacity:    getEnvNum(EnvMaxClassCapacity, DefaultMaxClassCapacity),
		BusinessStartHour:   getEnvNum(EnvBusinessStartHour, DefaultBusinessStartHour),
		BusinessEndHour:     getEnvNum(EnvBusinessEndHour, DefaultBusinessEndHour),
		DefaultTimezone:     getEnvStr(EnvDefaultTimezone, DefaultDefaultTimezone),

		KafkaBrokers:           getEnvList(EnvKafkaBrokers, nil),
		KafkaBookingEventTopic: getEnvStr(EnvKafkaBookingEventTopic, DefaultKafkaBookingEventTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.BookingAdvanceHours < 0 {
		errs = append(errs, fmt.Sprintf("BookingAdvanceHours cannot be negative, got: %d", cfg.BookingAdvanceHours))
	}
	if cfg.MinClassDuration <= 0 {
		errs = append(errs, fmt.Sprintf("MinClassDuration must be positive, got: %d", cfg.MinClassDuration))
	}
	if cfg.MaxClassDuration < cfg.MinClassDuration {
		errs = append(errs, fmt.Sprintf("MaxClassDuration (%d) must be >= MinClassDuration (%d)", cfg.MaxClassDuration, cfg.MinClassDuration))
	}
	if cfg.MaxClassCapacity < 1 {
		errs = append(errs, fmt.Sprintf("MaxClassCapacity must be at least 1, got: %d", cfg.MaxClassCapacity))
	}
	if cfg.BusinessStartHour < 0 || cfg.BusinessStartHour > 23 {
		errs = append(errs, fmt.Sprintf("BusinessStartHour must be in 0-23, got: %d", cfg.BusinessStartHour))
	}
	if cfg.BusinessEndHour < 1 || cfg.BusinessEndHour > 24 {
		errs = append(errs, fmt.Sprintf("BusinessEndHour must be in 1-24, got: %d", cfg.BusinessEndHour))
	}
	if cfg.BusinessEndHour <= cfg.BusinessStartHour {
		errs = append(errs, fmt.Sprintf("BusinessEndHour (%d) must be after BusinessStartHour (%d)", cfg.BusinessEndHour, cfg.BusinessStartHour))
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		errs = append(errs, fmt.Sprintf("DefaultTimezone is not a valid IANA timezone, got: %s", cfg.DefaultTimezone))
	} else {
		cfg.location = loc
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// Location returns the configured display timezone. Validate must have
// succeeded before calling.
func (cfg *Config) Location() *time.Location {
	if cfg.location == nil {
		loc, err := time.LoadLocation(cfg.DefaultTimezone)
		if err != nil {
			return time.UTC
		}
		cfg.location = loc
	}
	return cfg.location
}

// Now returns the current time in the configured timezone.
func (cfg *Config) Now() time.Time {
	return time.Now().In(cfg.Location())
}

// IsBusinessHours reports whether t falls within the configured operating
// window, evaluated in the configured timezone.
func (cfg *Config) IsBusinessHours(t time.Time) bool {
	hour := t.In(cfg.Location()).Hour()
	return hour >= cfg.BusinessStartHour && hour < cfg.BusinessEndHour
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"booking_advance_hours", cfg.BookingAdvanceHours,
		"min_class_duration", cfg.MinClassDuration,
		"max_class_duration", cfg.MaxClassDuration,
		"max_class_capacity", cfg.MaxClassCapacity,
		"business_start_hour", cfg.BusinessStartHour,
		"business_end_hour", cfg.BusinessEndHour,
		"default_timezone", cfg.DefaultTimezone,
		"kafka_brokers", strings.Join(cfg.KafkaBrokers, ","),
		"kafka_booking_event_topic", cfg.KafkaBookingEventTopic,
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

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
