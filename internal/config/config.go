package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigins lists the origins the CORS middleware accepts.
	// A single "*" entry allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Path is the SQLite database file, or ":memory:" for an ephemeral store.
	Path string `mapstructure:"path" validate:"required"`

	// BusyTimeoutMillis bounds how long a statement waits on a locked
	// database before failing. Concurrent writers wait rather than error.
	BusyTimeoutMillis int `mapstructure:"busy_timeout_millis" validate:"gte=0"`
}

// NotifyConfig contains settings for the notification delivery path.
type NotifyConfig struct {
	// QueueSize is the capacity of the bounded queue between timer
	// firings and the delivery worker.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// SubscriberBuffer is the per-subscriber event buffer. Subscribers
	// that fall this far behind start dropping events.
	SubscriberBuffer int `mapstructure:"subscriber_buffer" validate:"required,gt=0"`
}
