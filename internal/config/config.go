// Package config handles application configuration loading from a YAML file and
// environment variables.
package config

import (
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	contextutils "feedbackboard/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Storage backend for the persisted board state
	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Database configuration, used when storage.backend is "postgres"
	Database DatabaseConfig `json:"database" yaml:"database"`

	// Board presentation and export settings
	Board BoardConfig `json:"board" yaml:"board"`

	// Outbound notifications for new feedback
	Notifications NotificationsConfig `json:"notifications" yaml:"notifications"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	SecureCookies bool     `json:"secure_cookies" yaml:"secure_cookies"` // set when served over HTTPS
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
}

// StorageConfig selects the key-value backend holding the persisted board state
type StorageConfig struct {
	Backend  string `json:"backend" yaml:"backend"`     // "memory", "file" or "postgres"
	FilePath string `json:"file_path" yaml:"file_path"` // used by the "file" backend
}

// BoardConfig controls how records are dated, displayed and exported
type BoardConfig struct {
	Locale         string `json:"locale" yaml:"locale"`                   // "id" or "en"
	Timezone       string `json:"timezone" yaml:"timezone"`               // IANA name, e.g. "Asia/Jakarta"
	DateLayout     string `json:"date_layout" yaml:"date_layout"`         // Go layout for the record date string
	ExportFilename string `json:"export_filename" yaml:"export_filename"` // CSV download name
	PerSession     bool   `json:"per_session" yaml:"per_session"`         // one board per browser session

	// Session boards unused for IdleTimeout are dropped from memory, and at most MaxBoards
	// stay loaded. Their records stay in storage.
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	MaxBoards   int           `json:"max_boards" yaml:"max_boards"`
}

// NotificationsConfig configures the optional webhook fired after each submission
type NotificationsConfig struct {
	WebhookURL string        `json:"webhook_url" yaml:"webhook_url"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenTelemetryConfig holds all OpenTelemetry-related configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "feedback-board"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"` // Default: 1.0 (100%)
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`       // Maximum number of open connections to the database
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`       // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"` // Maximum amount of time a connection may be reused
}

// Default returns a configuration usable without any config file
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          DefaultPort,
			SessionSecret: DefaultSessionSecret,
			LogLevel:      "info",
			SecureCookies: SessionSecure,
		},
		Storage: StorageConfig{
			Backend:  StorageBackendFile,
			FilePath: DefaultStorageFile,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: DatabaseConnMaxLifetime,
		},
		Board: BoardConfig{
			Locale:         "id",
			Timezone:       DefaultTimezone,
			DateLayout:     DefaultDateLayout,
			ExportFilename: DefaultExportFilename,
			PerSession:     true,
			IdleTimeout:    DefaultBoardIdleTimeout,
			MaxBoards:      DefaultMaxBoards,
		},
		Notifications: NotificationsConfig{
			Timeout: WebhookTimeout,
		},
		OpenTelemetry: OpenTelemetryConfig{
			Endpoint:     "localhost:4317",
			Protocol:     "grpc",
			Insecure:     true,
			ServiceName:  "feedback-board",
			SamplingRate: 1.0,
		},
	}
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks values that would otherwise fail later in less obvious places
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageBackendMemory:
	case StorageBackendFile:
		if c.Storage.FilePath == "" {
			return contextutils.ErrorWithContextf("storage.file_path is required for the file backend")
		}
	case StorageBackendPostgres:
		if c.Database.URL == "" {
			return contextutils.ErrorWithContextf("database.url is required for the postgres backend")
		}
	default:
		return contextutils.ErrorWithContextf("unsupported storage backend: %q", c.Storage.Backend)
	}

	if !contextutils.IsSupportedLocale(contextutils.ParseLocale(c.Board.Locale)) {
		return contextutils.ErrorWithContextf("unsupported board locale: %q", c.Board.Locale)
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnv(c)
}

// overrideStructFromEnv recursively overrides struct fields with environment variables
func overrideStructFromEnv(v interface{}) {
	overrideStructFromEnvWithPrefix(v, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables.
// The variable name is the upper-cased yaml tag path, e.g. board.timezone -> BOARD_TIMEZONE.
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		// Durations are int64 underneath but are written as "30s" in env and yaml
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			if envVal := os.Getenv(envKey); envVal != "" {
				if d, err := time.ParseDuration(envVal); err == nil {
					field.SetInt(int64(d))
				}
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			if field.CanAddr() {
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), envKey)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file named by FEEDBACK_CONFIG_FILE, or
// config.yaml when present, on top of the defaults
func loadConfigWithOverrides() (result0 *Config, err error) {
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	if _, statErr := os.Stat(DefaultConfigFile); os.IsNotExist(statErr) {
		return Default(), nil
	}
	return loadConfigFromFile(DefaultConfigFile)
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(yamlFile, config); err != nil {
		return nil, err
	}

	return config, nil
}
