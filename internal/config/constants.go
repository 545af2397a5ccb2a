package config

import "time"

// Config file lookup
const (
	ConfigFileEnv     = "FEEDBACK_CONFIG_FILE"
	DefaultConfigFile = "config.yaml"
)

// Server defaults
const (
	DefaultPort          = "8080"
	DefaultSessionSecret = "change-me-feedback-board-secret"
)

// Storage backends
const (
	StorageBackendMemory   = "memory"
	StorageBackendFile     = "file"
	StorageBackendPostgres = "postgres"

	DefaultStorageFile = "data/feedback_store.json"
)

// Persisted state keys, as written by the original browser page
const (
	FeedbackStorageKey = "libraryFeedbacks"
	DarkModeStorageKey = "darkMode"
)

// Board defaults
const (
	DefaultTimezone = "Asia/Jakarta"
	// DefaultDateLayout mirrors the id-ID locale string, e.g. "16/10/2026, 14.30.05"
	DefaultDateLayout     = "2/1/2006, 15.04.05"
	DefaultExportFilename = "feedback_perpustakaan.csv"
	ExportContentType     = "text/csv"
	ExportCSVHeader       = "Nama,Pesan,Rating,Tanggal"

	DefaultBoardIdleTimeout = 30 * time.Minute
	DefaultMaxBoards        = 1000
)

// Timeout constants
const (
	DefaultHTTPTimeout      = 60 * time.Second
	WebhookTimeout          = 5 * time.Second
	ServerShutdownTimeout   = 30 * time.Second
	DatabaseConnMaxLifetime = 5 * time.Minute
	SessionMaxAge           = 365 * 24 * time.Hour
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // set server.secure_cookies when serving HTTPS
	SessionName     = "feedback-board-session"
	SessionBoardKey = "board_id"
)

// Security configuration constants
const (
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
