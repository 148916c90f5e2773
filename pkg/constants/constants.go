// Package constants provides shared constants used throughout the docsync codebase.
// This includes timeouts, status delays, file permissions, and other values
// that should be consistent across the engine, the CLI, and the server.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the transport-level timeout for requests to the remote store
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultRequestTimeout bounds a single fetch or write operation end to end
	DefaultRequestTimeout = 30 * time.Second

	// SummaryTimeout bounds a best-effort summarization call
	SummaryTimeout = 20 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 2 * time.Minute

	// DefaultAutoRefreshInterval is the default interval between automatic refreshes
	DefaultAutoRefreshInterval = 5 * time.Minute

	// ShutdownTimeout is how long the server waits for in-flight requests on shutdown
	ShutdownTimeout = 10 * time.Second
)

// Status reset delays define how long a terminal sync status is shown
// before the orchestrator returns to idle.
const (
	// SuccessResetDelay applies after a successful refresh or write
	SuccessResetDelay = 1 * time.Second

	// FetchErrorResetDelay applies after a failed refresh
	FetchErrorResetDelay = 2 * time.Second

	// WriteErrorResetDelay applies after a failed write
	WriteErrorResetDelay = 1500 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Rate limiting constants
const (
	// DefaultRequestsPerSecond is the default pacing for remote store requests
	DefaultRequestsPerSecond = 5

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 2
)

// Limit constants
const (
	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 64

	// DefaultTopN is the default number of records in a most-viewed listing
	DefaultTopN = 5

	// MaxSummarySnippet is the maximum number of characters sent for metadata suggestion
	MaxSummarySnippet = 8000
)

// Logging constants
const (
	// LogRotationSize is the maximum size of a log file before rotation in megabytes
	LogRotationSize = 10

	// LogRotationAge is the maximum age of log files before deletion
	LogRotationAge = 7 * 24 * time.Hour

	// LogRotationBackups is the maximum number of old log files to retain
	LogRotationBackups = 5
)

// Default values
const (
	// DefaultCatalogName prefixes exported CSV filenames
	DefaultCatalogName = "TM_Articles"

	// DefaultGeminiModel is the model used for summaries and suggestions
	DefaultGeminiModel = "gemini-2.5-flash"

	// DefaultListenAddr is the default address for the API server
	DefaultListenAddr = ":8080"
)

// Path constants
const (
	// DefaultDataPath is the default directory for local state
	DefaultDataPath = "~/.docsync"

	// DefaultLibraryFile is the file name of the persisted hashtag library
	DefaultLibraryFile = "hashtags.json"

	// DefaultConfigFile is the default config file name (without extension)
	DefaultConfigFile = ".docsync"
)

// Format constants
const (
	// DateFormat is the canonical record date format
	DateFormat = "2006-01-02"

	// TimeFormatLog is the format used in log files
	TimeFormatLog = "2006-01-02 15:04:05.000"

	// ExportFilenameFormat builds export filenames from a catalog name and a date
	ExportFilenameFormat = "%s_Filtered_%s.csv"
)

// Error messages
const (
	// ErrMsgTitleRequired is returned when a write has no title
	ErrMsgTitleRequired = "title is required"

	// ErrMsgRowNumberRequired is returned when an update or delete has no row number
	ErrMsgRowNumberRequired = "row number is required"

	// ErrMsgNotArray is used when the remote store does not return a JSON array
	ErrMsgNotArray = "JSON array of objects"
)
