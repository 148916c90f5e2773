package docsync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docsync/pkg/constants"
	"github.com/agentstation/docsync/pkg/errors"
	"github.com/agentstation/docsync/pkg/library"
	"github.com/agentstation/docsync/pkg/summarize"
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the configuration of a Client.
type options struct {
	library     library.Store
	summarizer  summarize.Summarizer
	catalogName string
	logger      *zerolog.Logger
	now         func() time.Time

	requestTimeout time.Duration
	summaryTimeout time.Duration

	autoRefreshEnabled  bool
	autoRefreshInterval time.Duration

	successDelay    time.Duration
	fetchErrorDelay time.Duration
	writeErrorDelay time.Duration
}

func defaults() *options {
	return &options{
		library:             library.NewMemoryStore(),
		summarizer:          summarize.Nop{},
		catalogName:         constants.DefaultCatalogName,
		now:                 time.Now,
		requestTimeout:      constants.DefaultRequestTimeout,
		summaryTimeout:      constants.SummaryTimeout,
		autoRefreshInterval: constants.DefaultAutoRefreshInterval,
		successDelay:        constants.SuccessResetDelay,
		fetchErrorDelay:     constants.FetchErrorResetDelay,
		writeErrorDelay:     constants.WriteErrorResetDelay,
	}
}

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithLibrary configures the store holding the persisted hashtag library.
func WithLibrary(store library.Store) Option {
	return func(o *options) error {
		if store == nil {
			return errors.NewValidationError("library", nil, "store must not be nil")
		}
		o.library = store
		return nil
	}
}

// WithSummarizer configures the best-effort summarization collaborator.
func WithSummarizer(s summarize.Summarizer) Option {
	return func(o *options) error {
		if s == nil {
			s = summarize.Nop{}
		}
		o.summarizer = s
		return nil
	}
}

// WithCatalogName sets the prefix of exported CSV filenames.
func WithCatalogName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.NewValidationError("catalogName", name, "must not be empty")
		}
		o.catalogName = name
		return nil
	}
}

// WithLogger configures the logger used for engine operations.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithClock overrides the time source used for creation times,
// snapshot timestamps and export filenames.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		o.now = now
		return nil
	}
}

// WithRequestTimeout bounds every call to the remote store.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.NewValidationError("requestTimeout", d, "must be positive")
		}
		o.requestTimeout = d
		return nil
	}
}

// WithSummaryTimeout bounds every call to the summarizer.
func WithSummaryTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return errors.NewValidationError("summaryTimeout", d, "must be positive")
		}
		o.summaryTimeout = d
		return nil
	}
}

// WithAutoRefresh configures whether the snapshot is refreshed periodically.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) error {
		o.autoRefreshEnabled = enabled
		return nil
	}
}

// WithAutoRefreshInterval configures how often automatic refreshes run.
func WithAutoRefreshInterval(interval time.Duration) Option {
	return func(o *options) error {
		o.autoRefreshInterval = interval
		return nil
	}
}

// WithStatusDelays configures how long the success, read error and write
// error states are held before returning to idle.
func WithStatusDelays(success, fetchError, writeError time.Duration) Option {
	return func(o *options) error {
		if success < 0 || fetchError < 0 || writeError < 0 {
			return errors.NewValidationError("statusDelays", nil, "must not be negative")
		}
		o.successDelay = success
		o.fetchErrorDelay = fetchError
		o.writeErrorDelay = writeError
		return nil
	}
}
