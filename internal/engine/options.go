package engine

import (
	"time"

	"github.com/dshills/textcore/internal/config"
	"github.com/dshills/textcore/internal/engine/buffer"
	"github.com/dshills/textcore/internal/engine/history"
	"github.com/dshills/textcore/internal/logging"
	"github.com/dshills/textcore/internal/watcher"
)

// Default configuration values.
const (
	DefaultSlack          = buffer.DefaultSlack
	DefaultMaxUndoEntries = history.DefaultMaxEntries
)

// Option configures a Buffer during creation.
type Option func(*settings)

type settings struct {
	slack          int
	maxUndoEntries int
	readOnly       bool
	log            *logging.Logger
	watchDebounce  time.Duration
}

func defaultSettings() settings {
	return settings{
		slack:          DefaultSlack,
		maxUndoEntries: DefaultMaxUndoEntries,
		log:            logging.Nop(),
		watchDebounce:  watcher.DefaultDebounce,
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithSlack sets the spare capacity reserved on allocation and growth.
func WithSlack(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.slack = n
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo steps.
func WithMaxUndoEntries(max int) Option {
	return func(s *settings) {
		if max > 0 {
			s.maxUndoEntries = max
		}
	}
}

// WithReadOnly creates a read-only buffer.
// Edit operations will return ErrReadOnly.
func WithReadOnly() Option {
	return func(s *settings) {
		s.readOnly = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithWatchDebounce sets the coalescing window used by Watch.
func WithWatchDebounce(d time.Duration) Option {
	return func(s *settings) {
		s.watchDebounce = d
	}
}

// WithConfig applies the [buffer] and [watch] sections of cfg.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) {
		WithSlack(cfg.Buffer.Slack)(s)
		WithMaxUndoEntries(cfg.Buffer.MaxUndoEntries)(s)
		if cfg.Buffer.ReadOnly {
			s.readOnly = true
		}
		s.watchDebounce = cfg.Watch.Debounce.Std()
	}
}
