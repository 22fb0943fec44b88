package tree

import (
	"time"

	"regiontree/pkg/logging"
)

// Observer receives operational events from a tree. Implementations must be
// safe for concurrent use when a tree is traversed in parallel.
type Observer interface {
	RecordInsert(d time.Duration, err error)
	RecordBatchInsert(count int, d time.Duration, err error)
	RecordRemove(removed int)
	RecordSplit(splits int)
	RecordClear(dropped int)
	RecordTraversal()
	RecordConflict()
}

// NoopObserver drops every event.
type NoopObserver struct{}

func (NoopObserver) RecordInsert(time.Duration, error)           {}
func (NoopObserver) RecordBatchInsert(int, time.Duration, error) {}
func (NoopObserver) RecordRemove(int)                            {}
func (NoopObserver) RecordSplit(int)                             {}
func (NoopObserver) RecordClear(int)                             {}
func (NoopObserver) RecordTraversal()                            {}
func (NoopObserver) RecordConflict()                             {}

type options struct {
	logger   *logging.Logger
	observer Observer
	zorder   bool
}

// Option configures a tree at construction.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:   logging.NoopLogger(),
		observer: NoopObserver{},
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithZOrder makes bulk loads insert entries sorted along the Morton curve of
// the tree bounds instead of in the order given.
func WithZOrder() Option {
	return func(o *options) {
		o.zorder = true
	}
}
