package client

import (
	"time"

	"github.com/kbukum/apihelper/httpclient"
	"github.com/kbukum/apihelper/logger"
	"github.com/kbukum/apihelper/observability"
)

// Option configures a client at construction.
type Option func(*options)

type options struct {
	doer    httpclient.Doer
	log     *logger.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.doer == nil {
		o.doer = httpclient.Default()
	}
	if o.log == nil {
		o.log = logger.Nop()
	}
	return o
}

// WithDoer sets the transport. Defaults to httpclient.Default().
func WithDoer(d httpclient.Doer) Option {
	return func(o *options) { o.doer = d }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records per-request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the wall clock used for history and token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
