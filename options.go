package godbf

import (
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultEncoding is used for names and values unless WithEncoding is given.
const DefaultEncoding = "GB18030"

type options struct {
	encoding string
	clock    func() time.Time
	include  map[string]struct{}
	logger   logrus.FieldLogger
}

// Option configures a read or write call.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		encoding: DefaultEncoding,
		clock:    time.Now,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEncoding selects the text encoding by name, e.g. "GB18030", "UTF-8",
// "ShiftJIS".
func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithTime fixes the last-update date written to the header.
func WithTime(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

// WithClock supplies the current time for the last-update date.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithInclude restricts ReadTable to the named columns. Calling it with no
// names selects no columns at all.
func WithInclude(names ...string) Option {
	return func(o *options) {
		o.include = make(map[string]struct{}, len(names))
		for _, name := range names {
			o.include[name] = struct{}{}
		}
	}
}

// WithLogger sets where debug output goes, logrus.StandardLogger() by default.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
