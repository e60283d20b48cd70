package repository

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/rowmap/pkg/audit"
	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// Config describes the table a repository works on.
type Config struct {
	// Table is the table name, unquoted.
	Table string

	// Columns declares the table statically (see schema.Declare). When
	// empty the table is introspected through the adapter.
	Columns []schema.Column
}

type options struct {
	logger zerolog.Logger
	audit  audit.Appender
	now    func() time.Time
}

func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
}

// Option настраивает Repository
type Option func(*options)

// WithLogger sets the logger statements and failures are written to.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithAudit sends one audit entry per operation to a.
func WithAudit(a audit.Appender) Option {
	return func(o *options) {
		o.audit = a
	}
}

// WithClock replaces time.Now, e.g. for the DATE empty literal.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
