package booking

import (
	"log/slog"
	"time"

	"github.com/c360/coworking/errors"
)

// Option configures a service using the functional options pattern
type Option func(*serviceOptions)

type serviceOptions struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces the clock used to decide which dates are in the past
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(name string, opts []Option) serviceOptions {
	o := serviceOptions{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("service", name)
	return o
}

// storeErr passes classified domain errors through and wraps everything else
// with the calling operation.
func storeErr(err error, component, method, action string) error {
	if errors.IsNotFound(err) || errors.IsConflict(err) || errors.IsInvalid(err) {
		return err
	}
	return errors.Wrap(err, component, method, action)
}
