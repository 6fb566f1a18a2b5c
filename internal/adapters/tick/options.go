package tick

import (
	"time"

	"github.com/okian/ghostrace/pkg/logger"
)

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithInterval sets the tick cadence.
func WithInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithName sets the driver name for logging.
func WithName(name string) Option {
	return func(d *Driver) {
		if name != "" {
			d.name = name
		}
	}
}

// WithLogger sets a custom logger for the driver.
func WithLogger(l logger.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}
