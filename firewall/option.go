package firewall

import (
	"errors"
	"log/slog"
)

// Option is a function that allows configuring the Connector.
type Option func(*Connector) error

// WithLogger sets the logger used by the Connector.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) error {
		c.logger = logger.With("component", "firewall")
		return nil
	}
}

// WithOpener sets the function used to acquire the firewall policy on
// Initialize.
func WithOpener(opener Opener) Option {
	return func(c *Connector) error {
		if opener == nil {
			return errors.New("policy opener is required")
		}
		c.opener = opener
		return nil
	}
}

// DefaultOptions returns the default Connector options.
func DefaultOptions() []Option {
	return []Option{
		WithLogger(slog.Default()),
		WithOpener(OpenPolicy),
	}
}
