package cli

import (
	actx "go.hackfix.me/winfw/app/context"
	aerrors "go.hackfix.me/winfw/app/errors"
)

// Enable turns the firewall on.
type Enable struct{}

// Run the enable command.
func (c *Enable) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx)
	if err != nil {
		return err
	}
	defer conn.Cleanup()

	if err = conn.Enable(); err != nil {
		return aerrors.NewWithCause("failed enabling firewall", err, "firewall.type", appCtx.FirewallType)
	}

	return nil
}

// Disable turns the firewall off.
type Disable struct{}

// Run the disable command.
func (c *Disable) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx)
	if err != nil {
		return err
	}
	defer conn.Cleanup()

	if err = conn.Disable(); err != nil {
		return aerrors.NewWithCause("failed disabling firewall", err, "firewall.type", appCtx.FirewallType)
	}

	return nil
}
