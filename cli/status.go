package cli

import (
	"fmt"

	actx "go.hackfix.me/winfw/app/context"
	aerrors "go.hackfix.me/winfw/app/errors"
)

// Status shows whether the firewall is on.
type Status struct {
	Profiles bool `short:"p" help:"Also show the state of each network profile."`
}

// Run the status command.
func (c *Status) Run(appCtx *actx.Context) error {
	conn, err := connect(appCtx)
	if err != nil {
		return err
	}
	defer conn.Cleanup()

	on, err := conn.IsEnabled()
	if err != nil {
		return aerrors.NewWithCause("failed getting firewall status", err, "firewall.type", appCtx.FirewallType)
	}

	if _, err = fmt.Fprintf(appCtx.Stdout, "firewall: %s\n", onOff(on)); err != nil {
		return aerrors.NewWithCause("failed writing to stdout", err)
	}

	if !c.Profiles {
		return nil
	}

	states, err := conn.ProfileStates()
	if err != nil {
		return aerrors.NewWithCause("failed getting profile states", err, "firewall.type", appCtx.FirewallType)
	}

	data := make([][]string, 0, len(states))
	for _, s := range states {
		data = append(data, []string{s.Profile.String(), onOff(s.Enabled)})
	}

	if err = renderTable([]string{"Profile", "Firewall"}, data, appCtx.Stdout); err != nil {
		return aerrors.NewWithCause("failed rendering table", err)
	}

	return nil
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
