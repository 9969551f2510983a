package cli

import (
	"database/sql"

	actx "go.hackfix.me/winfw/app/context"
	aerrors "go.hackfix.me/winfw/app/errors"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

// The Init command creates the configuration file.
type Init struct {
	Type            string `enum:"windows,mock" default:"windows" help:"Firewall policy backend used on this system."`
	RuleGroup       string `help:"Group new rules are added to."`
	RuleDescription string `help:"Description of new rules."`
	Force           bool   `help:"Overwrite an existing configuration."`
}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	cfg := appCtx.Config
	if cfg.Firewall.Type.Valid && !c.Force {
		return aerrors.NewWith("winfw is already initialized",
			"config.path", cfg.Path(), "hint", "Use --force to overwrite the configuration.")
	}

	ft, err := ftypes.FirewallTypeFromString(c.Type)
	if err != nil {
		return err
	}
	cfg.Firewall.Type = sql.Null[ftypes.FirewallType]{V: ft, Valid: true}
	cfg.Rules.Group = sql.Null[string]{V: c.RuleGroup, Valid: c.RuleGroup != ""}
	cfg.Rules.Description = sql.Null[string]{V: c.RuleDescription, Valid: c.RuleDescription != ""}

	if err = cfg.Save(); err != nil {
		return aerrors.NewWithCause("failed saving configuration", err, "config.path", cfg.Path())
	}

	appCtx.Logger.Info("saved configuration", "path", cfg.Path(), "firewall.type", ft)

	return nil
}
