package cli

import (
	"fmt"

	"github.com/nrednav/cuid2"

	actx "go.hackfix.me/winfw/app/context"
	aerrors "go.hackfix.me/winfw/app/errors"
	"go.hackfix.me/winfw/firewall"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Allow creates a rule that allows outbound TCP traffic of an application.
type Allow struct {
	Name        string     `arg:"" help:"Rule name."`
	Application string     `arg:"" help:"Full path of the application executable."`
	Ports       portsField `arg:"" help:"Local ports, as a comma-separated list of ports, ranges or keywords. \n Examples: 8080, 80,443, 5000-5010, RPC"`
	Description string     `help:"Rule description. Defaults to the configured description."`
	Group       string     `help:"Rule group. Defaults to the configured group."`
	Unique      bool       `help:"Append a unique suffix to the rule name, and print the final name."`
}

// Run the allow command.
func (c *Allow) Run(appCtx *actx.Context) error {
	spec := ftypes.RuleSpec{
		Name:            c.Name,
		Description:     c.Description,
		Group:           c.Group,
		ApplicationPath: c.Application,
		LocalPorts:      string(c.Ports),
	}
	if spec.Description == "" && appCtx.Config.Rules.Description.Valid {
		spec.Description = appCtx.Config.Rules.Description.V
	}
	if spec.Group == "" && appCtx.Config.Rules.Group.Valid {
		spec.Group = appCtx.Config.Rules.Group.V
	}
	if c.Unique {
		spec.Name = fmt.Sprintf("%s-%s", c.Name, cuid2.Generate())
	}

	conn, err := connect(appCtx)
	if err != nil {
		return err
	}
	defer conn.Cleanup()

	if err = conn.AddAllowRule(spec); err != nil {
		return aerrors.NewWithCause("failed adding allow rule", err,
			"rule.name", spec.Name, "firewall.type", appCtx.FirewallType)
	}

	if c.Unique {
		if _, err = fmt.Fprintln(appCtx.Stdout, spec.Name); err != nil {
			return aerrors.NewWithCause("failed writing to stdout", err)
		}
	}

	return nil
}

type portsField string

func (p portsField) Validate() error {
	return firewall.ValidateLocalPorts(string(p))
}
