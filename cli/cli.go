package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/winfw/app/context"
	aerrors "go.hackfix.me/winfw/app/errors"
	"go.hackfix.me/winfw/firewall"
)

// CLI is the command line interface of winfw.
type CLI struct {
	Init    Init    `kong:"cmd,help='Create the configuration file.'"`
	Status  Status  `kong:"cmd,help='Show whether the firewall is on.'"`
	Enable  Enable  `kong:"cmd,help='Turn the firewall on for all profiles.'"`
	Disable Disable `kong:"cmd,help='Turn the firewall off for all profiles.'"`
	Allow   Allow   `kong:"cmd,help='Allow outbound TCP traffic of an application.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile   string           `kong:"default='${configFile}',help='Path to the winfw configuration file.'"`
	FirewallType string           `kong:"help='Firewall policy backend (windows, mock). Overrides the configured type.'"`
	Version      kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(name, configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name(name),
		kong.UsageOnError(),
		kong.DefaultEnvars(strings.ToUpper(name)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile": configFilePath,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// connect acquires the configured firewall policy. The caller must call
// Cleanup on the returned Connector.
func connect(appCtx *actx.Context) (*firewall.Connector, error) {
	conn, err := firewall.Initialize(appCtx.FirewallType,
		firewall.WithLogger(appCtx.Logger),
		firewall.WithOpener(appCtx.OpenPolicy),
	)
	if err != nil {
		return nil, aerrors.NewWithCause("failed initializing firewall", err,
			"firewall.type", appCtx.FirewallType,
			"hint", "Make sure the Windows Firewall service is running, or select another type with --firewall-type.")
	}

	return conn, nil
}
