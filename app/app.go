package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/winfw/app/config"
	actx "go.hackfix.me/winfw/app/context"
	"go.hackfix.me/winfw/cli"
	"go.hackfix.me/winfw/firewall"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application. configFilePath is the default path of
// the configuration file, which can be overridden on the command line.
func New(name, configFilePath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:        context.Background(),
		FS:         memoryfs.New(),
		Logger:     slog.Default(),
		OpenPolicy: firewall.OpenPolicy,
		Stdout:     io.Discard,
		Stderr:     io.Discard,
		Version:    version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.name, configFilePath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	app.ctx.Config = cfg

	ft, err := app.firewallType()
	if err != nil {
		return err
	}
	app.ctx.FirewallType = ft

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

// firewallType returns the firewall policy backend to use. The CLI flag takes
// precedence over the app option, which takes precedence over the
// configuration file.
func (app *App) firewallType() (ftypes.FirewallType, error) {
	switch {
	case app.cli.FirewallType != "":
		return ftypes.FirewallTypeFromString(app.cli.FirewallType)
	case app.ctx.FirewallType != "":
		return app.ctx.FirewallType, nil
	case app.ctx.Config.Firewall.Type.Valid:
		return app.ctx.Config.Firewall.Type.V, nil
	}
	return ftypes.FirewallWindows, nil
}
