package context

import (
	"context"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/winfw/app/config"
	"go.hackfix.me/winfw/firewall"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx    context.Context // global context
	FS     vfs.FileSystem  // filesystem
	Logger *slog.Logger    // global logger
	Config *config.Config

	// FirewallType is the policy backend commands operate on, resolved from the
	// CLI and the configuration.
	FirewallType ftypes.FirewallType
	// OpenPolicy acquires the firewall policy backend.
	OpenPolicy firewall.Opener

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
}
