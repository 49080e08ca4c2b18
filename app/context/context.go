package context

import (
	"context"
	"io"
	"log/slog"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/limigrate/app/config"
	"go.hackfix.me/limigrate/db"
	"go.hackfix.me/limigrate/models"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx        context.Context // global context
	FS         vfs.FileSystem  // filesystem
	Logger     *slog.Logger    // global logger
	TimeSource models.TimeSource
	Config     *config.Config

	// DB is opened on first use by commands that need it, unless it was set
	// beforehand.
	DB *db.DB

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
}
