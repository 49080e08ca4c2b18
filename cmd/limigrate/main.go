package main

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"go.hackfix.me/limigrate/app"
	aerrors "go.hackfix.me/limigrate/app/errors"
	"go.hackfix.me/limigrate/models"
)

func main() {
	configFilePath := filepath.Join(xdg.ConfigHome, "limigrate", "config.json")

	a, err := app.New("limigrate", configFilePath,
		app.WithTimeSource(models.SystemTime{}),
		app.WithFDs(
			os.Stdin,
			colorable.NewColorable(os.Stdout),
			colorable.NewColorable(os.Stderr),
		),
		app.WithFS(osfs.New()),
		app.WithLogger(isatty.IsTerminal(os.Stderr.Fd())),
	)
	if err != nil {
		aerrors.Log(nil, err)
		os.Exit(1)
	}

	if err = a.Run(os.Args[1:]); err != nil {
		aerrors.Log(nil, err)
		os.Exit(1)
	}
}
