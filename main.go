package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"EmuDock/internal/cli"
	"EmuDock/internal/config"
	"EmuDock/internal/logging"
)

const windowTitle = "EmuDock"

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := cli.NewRootCommand(run).Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flags *cli.Flags) error {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if flags.LogLevel != "" {
		level = flags.LogLevel
	}
	closer := logging.Configure(logging.Config{
		Level:   level,
		Console: flags.Console || cfg.ShowConsole,
		Dir:     cfg.LogDir,
	})
	defer closer.Close()

	log := logging.WithComponent("main")
	log.Info().Str("version", cfg.Version).Bool("embed", cfg.EmbedWindow && !flags.NoEmbed).Msg("starting launcher")

	app := NewApp(cfg, flags.ConfigPath, flags.NoEmbed)
	err = wails.Run(&options.App{
		Title:            windowTitle,
		Width:            960,
		Height:           720,
		MinWidth:         640,
		MinHeight:        480,
		StartHidden:      true,
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 255},
		AssetServer:      &assetserver.Options{Assets: assets},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind:             []interface{}{app},
	})
	if err != nil {
		log.Error().Err(err).Msg("window runtime failed")
		return err
	}
	return nil
}
