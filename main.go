package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"

	"namedesk/internal/app"
	"namedesk/internal/config"
	"namedesk/internal/infrastructure/logging"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed all:frontend/dist
var assets embed.FS

// loadConfig reads the --config file for the build's default environment
func loadConfig(cmd *cli.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(cmd.String("config"), defaultEnvironment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.NewLogger(os.Stderr, cfg.App.LogLevel)
	log.Info("configuration loaded",
		"environment", cfg.App.Environment,
		"database", cfg.Database.Path,
		"log_level", cfg.App.LogLevel)
	return cfg, log, nil
}

func wailsLogLevel(level string) logger.LogLevel {
	switch logging.ParseLevel(level) {
	case slog.LevelDebug:
		return logger.DEBUG
	case slog.LevelWarn:
		return logger.WARNING
	case slog.LevelError:
		return logger.ERROR
	default:
		return logger.INFO
	}
}

func runDesktop(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	application := app.NewApp(cfg, log)

	err = wails.Run(&options.App{
		Title:     "namedesk",
		Width:     720,
		Height:    560,
		MinWidth:  480,
		MinHeight: 360,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 250, G: 250, B: 250, A: 1},
		Logger:           logging.NewWailsLoggerAdapter(log),
		LogLevel:         wailsLogLevel(cfg.App.LogLevel),
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnShutdown:       application.Shutdown,
		Bind: []interface{}{
			application.Bridge(),
		},
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title:   "namedesk",
				Message: "Name records and directory browser",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "namedesk",
		Usage:  "Desktop records keeper and directory browser",
		Action: runDesktop,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("NAMEDESK_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			clientCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
