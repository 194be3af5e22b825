package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	app "github.com/rocketscienceinc/qe-backend/internal"
	"github.com/rocketscienceinc/qe-backend/internal/config"
)

type CLI struct {
	Config string `default:"config.yml" type:"path" help:"Path to the YAML config file"`
}

// main - loads the configuration, builds the logger and serves games until
// the process is told to stop.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	var cli CLI
	kong.Parse(&cli, kong.Description("Auction game server."))

	conf := config.MustLoad(cli.Config)
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initLogger - JSON logs on stdout. Unknown levels fall back to info.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(conf.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
