package main

import (
	"context"
	"os"
	"time"

	"habits/internal/cli"
	"habits/internal/core"
	applog "habits/internal/log"
	"habits/internal/navigation"
	"habits/internal/render"
	"habits/internal/screen"
	"habits/internal/summary"
)

// habits-grid fetches the summary once and prints the year-to-date grid.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	cfg := cli.LoadAndValidateConfig(logger)
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load calendar timezone", applog.FieldError, err, "timezone", cfg.CalendarTimezone)
		os.Exit(1)
	}

	client, err := summary.NewClient(cfg.SummaryAPIURL, cfg.HTTPClientTimeout, logger,
		summary.WithToken(cfg.SummaryAPIToken))
	if err != nil {
		logger.Error("Failed to create summary client", applog.FieldError, err)
		os.Exit(1)
	}
	loader := summary.NewLoader(client, cli.NewAlertWriter(os.Stderr, logger), logger)

	home := screen.NewHomeScreen(loader, navigation.NewLogNavigator(logger),
		core.DatesFromYearStart(time.Now(), loc),
		screen.Options{MinimumSize: cfg.MinimumGridSize, Location: loc, Logger: logger})

	home.Focus(context.Background())
	home.Wait()

	view := home.View()
	if !view.Ready {
		os.Exit(1)
	}
	renderLogger := logger.WithComponent(applog.ComponentRender)
	if err := render.Grid(os.Stdout, view); err != nil {
		renderLogger.Error("Failed to render grid", applog.FieldError, err)
		os.Exit(1)
	}
	renderLogger.Debug("Grid rendered",
		applog.FieldOperation, applog.OpRender,
		applog.FieldCellCount, len(view.Cells))
}
