package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"habits/internal/amqp"
	"habits/internal/cli"
	"habits/internal/config"
	"habits/internal/core"
	applog "habits/internal/log"
	"habits/internal/navigation"
	"habits/internal/render"
	"habits/internal/screen"
	"habits/internal/summary"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting habits-home", applog.FieldOperation, applog.OpStartup)

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

	var (
		navigator  navigation.Navigator = navigation.NewLogNavigator(logger)
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPScreenQueue, cfg.AMQPNavigationKey, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		navigator = amqpClient
	} else {
		logger.Info("AMQP disabled - reading screen events from stdin")
	}

	dates := core.DatesFromYearStart(time.Now(), loc)
	home := screen.NewHomeScreen(loader, navigator, dates, screen.Options{
		MinimumSize: cfg.MinimumGridSize,
		Location:    loc,
		Logger:      logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, home.Wait)

	g, gctx := errgroup.WithContext(ctx)
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeScreenEvents(gctx, screenEventHandler(home, logger))
		})
	} else {
		g.Go(func() error {
			return runInteractive(gctx, home, cfg, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Home screen stopped", applog.FieldError, err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
		cli.WaitForShutdown(ctx, done)
	default:
		// quit from stdin
		home.Wait()
	}
}

func screenEventHandler(home *screen.HomeScreen, logger *applog.Logger) amqp.ScreenEventHandler {
	return func(ctx context.Context, event *amqp.ScreenEvent) error {
		switch event.Type {
		case amqp.ScreenEventFocus:
			home.Focus(ctx)
		case amqp.ScreenEventTap:
			err := home.Tap(ctx, *event.Index)
			if errors.Is(err, screen.ErrNotNavigable) {
				logger.InfoContext(ctx, "Ignoring tap",
					applog.FieldCellIndex, *event.Index,
					applog.FieldError, err)
				return nil
			}
			return err
		}
		return nil
	}
}

// runInteractive drives the screen from stdin: "f" focuses, a number taps
// that cell and "q" quits.
func runInteractive(ctx context.Context, home *screen.HomeScreen, cfg *config.Config, logger *applog.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	renderLogger := logger.WithComponent(applog.ComponentRender)
	focus := func() {
		home.Focus(ctx)
		home.Wait()
		if err := render.Grid(os.Stdout, home.View()); err != nil {
			renderLogger.ErrorContext(ctx, "Failed to render grid",
				applog.FieldError, err,
				applog.FieldOperation, applog.OpRender)
		}
	}

	// the screen is focused when it first appears
	focus()
	fmt.Fprintf(os.Stdout, "commands: f (focus), <cell index> (tap), q (quit); API %s\n", cfg.SummaryAPIURL)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok || line == "q" {
				return nil
			}
			if line == "f" || line == "" {
				focus()
				continue
			}
			index, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintf(os.Stdout, "unknown command %q\n", line)
				continue
			}
			if err := home.Tap(ctx, index); err != nil {
				fmt.Fprintf(os.Stdout, "cannot open cell %d: %v\n", index, err)
			}
		}
	}
}
