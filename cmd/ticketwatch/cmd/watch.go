package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ticketwatch/internal/checker"
	"ticketwatch/internal/config"
	"ticketwatch/pkg/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run checks on an interval with a health/metrics endpoint",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("%w: %v", checker.ErrConfig, err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	c, err := buildChecker(cfg, log)
	if err != nil {
		return fmt.Errorf("%w: %v", checker.ErrConfig, err)
	}

	sched, err := checker.NewScheduler(c, cfg.Schedule.CheckInterval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Readiness reports the last scheduled run's outcome.
	e.GET("/readyz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, sched.Status())
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("watch mode starting",
		"addr", addr,
		"interval", cfg.Schedule.CheckInterval.String(),
	)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	<-sched.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("stopped")
	return nil
}
