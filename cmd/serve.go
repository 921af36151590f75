package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/cv-screener/internal/api"
	"github.com/spigell/cv-screener/internal/scheduler"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the background scheduler",
}

func init() {
	serveCmd.Run = func(_ *cobra.Command, _ []string) {
		serve()
	}
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().Bool("no-scheduler", false, "do not start the background scheduler")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	a := setup(ctx, logger)
	defer a.Close()

	server := api.NewServer(api.Dependencies{
		Store:     a.store,
		Queue:     a.queue,
		Pipeline:  a.pipeline,
		Drafter:   a.drafter,
		Summary:   a.summary,
		PublicURL: a.config.Server.PublicURL,
		Version:   version,
		Logger:    logger,
	})
	e := server.Echo()

	var sched *scheduler.Scheduler
	noScheduler, _ := serveCmd.Flags().GetBool("no-scheduler")
	if a.config.Scheduler.Enabled && !noScheduler {
		sched = scheduler.New(a.queue, a.pipeline, a.config.Scheduler.Interval, logger)
		if err := sched.Start(ctx); err != nil {
			logger.Fatal("starting the scheduler", zap.Error(err))
		}
	}

	addr := a.config.Server.Addr
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "signal received"))
	case err := <-errCh:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down the http server", zap.Error(err))
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
}
