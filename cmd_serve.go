package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Personal-Assistant/app"
	logx "github.com/tanpawarit/Chative-Personal-Assistant/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := app.LoadSettings()
	if err != nil {
		return err
	}
	logx.Init(settings.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Wire(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logx.Warn().Err(err).Msg("runtime close")
		}
	}()

	server, err := app.New(settings.App, rt.Router(settings.App.MaxRequestBodyBytes), rt.Probe, log.Logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
