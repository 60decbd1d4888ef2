// cmd/chatbot/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"support-chatbot/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx, "chatbot-api", 15)
		if err != nil {
			return err
		}
		defer rt.close()

		handler := api.NewHandler(rt.chat, rt.store, rt.checks, rt.log)
		server := api.NewServer(rt.cfg.HTTP, handler, rt.log)

		errCh := make(chan error, 1)
		go func() {
			rt.zapLog.Info("HTTP API listening", zap.String("address", rt.cfg.HTTP.Address))
			if err := server.Start(rt.cfg.HTTP.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			rt.zapLog.Info("Shutdown signal received, stopping HTTP API...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			rt.zapLog.Error("Error shutting down HTTP API", zap.Error(err))
		}

		rt.zapLog.Info("HTTP API stopped gracefully")
		return nil
	},
}
