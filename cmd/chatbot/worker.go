// cmd/chatbot/worker.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"support-chatbot/internal/common/aws"
	"support-chatbot/internal/common/camunda"
	"support-chatbot/internal/common/config"
	acm "support-chatbot/internal/workers/chatbot/answer-customer-message"
	lsa "support-chatbot/internal/workers/inventory/low-stock-alert"
)

var healthAddress string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Zeebe job workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := newRuntime(ctx, "chatbot-worker", 15)
		if err != nil {
			return err
		}
		defer rt.close()

		if err := config.ValidateForWorkers(rt.cfg); err != nil {
			return err
		}

		// --- Init Zeebe Client with retry ---
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, rt.cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, rt.zapLog, "Zeebe client initialization")
		if err != nil {
			return err
		}
		defer func() {
			if err := zeebe.Close(); err != nil {
				rt.zapLog.Error("Error closing Zeebe client", zap.Error(err))
			}
		}()
		rt.zapLog.Info("Zeebe client connected successfully")

		var workers []*camunda.CamundaWorker

		if config.IsWorkerEnabled(rt.cfg, acm.TaskType) {
			handler := acm.NewHandler(acm.NewConfig(rt.cfg), rt.chat, rt.obs, rt.log)
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), acm.TaskType,
				config.GetWorkerConfig(rt.cfg, acm.TaskType), handler.Handle, rt.zapLog))
		}

		if config.IsWorkerEnabled(rt.cfg, lsa.TaskType) {
			var publisher lsa.Publisher
			if sns := rt.cfg.Notifications.SNS; sns.Enabled {
				client, err := aws.NewSNSClient(ctx, sns.Region, sns.TopicARN)
				if err != nil {
					return err
				}
				publisher = client
			}
			handler := lsa.NewHandler(lsa.NewConfig(rt.cfg), rt.store, publisher, rt.obs, rt.log)
			workers = append(workers, camunda.NewWorker(zeebe.GetClient(), lsa.TaskType,
				config.GetWorkerConfig(rt.cfg, lsa.TaskType), handler.Handle, rt.zapLog))
		}
		rt.zapLog.Info("workers registered", zap.Int("count", len(workers)))

		// --- Health & Metrics Server ---
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusOK, "healthy")
		})
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := zeebe.HealthCheck(r.Context()); err != nil {
				writeStatus(w, http.StatusServiceUnavailable, "not ready")
				return
			}
			for _, check := range rt.checks {
				if err := check(r.Context()); err != nil {
					writeStatus(w, http.StatusServiceUnavailable, "not ready")
					return
				}
			}
			writeStatus(w, http.StatusOK, "ready")
		})
		mux.Handle("/metrics", promhttp.Handler())

		healthServer := &http.Server{Addr: healthAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			rt.zapLog.Info("Health/Metrics server listening", zap.String("address", healthAddress))
			if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				rt.zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()

		// --- Graceful Shutdown ---
		<-ctx.Done()
		rt.zapLog.Info("Shutdown signal received, stopping workers...")

		for _, w := range workers {
			w.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			rt.zapLog.Error("Error shutting down health server", zap.Error(err))
		}

		rt.zapLog.Info("Worker runtime stopped gracefully")
		return nil
	},
}

func init() {
	workerCmd.Flags().StringVar(&healthAddress, "health-address", ":8080", "Address for /health, /ready and /metrics")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
