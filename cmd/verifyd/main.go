// Command verifyd runs the verification engine: an HTTP submission/status
// surface plus a pool of workers draining the job queue.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Noah-Everett/phiacta-verify/internal/api"
	"github.com/Noah-Everett/phiacta-verify/internal/config"
	"github.com/Noah-Everett/phiacta-verify/internal/logging"
	"github.com/Noah-Everett/phiacta-verify/internal/queue"
	"github.com/Noah-Everett/phiacta-verify/internal/sandbox"
	"github.com/Noah-Everett/phiacta-verify/internal/signer"
	"github.com/Noah-Everett/phiacta-verify/internal/upstream"
	"github.com/Noah-Everett/phiacta-verify/internal/worker"
)

func main() {
	logging.Init()
	defer logging.Sync()

	cfg := config.Load()
	cfg.MustValidate()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q, err := queue.NewRedisQueue(ctx, cfg.QueueURL)
	if err != nil {
		logging.L().Fatal("failed to connect to queue backend", zap.Error(err))
	}

	sign, err := signer.Load(cfg.SigningKeyPath)
	if err != nil {
		logging.L().Fatal("failed to load signing key", zap.Error(err))
	}

	docker, err := sandbox.NewDocker()
	if err != nil {
		logging.L().Fatal("failed to connect to docker", zap.Error(err))
	}

	var upstreamClient upstream.Client = upstream.NoOp{}
	if cfg.UpstreamURL != "" {
		upstreamClient = upstream.NewHTTPClient(cfg.UpstreamURL, cfg.UpstreamToken)
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.MaxWorkers; i++ {
		w := &worker.Worker{
			Queue:        q,
			Sandbox:      docker,
			Signer:       sign,
			Upstream:     upstreamClient,
			ConsumerName: "verifyd-" + uuid.NewString(),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	server := api.NewServer(q, cfg.MaxCodeSizeBytes)
	router := server.Router([]byte(os.Getenv("VERIFY_JWT_SECRET")), cfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:         ":" + port(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logging.L().Info("verifyd listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.L().Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.L().Error("server forced to shutdown", zap.Error(err))
	}

	wg.Wait()
	logging.L().Info("verifyd shut down cleanly")
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func init() {
	log.SetFlags(0)
}
