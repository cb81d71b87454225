// @title Building 413 Eco Report API
// @version 1.0
// @description Chat, analysis and reporting over Building 413 sensor data.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/va6996/ecochat/bootstrap"
	"github.com/va6996/ecochat/config"
	"github.com/va6996/ecochat/log"
)

func main() {
	// 0. Load Config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf(context.Background(), "Failed to load config: %v", err)
	}
	log.Init(cfg.Log.Level)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info(context.Background(), "Program terminated externally. Exiting...")
		cancel()
	}()

	// 1-3. Init App Components using Bootstrap
	app, err := bootstrap.Setup(ctx, cfg)
	if err != nil {
		log.Fatalf(context.Background(), "Setup failed: %v", err)
	}
	defer app.Close()

	// 4. Start API Server (h2c for HTTP/2 without TLS)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Server().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf(context.Background(), "Shutdown failed: %v", err)
		}
	}()

	log.Infof(context.Background(), "Starting server on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf(context.Background(), "Server failed: %v", err)
	}
}
