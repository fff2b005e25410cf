package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dashboard"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/router"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-bi-dashboard")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load the four tables once; every request reads this snapshot
	cfg := dataset.ConfigFromEnv()
	source, closeSource, err := dataset.NewSource(ctx, cfg)
	if err != nil {
		sugar.Fatalf("data source: %v", err)
	}
	snap, err := dataset.NewLoader(source, sugar).Load(ctx)
	if err != nil {
		sugar.Fatalf("load data: %v", err)
	}
	if err := closeSource(); err != nil {
		sugar.Warnf("close data source: %v", err)
	}

	content, err := dashboard.LoadContent(dashboard.ContentFileFromEnv())
	if err != nil {
		sugar.Fatalf("dashboard content: %v", err)
	}
	dash, err := dashboard.NewHandler(snap, content, sugar)
	if err != nil {
		sugar.Fatalf("dashboard templates: %v", err)
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.RegisterRoutes(sugar, dash),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("dashboard is running; press Ctrl+C to stop", "addr", addr, "snapshot_id", snap.ID)

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
