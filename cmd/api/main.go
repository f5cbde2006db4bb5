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

	"github.com/contactkeep/service-contacts-go/internal/config"
	contactrepo "github.com/contactkeep/service-contacts-go/internal/contact/repo"
	"github.com/contactkeep/service-contacts-go/internal/router"
	userrepo "github.com/contactkeep/service-contacts-go/internal/user/repo"
	"github.com/contactkeep/service-contacts-go/pkg/database"
	"github.com/contactkeep/service-contacts-go/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.InitLogger(utilities.LogConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting service-contacts-go")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		sugar.Fatalf("config: %v", err)
	}

	// init db
	db, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// bootstrap schema
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelBoot()
	if err := userrepo.NewUserRepo(db).EnsureTable(bootCtx); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}
	if err := contactrepo.NewContactRepo(db).EnsureTable(bootCtx); err != nil {
		sugar.Fatalf("ensure contacts table: %v", err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mount http server
	handler := router.RegisterRoutes(sugar, db, cfg)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("service is running", "addr", cfg.Addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
