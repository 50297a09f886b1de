package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/rentivu/config"
	"github.com/oksasatya/rentivu/internal/container"
	"github.com/oksasatya/rentivu/internal/infrastructure/catalog"
	"github.com/oksasatya/rentivu/internal/infrastructure/storage"
	"github.com/oksasatya/rentivu/pkg/helpers"
)

// seed seeds the demo roster into the configured store and prints it.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := storage.Open(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer backend.Close()

	cat, err := catalog.NewStatic()
	if err != nil {
		log.Fatalf("failed to load rental catalog: %v", err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStorage(backend.Store)
	container.SetCatalog(cat)

	svc, err := container.BuildServices()
	if err != nil {
		log.Fatalf("failed to build services: %v", err)
	}

	state, err := svc.Auth.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	fmt.Printf("roster under %s (%d users):\n", svc.Auth.UsersKey(), len(state.Users))
	for _, u := range state.Users {
		fmt.Printf("  id=%s email=%s name=%q created=%s\n", u.ID, u.Email, u.FullName, u.CreatedAt)
	}
	if state.CurrentUser != nil {
		fmt.Printf("current session: %s\n", state.CurrentUser.Email)
	} else {
		fmt.Println("current session: anonymous")
	}
}
