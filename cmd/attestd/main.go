package main

import (
	"log"

	"attestd/internal/config"
	"attestd/internal/infra/db"
	httpinfra "attestd/internal/infra/http"
	"attestd/internal/infra/logger"
)

func main() {
	cfg := config.FromEnv()
	zlog := logger.NewZapLogger(cfg.LogLevel)

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}

	// The presentation verifier is an external collaborator; without one,
	// verify requests fail with VERIFIER_UNAVAILABLE. Embedders supply
	// ServerDeps.VerifyFn.
	srv := httpinfra.NewServer(cfg, store, httpinfra.ServerDeps{Log: zlog})
	zlog.Info("attestd listening", map[string]any{"addr": cfg.HTTPAddr})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
