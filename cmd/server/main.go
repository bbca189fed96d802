package main

import (
	"context"

	"modelpicker/internal/config"
	logpkg "modelpicker/internal/log"
	"modelpicker/internal/server"
	"modelpicker/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	dotenvErr := godotenv.Load()

	logger := logpkg.CreateLogger()
	defer func() { _ = logger.Close() }()

	if dotenvErr != nil {
		logger.Warn("No .env file found, using system environment variables")
	}
	logger.Info("Logger initialized (level %s)", logger.Level())

	storageInstance := storage.InitStorage(context.Background(), logger)
	defer func() { _ = storageInstance.Close() }()

	cfg := config.LoadServerConfigFromEnv(logger)
	cfg.Storage = storageInstance
	cfg.Logger = logger

	srv, err := server.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Failed to close server cleanly: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		logger.Fatal("Server error: %v", err)
	}
}
