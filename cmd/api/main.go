package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"flowforge-backend/infrastructure/config"
	"flowforge-backend/infrastructure/di"
	"flowforge-backend/interfaces/http/rest/handlers"
	v1 "flowforge-backend/interfaces/http/rest/v1"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	router := v1.NewRouter(v1.RouterDeps{
		Config:         container.Config,
		Logger:         container.Logger,
		Validator:      container.Validator,
		FlowHandler:    handlers.NewFlowHandler(container.CommandBus, container.QueryBus, container.Logger),
		NodeHandler:    handlers.NewNodeHandler(container.CommandBus, container.Logger),
		EdgeHandler:    handlers.NewEdgeHandler(container.CommandBus, container.Logger),
		VersionHandler: handlers.NewVersionHandler(container.CommandBus, container.QueryBus, container.Logger),
		CommentHandler: handlers.NewCommentHandler(container.CommandBus, container.QueryBus, container.Logger),
		SearchHandler:  handlers.NewSearchHandler(container.QueryBus, container.Logger),
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		container.Logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("storage", cfg.StorageDriver),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	container.Logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Server shutdown error", zap.Error(err))
	}

	if err := container.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	log.Println("Server stopped")
}
