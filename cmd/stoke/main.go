package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/stoke/internal/database"
	"github.com/dukerupert/stoke/internal/logging"
	"github.com/dukerupert/stoke/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("STOKE_LOG_LEVEL"))

	port := os.Getenv("STOKE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("STOKE_DB_PATH")
	if dbPath == "" {
		dbPath = "stoke.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		VAPIDPublicKey:  os.Getenv("STOKE_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("STOKE_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, cfg, logger)

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(context.Background())
		defer sched.Stop()
	} else {
		logger.Info("push not configured, streak reminders disabled")
	}

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Stoke running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
