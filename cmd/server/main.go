package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/showtally/api/internal/adapters/handler/http"
	"github.com/showtally/api/internal/adapters/repository/postgres"
	"github.com/showtally/api/internal/core/services"
	"github.com/showtally/api/internal/metrics"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	connStr := dbConnString()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// The database may still be coming up; give it a moment.
	err = retry.Do(
		func() error { return db.Ping() },
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logger.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := postgres.NewVoteListener(connStr, logger)
	if err != nil {
		logger.Error("failed to start vote listener", "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	go listener.Run(ctx)

	sessionRepo := postgres.NewSessionRepository(db)
	voteRepo := postgres.NewVoteRepository(db)

	sessionService := services.NewSessionService(sessionRepo)
	voteService := services.NewVoteService(sessionRepo, voteRepo)
	tallyService := services.NewTallyService(sessionRepo, voteRepo)

	metricService := metrics.NewMetricService(prometheus.DefaultRegisterer)

	handler := http.NewHandler(
		http.NewSessionHandler(sessionService),
		http.NewVoteHandler(voteService, metricService),
		http.NewTallyHandler(tallyService),
		http.NewStreamHandler(listener, metricService),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &stdhttp.Server{Addr: "0.0.0.0:" + port, Handler: handler}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func dbConnString() string {
	dbName, user, password, host, port := dbConfig()
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

func dbConfig() (dbName string, user string, password string, host string, port string) {
	dbName = os.Getenv("POSTGRES_DB")
	user = os.Getenv("POSTGRES_USER")
	password = os.Getenv("POSTGRES_PASSWORD")
	host = os.Getenv("POSTGRES_HOST")
	port = os.Getenv("POSTGRES_PORT")
	return
}
