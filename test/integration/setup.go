package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	apihttp "github.com/showtally/api/internal/adapters/handler/http"
	pgrepo "github.com/showtally/api/internal/adapters/repository/postgres"
	"github.com/showtally/api/internal/core/services"
	"github.com/showtally/api/internal/metrics"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type TestApp struct {
	DB       *sql.DB
	Server   *httptest.Server
	Client   *http.Client
	Listener *pgrepo.VoteListener

	container    testcontainers.Container
	cancelListen context.CancelFunc
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, applyMigrations(db))

	listener, err := pgrepo.NewVoteListener(connStr, testLogger())
	require.NoError(t, err)

	listenCtx, cancel := context.WithCancel(ctx)
	go listener.Run(listenCtx)

	sessionRepo := pgrepo.NewSessionRepository(db)
	voteRepo := pgrepo.NewVoteRepository(db)

	metricService := metrics.NewMetricService(prometheus.NewRegistry())

	handler := apihttp.NewHandler(
		apihttp.NewSessionHandler(services.NewSessionService(sessionRepo)),
		apihttp.NewVoteHandler(services.NewVoteService(sessionRepo, voteRepo), metricService),
		apihttp.NewTallyHandler(services.NewTallyService(sessionRepo, voteRepo)),
		apihttp.NewStreamHandler(listener, metricService),
	)

	server := httptest.NewServer(handler)

	return &TestApp{
		DB:           db,
		Server:       server,
		Client:       server.Client(),
		Listener:     listener,
		container:    container,
		cancelListen: cancel,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()

	app.Server.Close()
	app.cancelListen()
	app.Listener.Close()
	app.DB.Close()
	if err := app.container.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
