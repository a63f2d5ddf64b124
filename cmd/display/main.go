// Command display renders a session's live tally in the terminal, refreshed
// by the change stream and a fixed-interval poll.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/showtally/api/internal/apiclient"
	"github.com/showtally/api/internal/observer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	var apiURL, code string
	var interval time.Duration

	flag.StringVar(&apiURL, "api", envOr("API_URL", "http://localhost:8080"), "Tally API base URL")
	flag.StringVar(&code, "code", "", "Session code to observe")
	flag.DurationVar(&interval, "interval", observer.DefaultPollInterval, "Poll interval")
	flag.Parse()

	if code == "" {
		logger.Error("a session code is required (-code)")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(apiURL)

	watcher := observer.NewWatcher(code, client, client.ChangeFeed(code), logger,
		observer.WithPollInterval(interval),
		observer.WithOnUpdate(render),
	)

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("observer stopped", "error", err)
		os.Exit(1)
	}
}

func render(snap observer.Snapshot) {
	var b strings.Builder

	title := snap.Session.Title
	if title == "" {
		title = snap.Session.Code
	}
	fmt.Fprintf(&b, "\n%s | %d votes", title, snap.Tally.Total)
	if !snap.Session.IsOpen {
		b.WriteString(" (voting closed)")
	}
	b.WriteString("\n")

	for _, opt := range snap.Session.Options {
		count := snap.Tally.Counts[opt.ID]
		pct := snap.Tally.Percentage(opt.ID)
		fmt.Fprintf(&b, "  %-24s %4d  %3d%%  %s\n", opt.Name, count, pct, bar(pct))
	}

	fmt.Print(b.String())
}

func bar(pct int) string {
	filled := pct / 4
	return strings.Repeat("█", filled) + strings.Repeat("░", 25-filled)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
