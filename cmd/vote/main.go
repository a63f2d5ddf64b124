// Command vote is the voter-facing entry point: it resolves a session code,
// shows the option catalog, and casts this installation's single vote. The
// device identity is minted locally on first run and reused after that.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/showtally/api/internal/apiclient"
	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/device"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found")
	}

	var apiURL, code, choice string
	flag.StringVar(&apiURL, "api", envOr("API_URL", "http://localhost:8080"), "Tally API base URL")
	flag.StringVar(&code, "code", "", "Session code")
	flag.StringVar(&choice, "choice", "", "Option number to vote for (1-based); omit to list options")
	flag.Parse()

	if code == "" {
		logger.Error("a session code is required (-code)")
		os.Exit(1)
	}

	store, err := device.NewStore()
	if err != nil {
		logger.Error("failed to open device identity store", "error", err)
		os.Exit(1)
	}
	deviceID, err := store.ID()
	if err != nil {
		logger.Error("failed to load device identity", "error", err)
		os.Exit(1)
	}

	client := apiclient.New(apiURL, apiclient.WithDeviceID(deviceID))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := client.Resolve(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			fmt.Println("Session not found.")
			os.Exit(1)
		}
		logger.Error("failed to resolve session", "error", err)
		os.Exit(1)
	}

	if choice == "" {
		listOptions(ctx, client, session, code)
		return
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(session.Options) {
		logger.Error("choice must be an option number", "options", len(session.Options))
		os.Exit(1)
	}
	option := session.Options[n-1]

	if err := client.Cast(ctx, code, option.ID); err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionClosed):
			fmt.Println("Voting is closed.")
			os.Exit(1)
		default:
			// Write failures are retryable by running the command again.
			fmt.Println("Could not save vote.")
			logger.Error("cast failed", "error", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Response saved | voted %q\n", option.Name)
}

func listOptions(ctx context.Context, client *apiclient.Client, session *domain.Session, code string) {
	title := session.Title
	if title == "" {
		title = session.Code
	}
	fmt.Printf("%s\n", title)
	if !session.IsOpen {
		fmt.Println("(voting is closed)")
	}

	current, err := client.MyVote(ctx, code)
	if err != nil {
		current = uuid.Nil
	}

	for i, opt := range session.Options {
		marker := " "
		if opt.ID == current {
			marker = "*"
		}
		fmt.Printf("%s %d. %s\n", marker, i+1, opt.Name)
	}
	fmt.Println("\nVote with -choice <number>. Voting again replaces your previous choice.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
