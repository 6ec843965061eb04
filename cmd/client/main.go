// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

// Command client is the headless TopLivres bookstore client.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env preloaded).
//  3. Open the persisted session state file.
//  4. Wire the API client, notifier, and route guard.
//  5. Load the initial document and run the guard.
//  6. Idle until SIGINT/SIGTERM; the poller refreshes in the background.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/guard"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/config"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

func main() {
	// Initialize the logger first so startup errors are structured JSON.
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("app", "toplivres-client"))
	slog.SetDefault(log)

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	// Development runs always log at debug level; elsewhere DEBUG opts in.
	if cfg.Debug || cfg.IsDevelopment() {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})).With(slog.String("app", "toplivres-client"))
		slog.SetDefault(log)
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	store, err := session.OpenStore(cfg.StatePath)
	must(log, err, "open session store")
	sess := session.New(store)

	g := &guard.Guard{
		Session:      sess,
		Notifier:     notify.New(notify.DefaultCap, log),
		Log:          log,
		PollInterval: cfg.PollInterval,
		Confirm:      confirmOnTerminal,
	}
	g.API = api.NewClient(cfg.APIBaseURL, http.DefaultClient, log, sess, func() string {
		if doc := g.Document(); doc != nil {
			return doc.CSRF()
		}
		return ""
	})

	nav := &navigator{guard: g, log: log, csrf: cfg.CSRFToken}
	g.Nav = nav

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nav.ctx = ctx

	// Initial load: land on the shell matching the stored role, the way a
	// bookmarked dashboard URL would.
	switch sess.DecodeRole() {
	case session.RoleAdmin:
		nav.Assign("/admin")
	default:
		nav.Assign("/")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Info("shutdown signal received", slog.String("signal", sig.String()))
}

// navigator loads a fresh document for each hard navigation, the way the
// browser swaps pages, and re-runs the guard on it.
type navigator struct {
	guard *guard.Guard
	log   *slog.Logger
	csrf  string
	ctx   context.Context
}

func (n *navigator) Assign(path string) {
	n.log.Debug("navigate", slog.String("path", path))
	n.guard.SetDocument(documentFor(path, n.csrf))
	n.guard.Render(n.ctx)
}

// documentFor maps a path to its static page shell. Unknown paths serve
// the empty shell, which renders the login view.
func documentFor(path, csrf string) *view.Document {
	switch {
	case path == "/admin":
		return view.NewDocument(view.ShellAdmin, csrf)
	case strings.HasPrefix(path, "/admin/users/"):
		doc := view.NewDocument(view.ShellCustomerDetail, csrf)
		if id, err := strconv.ParseInt(strings.TrimPrefix(path, "/admin/users/"), 10, 64); err == nil {
			doc.Region(view.RegionCustomerDetail).SetField("customer-id", strconv.FormatInt(id, 10))
		}
		return doc
	case path == "/" || path == "":
		return view.NewDocument(view.ShellCustomer, csrf)
	default:
		return view.NewDocument(view.ShellNone, csrf)
	}
}

// confirmOnTerminal resolves destructive-action prompts. The headless
// binary has no interactive surface, so prompts refuse by default;
// embedders supply their own Confirm.
func confirmOnTerminal(message string) bool {
	slog.Warn("confirmation_refused", slog.String("prompt", message))
	return false
}

// must logs a structured fatal error and terminates the process if err is
// non-nil. Startup wiring only.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
