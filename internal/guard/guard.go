// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package guard implements the route-guarded view-lifecycle controller — the
core of the client.

Architecture:

  - Evaluate: the pure transition function (role × shell → action).
  - Guard: the orchestrator. It decodes the role from the stored
    credential, evaluates the current shell, and either renders the login
    view, hard-redirects, or exclusively mounts one page controller —
    unmounting the outgoing controller first so exactly one is mounted at
    any time.

Entry points that (re-)invoke the guard: initial load, history navigation,
and immediately after a successful login or logout. All mount/unmount
idempotence lives in the controllers; the guard only guarantees
exclusivity.
*/
package guard

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/pages"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
	"github.com/fleuronvilik/toplivres-devgdk/internal/poller"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Navigator performs hard navigations. Assign loads a new document for
// path; the host is expected to hand the fresh document back through
// [Guard.SetDocument] and re-run [Guard.Render].
type Navigator interface {
	Assign(path string)
}

// ControllerFactory builds the page controllers for one document. It is
// the view registry: shell kind (plus role, folded into the action) maps
// to a controller.
type ControllerFactory func(env pages.Env, action Action) pages.Controller

// DefaultFactory builds the stock controller for each mount action.
func DefaultFactory(env pages.Env, action Action) pages.Controller {
	switch action {
	case ActionMountAdmin:
		return &pages.Admin{Env: env}
	case ActionMountCustomerDetail:
		return &pages.CustomerDetail{Env: env}
	default:
		return &pages.Customer{Env: env}
	}
}

// Guard orchestrates routing, mounting, and identity transitions. All of
// its state is instance-scoped — no module-level statics — so independent
// guards (tests) cannot cross-contaminate.
type Guard struct {
	Session  *session.Session
	API      *api.Client
	Notifier *notify.Notifier
	Log      *slog.Logger
	Nav      Navigator
	Factory  ControllerFactory
	Confirm  func(message string) bool

	// PollInterval overrides the auto-refresh cadence, zero for the
	// default.
	PollInterval time.Duration

	mu          sync.Mutex
	doc         *view.Document
	loaded      *pages.Loaded
	loaders     *loader.Set
	poller      *poller.Poller
	controllers map[Action]pages.Controller
	current     pages.Controller
	loginBound  func()
}

// SetDocument installs the currently loaded document, resetting all
// document-scoped state (warm-resource flags, controllers, login binding).
func (g *Guard) SetDocument(doc *view.Document) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.current.Unmount()
		g.current = nil
	}
	g.doc = doc
	g.resetWarmState(doc)
	g.loginBound = nil
}

// resetWarmState discards everything tied to the authenticated identity:
// the warm-resource flags, the loader set with its blocked verdict, the
// poller with its pane registrations, and the cached controllers. Called
// with g.mu held, on document swaps and on every identity transition —
// a user logging in must never see the previous user's rows or verdict.
// The login binding is document-scoped and survives.
func (g *Guard) resetWarmState(doc *view.Document) {
	g.loaded = &pages.Loaded{}
	g.loaders = &loader.Set{
		API:     g.API,
		Doc:     doc,
		Log:     g.Log,
		Blocked: &loader.BlockedState{},
		TargetCustomer: func() (int64, bool) {
			return targetCustomer(g.Session, doc)
		},
	}
	g.poller = poller.New(doc, g.PollInterval, g.Log)
	g.controllers = map[Action]pages.Controller{}
}

// targetCustomer resolves whose inventory and stats the document shows:
// the logged-in customer on the home shell, the inspected customer on the
// admin detail shell.
func targetCustomer(sess *session.Session, doc *view.Document) (int64, bool) {
	switch doc.Shell() {
	case view.ShellCustomer:
		user, ok := sess.CurrentUser()
		if !ok || user.ID <= 0 {
			return 0, false
		}
		return user.ID, true
	case view.ShellCustomerDetail:
		region := doc.Region(view.RegionCustomerDetail)
		if region == nil {
			return 0, false
		}
		id, err := strconv.ParseInt(region.Field("customer-id"), 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// Document returns the currently installed document.
func (g *Guard) Document() *view.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.doc
}

// # Rendering

// Render runs one guard pass: decode role, evaluate, act. Re-entrant calls
// are safe — controllers guarantee idempotent mounts and the shared loaded
// flags prevent duplicate fetches.
func (g *Guard) Render(ctx context.Context) {
	g.mu.Lock()
	doc := g.doc
	g.mu.Unlock()
	if doc == nil {
		return
	}

	role := g.Session.DecodeRole()
	action := Evaluate(role, doc.Shell())

	g.Log.Debug("route_evaluated",
		slog.String("role", string(role)),
		slog.String("shell", doc.Shell().String()),
		slog.String("action", action.String()),
	)

	switch action {
	case ActionRenderLogin:
		g.renderLogin(ctx, doc)
	case ActionRedirectAdmin:
		g.Nav.Assign("/admin")
	case ActionRedirectHome:
		g.Nav.Assign("/")
	default:
		g.mount(ctx, doc, action)
	}
}

// Navigate performs a navigation. Hard navigations force a full document
// load through the Navigator; soft navigations stay within the current
// shell and re-run the guard.
func (g *Guard) Navigate(ctx context.Context, path string, hard bool) {
	if hard {
		g.Nav.Assign(path)
		return
	}
	g.Render(ctx)
}

// mount exclusively mounts the controller for action, unmounting the
// outgoing one first. A mount failure caused by an expired credential
// tears the session down and falls back to the login view — once, without
// an error toast storm.
func (g *Guard) mount(ctx context.Context, doc *view.Document, action Action) {
	g.mu.Lock()
	controller, ok := g.controllers[action]
	if !ok {
		factory := g.Factory
		if factory == nil {
			factory = DefaultFactory
		}
		controller = factory(pages.Env{
			Doc:      doc,
			API:      g.API,
			Session:  g.Session,
			Loaders:  g.loaders,
			Notifier: g.Notifier,
			Poller:   g.poller,
			Log:      g.Log,
			Confirm:  g.Confirm,
			Navigate: func(path string, hard bool) { g.Navigate(ctx, path, hard) },
			Logout:   func() { g.Logout(ctx) },
		}, action)
		g.controllers[action] = controller
	}
	outgoing := g.current
	loaded := g.loaded
	g.mu.Unlock()

	if outgoing != nil && outgoing != controller {
		outgoing.Unmount()
	}

	doc.HideAll()
	if err := controller.Mount(ctx, loaded); err != nil {
		if apperr.IsUnauthorized(err) {
			// Expired or revoked credential: treat as logged out and return
			// to the login view instead of spamming errors.
			if clearErr := g.Session.Clear(); clearErr != nil {
				g.Log.Warn("session_clear_failed", slog.Any("error", clearErr))
			}
			controller.Unmount()
			g.renderLogin(ctx, doc)
			return
		}
		g.Notifier.Error(err)
	}

	g.mu.Lock()
	g.current = controller
	g.mu.Unlock()
}

// # Login & logout

// renderLogin hides everything but the login region and binds the submit
// handler exactly once per document.
func (g *Guard) renderLogin(ctx context.Context, doc *view.Document) {
	g.mu.Lock()
	outgoing := g.current
	g.current = nil
	g.mu.Unlock()
	if outgoing != nil {
		outgoing.Unmount()
	}

	doc.HideAll()
	login := doc.Region(view.RegionLogin)
	login.Show()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.loginBound != nil {
		return
	}
	g.loginBound = login.On("submit", nil, func(view.Event) {
		g.login(ctx, login)
	})
}

// login authenticates, persists the credential and profile snapshot, and
// re-runs the guard.
func (g *Guard) login(ctx context.Context, login *view.Region) {
	email := login.Field("email")
	password := login.Field("password")

	response, err := g.API.Login(ctx, email, password)
	if err != nil {
		g.Notifier.Error(err)
		return
	}
	if err := g.Session.SetToken(response.AccessToken); err != nil {
		g.Notifier.Error(err)
		return
	}

	user, err := g.API.Me(ctx)
	if err != nil {
		g.Notifier.Error(err)
		return
	}
	if err := g.Session.SetCurrentUser(user); err != nil {
		g.Log.Warn("snapshot_persist_failed", slog.Any("error", err))
	}

	// Fresh identity, cold state: whatever was fetched under the previous
	// account must not leak into this one.
	g.mu.Lock()
	if g.doc != nil {
		g.resetWarmState(g.doc)
	}
	g.mu.Unlock()

	login.ResetFields()
	g.Render(ctx)
}

// Logout destroys the session, discards the identity-scoped warm state,
// unmounts the current controller, and re-runs the guard (which lands on
// the login view).
func (g *Guard) Logout(ctx context.Context) {
	if err := g.Session.Clear(); err != nil {
		g.Log.Warn("session_clear_failed", slog.Any("error", err))
	}
	g.mu.Lock()
	if g.doc != nil {
		g.resetWarmState(g.doc)
	}
	g.mu.Unlock()
	g.Render(ctx)
}
