// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package pages_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/pages"
	"github.com/fleuronvilik/toplivres-devgdk/internal/poller"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/stubapi"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// countingTransport tallies requests per path so tests can assert
// fetch-once behavior, and can fail a single path on demand.
type countingTransport struct {
	base http.RoundTripper

	mu       sync.Mutex
	counts   map[string]int
	failPath string
}

func (t *countingTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.counts[request.URL.Path]++
	failPath := t.failPath
	t.mu.Unlock()
	if failPath != "" && request.URL.Path == failPath {
		return nil, errors.New("connection reset")
	}
	return t.base.RoundTrip(request)
}

// failRequests makes every subsequent request to path error out.
func (t *countingTransport) failRequests(path string) {
	t.mu.Lock()
	t.failPath = path
	t.mu.Unlock()
}

func (t *countingTransport) count(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[path]
}

type pageFixture struct {
	doc       *view.Document
	env       pages.Env
	loaded    *pages.Loaded
	transport *countingTransport
	client    *api.Client
	sess      *session.Session
	notifier  *notify.Notifier
	stub      *stubapi.Server
	serverURL string
	navigated []string
	hardNav   []bool
	prompts   []string
	confirm   bool
	loggedOut bool
}

func newPageFixture(t *testing.T, shell view.Shell, email, password string) *pageFixture {
	t.Helper()
	stub := stubapi.New(nil)
	server := httptest.NewServer(stub.Handler())
	t.Cleanup(server.Close)

	transport := &countingTransport{base: http.DefaultTransport, counts: map[string]int{}}
	httpClient := &http.Client{Transport: transport}

	store, err := session.OpenStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	sess := session.New(store)
	client := api.NewClient(server.URL, httpClient, nil, sess, func() string {
		return stub.CSRFToken()
	})

	ctx := context.Background()
	response, err := client.Login(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, sess.SetToken(response.AccessToken))
	user, err := client.Me(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.SetCurrentUser(user))

	doc := view.NewDocument(shell, stub.CSRFToken())
	f := &pageFixture{
		doc:       doc,
		loaded:    &pages.Loaded{},
		transport: transport,
		client:    client,
		sess:      sess,
		notifier:  notify.New(notify.DefaultCap, nil),
		stub:      stub,
		serverURL: server.URL,
		confirm:   true,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.env = pages.Env{
		Doc:     doc,
		API:     client,
		Session: sess,
		Log:     log,
		Loaders: &loader.Set{
			API:     client,
			Doc:     doc,
			Blocked: &loader.BlockedState{},
			TargetCustomer: func() (int64, bool) {
				return user.ID, true
			},
		},
		Notifier: f.notifier,
		Poller:   poller.New(doc, time.Hour, nil),
		Navigate: func(path string, hard bool) {
			f.navigated = append(f.navigated, path)
			f.hardNav = append(f.hardNav, hard)
		},
		Confirm: func(message string) bool {
			f.prompts = append(f.prompts, message)
			return f.confirm
		},
		Logout: func() { f.loggedOut = true },
	}
	return f
}

// otherClient authenticates a second account against the same stub server,
// for tests that need operations created by someone else.
func (f *pageFixture) otherClient(t *testing.T, email, password string) *api.Client {
	t.Helper()
	store, err := session.OpenStore(filepath.Join(t.TempDir(), "other.json"))
	require.NoError(t, err)
	sess := session.New(store)
	client := api.NewClient(f.serverURL, nil, nil, sess, func() string {
		return f.stub.CSRFToken()
	})
	ctx := context.Background()
	response, err := client.Login(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, sess.SetToken(response.AccessToken))
	return client
}

/*
TestCustomer_MountIsIdempotent verifies a re-entrant mount fetches nothing
twice, registers no duplicate listeners, and keeps a single timer.
*/
func TestCustomer_MountIsIdempotent(t *testing.T) {
	f := newPageFixture(t, view.ShellCustomer, "alice@toplivres.test", "alice123")
	controller := &pages.Customer{Env: f.env}
	ctx := context.Background()

	require.NoError(t, controller.Mount(ctx, f.loaded))

	booksFetches := f.transport.count("/api/books")
	opsFetches := f.transport.count("/api/operations")
	assert.Equal(t, 1, booksFetches)
	assert.Equal(t, 1, opsFetches)

	orderForm := f.doc.Region(view.RegionOrderForm)
	nav := f.doc.Region(view.RegionCustomerNavigation)
	submitListeners := orderForm.ListenerCount("submit")
	navListeners := nav.ListenerCount("click")
	require.Positive(t, submitListeners)
	require.Positive(t, navListeners)

	require.NoError(t, controller.Mount(ctx, f.loaded))

	assert.Equal(t, booksFetches, f.transport.count("/api/books"))
	assert.Equal(t, opsFetches, f.transport.count("/api/operations"))
	assert.Equal(t, submitListeners, orderForm.ListenerCount("submit"))
	assert.Equal(t, navListeners, nav.ListenerCount("click"))
	assert.True(t, f.env.Poller.Running())

	controller.Unmount()
	controller.Unmount()
	assert.Zero(t, orderForm.ListenerCount("submit"))
	assert.Zero(t, nav.ListenerCount("click"))
	assert.False(t, f.env.Poller.Running())

	// A remount after unmount binds exactly one set again.
	require.NoError(t, controller.Mount(ctx, f.loaded))
	assert.Equal(t, submitListeners, orderForm.ListenerCount("submit"))
	assert.Equal(t, navListeners, nav.ListenerCount("click"))
	controller.Unmount()
}

/*
TestCustomer_MountShowsDashboard verifies the visible surface after mount:
dashboard regions shown, greeting set, order pane active.
*/
func TestCustomer_MountShowsDashboard(t *testing.T) {
	f := newPageFixture(t, view.ShellCustomer, "alice@toplivres.test", "alice123")
	controller := &pages.Customer{Env: f.env}

	require.NoError(t, controller.Mount(context.Background(), f.loaded))
	defer controller.Unmount()

	assert.True(t, f.doc.Region(view.RegionCustomerDashboard).Visible())
	assert.True(t, f.doc.Region(view.RegionOrderForm).Visible())
	assert.Equal(t, "Alice Martin", f.doc.Region(view.RegionCustomerNavigation).Text(pages.SlotCustomerName))
	assert.Equal(t, view.PaneOrder, f.doc.ActivePane())
	assert.False(t, f.doc.Region(view.RegionOrderForm).Empty(), "catalogue rendered")
}

/*
TestCustomer_CancelOrderFromHistory verifies the delegated cancel button:
the order is cancelled server-side and the history re-renders.
*/
func TestCustomer_CancelOrderFromHistory(t *testing.T) {
	f := newPageFixture(t, view.ShellCustomer, "benoit@toplivres.test", "benoit123")
	ctx := context.Background()
	require.NoError(t, f.client.CreateOrder(ctx, []api.OperationItem{{BookID: 1, Quantity: 2}}))

	controller := &pages.Customer{Env: f.env}
	require.NoError(t, controller.Mount(ctx, f.loaded))
	defer controller.Unmount()

	history := f.doc.Region(view.RegionHistory)
	rows := history.Rows()
	require.Len(t, rows, 1)
	require.Equal(t, api.StatusPending, rows[0].Data[loader.DataStatus])

	history.Dispatch(view.Event{Type: "click", Target: view.Target{
		Kind:    "cancelBtn",
		Dataset: map[string]string{"id": rows[0].Data[loader.DataID]},
	}})

	rows = history.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, api.StatusCancelled, rows[0].Data[loader.DataStatus])
}

/*
TestCustomer_TabsSyncHashAndPane verifies a tab click switches the active
pane and pushes the matching hash.
*/
func TestCustomer_TabsSyncHashAndPane(t *testing.T) {
	f := newPageFixture(t, view.ShellCustomer, "alice@toplivres.test", "alice123")
	controller := &pages.Customer{Env: f.env}
	require.NoError(t, controller.Mount(context.Background(), f.loaded))
	defer controller.Unmount()

	f.doc.Region(view.RegionCustomerNavigation).Dispatch(view.Event{Type: "click", Target: view.Target{
		Kind:    "tab-link",
		Dataset: map[string]string{"tab": view.PaneStats},
	}})

	assert.Equal(t, view.PaneStats, f.doc.ActivePane())
	assert.Equal(t, view.PaneStats, f.doc.Hash())
}

/*
TestCustomer_UserMenu verifies the settings open/close toggles and the
logout hook.
*/
func TestCustomer_UserMenu(t *testing.T) {
	f := newPageFixture(t, view.ShellCustomer, "alice@toplivres.test", "alice123")
	controller := &pages.Customer{Env: f.env}
	require.NoError(t, controller.Mount(context.Background(), f.loaded))
	defer controller.Unmount()

	nav := f.doc.Region(view.RegionCustomerNavigation)

	nav.Dispatch(view.Event{Type: "click", Target: view.Target{Kind: "open-settings"}})
	assert.True(t, f.doc.Region(view.RegionSettings).Visible())
	nav.Dispatch(view.Event{Type: "click", Target: view.Target{Kind: "close-settings"}})
	assert.False(t, f.doc.Region(view.RegionSettings).Visible())

	nav.Dispatch(view.Event{Type: "click", Target: view.Target{Kind: "logout"}})
	assert.True(t, f.loggedOut)
}
