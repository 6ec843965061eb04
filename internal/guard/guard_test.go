// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package guard_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/guard"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/pages"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/stubapi"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

type fakeNav struct {
	assigned []string
}

func (n *fakeNav) Assign(path string) {
	n.assigned = append(n.assigned, path)
}

type guardFixture struct {
	guard    *guard.Guard
	sess     *session.Session
	client   *api.Client
	stub     *stubapi.Server
	nav      *fakeNav
	notifier *notify.Notifier
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	stub := stubapi.New(nil)
	server := httptest.NewServer(stub.Handler())
	t.Cleanup(server.Close)

	store, err := session.OpenStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	sess := session.New(store)
	client := api.NewClient(server.URL, nil, nil, sess, func() string {
		return stub.CSRFToken()
	})

	nav := &fakeNav{}
	notifier := notify.New(notify.DefaultCap, nil)
	return &guardFixture{
		guard: &guard.Guard{
			Session:      sess,
			API:          client,
			Notifier:     notifier,
			Log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
			Nav:          nav,
			PollInterval: time.Hour,
		},
		sess:     sess,
		client:   client,
		stub:     stub,
		nav:      nav,
		notifier: notifier,
	}
}

// authenticate stores a real credential and profile snapshot, as a prior
// login would have.
func (f *guardFixture) authenticate(t *testing.T, email, password string) {
	t.Helper()
	ctx := context.Background()
	response, err := f.client.Login(ctx, email, password)
	require.NoError(t, err)
	require.NoError(t, f.sess.SetToken(response.AccessToken))
	user, err := f.client.Me(ctx)
	require.NoError(t, err)
	require.NoError(t, f.sess.SetCurrentUser(user))
}

func (f *guardFixture) document(shell view.Shell) *view.Document {
	doc := view.NewDocument(shell, f.stub.CSRFToken())
	f.guard.SetDocument(doc)
	return doc
}

/*
TestGuard_LoggedOutRendersLogin verifies every shell falls back to the
login view without a credential, binding the submit handler exactly once
per document even across repeated guard runs.
*/
func TestGuard_LoggedOutRendersLogin(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()

	for _, shell := range []view.Shell{view.ShellNone, view.ShellCustomer, view.ShellAdmin, view.ShellCustomerDetail} {
		doc := f.document(shell)
		f.guard.Render(ctx)

		login := doc.Region(view.RegionLogin)
		assert.True(t, login.Visible())
		assert.Equal(t, 1, login.ListenerCount("submit"))

		f.guard.Render(ctx)
		assert.Equal(t, 1, login.ListenerCount("submit"), "rebinding on re-render")
	}
	assert.Empty(t, f.nav.assigned)
}

/*
TestGuard_LoginFlow drives a full login through the submit handler: the
credential and snapshot are persisted, the fields reset, and the guard
lands on the mounted customer dashboard.
*/
func TestGuard_LoginFlow(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)

	login := doc.Region(view.RegionLogin)
	login.SetField("email", "alice@toplivres.test")
	login.SetField("password", "alice123")
	login.Dispatch(view.Event{Type: "submit"})

	assert.Equal(t, session.RoleCustomer, f.sess.DecodeRole())
	user, ok := f.sess.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "Alice Martin", user.Name)

	assert.False(t, login.Visible())
	assert.True(t, doc.Region(view.RegionCustomerDashboard).Visible())
	assert.Empty(t, login.Field("email"))
	assert.Empty(t, login.Field("password"))
	assert.Empty(t, f.notifier.Visible())

	f.guard.Logout(ctx)
}

/*
TestGuard_BadCredentialStaysOnLogin verifies a rejected login surfaces a
notice and leaves the login view in place.
*/
func TestGuard_BadCredentialStaysOnLogin(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)

	login := doc.Region(view.RegionLogin)
	login.SetField("email", "alice@toplivres.test")
	login.SetField("password", "wrong")
	login.Dispatch(view.Event{Type: "submit"})

	assert.True(t, login.Visible())
	assert.Equal(t, session.RoleNone, f.sess.DecodeRole())
	require.NotEmpty(t, f.notifier.Visible())
}

/*
TestGuard_WrongShellRedirects verifies the role → home mapping: a customer
on an admin shell is sent home, an admin on a customer shell is sent to the
dashboard.
*/
func TestGuard_WrongShellRedirects(t *testing.T) {
	ctx := context.Background()

	f := newGuardFixture(t)
	f.authenticate(t, "alice@toplivres.test", "alice123")
	f.document(view.ShellAdmin)
	f.guard.Render(ctx)
	assert.Equal(t, []string{"/"}, f.nav.assigned)

	f = newGuardFixture(t)
	f.authenticate(t, "admin@toplivres.test", "admin123")
	f.document(view.ShellCustomer)
	f.guard.Render(ctx)
	assert.Equal(t, []string{"/admin"}, f.nav.assigned)
}

// spyController records lifecycle calls and can fail its mount.
type spyController struct {
	mounts   int
	unmounts int
	err      error
}

func (s *spyController) Mount(context.Context, *pages.Loaded) error {
	s.mounts++
	return s.err
}

func (s *spyController) Unmount() {
	s.unmounts++
}

/*
TestGuard_MountsExclusively verifies re-renders reuse the mounted
controller and logout unmounts it before the login view appears.
*/
func TestGuard_MountsExclusively(t *testing.T) {
	f := newGuardFixture(t)
	f.authenticate(t, "alice@toplivres.test", "alice123")

	spy := &spyController{}
	f.guard.Factory = func(pages.Env, guard.Action) pages.Controller {
		return spy
	}

	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)
	assert.Equal(t, 1, spy.mounts)

	f.guard.Render(ctx)
	assert.Equal(t, 2, spy.mounts, "re-render remounts the cached controller")
	assert.Zero(t, spy.unmounts)

	f.guard.Logout(ctx)
	assert.Equal(t, 1, spy.unmounts)
	assert.True(t, doc.Region(view.RegionLogin).Visible())
	assert.Equal(t, session.RoleNone, f.sess.DecodeRole())
}

/*
TestGuard_ExpiredCredentialFallsBackToLogin verifies an unauthorized mount
failure clears the session and renders the login view without an error
notice.
*/
func TestGuard_ExpiredCredentialFallsBackToLogin(t *testing.T) {
	f := newGuardFixture(t)
	f.authenticate(t, "alice@toplivres.test", "alice123")

	spy := &spyController{err: apperr.Unauthorized("Session expirée.")}
	f.guard.Factory = func(pages.Env, guard.Action) pages.Controller {
		return spy
	}

	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)

	assert.Equal(t, session.RoleNone, f.sess.DecodeRole())
	assert.True(t, doc.Region(view.RegionLogin).Visible())
	assert.Equal(t, 1, spy.unmounts)
	assert.Empty(t, f.notifier.Visible(), "no toast storm for an expired credential")
}

/*
TestGuard_SetDocumentResets verifies installing a new document unmounts the
outgoing controller and starts from cold state.
*/
func TestGuard_SetDocumentResets(t *testing.T) {
	f := newGuardFixture(t)
	f.authenticate(t, "alice@toplivres.test", "alice123")

	spy := &spyController{}
	f.guard.Factory = func(pages.Env, guard.Action) pages.Controller {
		return spy
	}

	ctx := context.Background()
	f.document(view.ShellCustomer)
	f.guard.Render(ctx)
	require.Equal(t, 1, spy.mounts)

	doc := f.document(view.ShellCustomer)
	assert.Equal(t, 1, spy.unmounts, "document swap unmounts the outgoing controller")
	assert.Same(t, doc, f.guard.Document())

	f.guard.Render(ctx)
	assert.Equal(t, 2, spy.mounts)
}

/*
TestGuard_IdentitySwitchStartsCold verifies that logging out and back in
as a different user on the same document discards every warm resource:
the second user gets their own rows and verdict, never the previous
user's.
*/
func TestGuard_IdentitySwitchStartsCold(t *testing.T) {
	f := newGuardFixture(t)
	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)

	login := doc.Region(view.RegionLogin)
	login.SetField("email", "alice@toplivres.test")
	login.SetField("password", "alice123")
	login.Dispatch(view.Event{Type: "submit"})

	history := doc.Region(view.RegionHistory)
	require.Len(t, history.Rows(), 2, "first user's seeded operations")

	f.guard.Logout(ctx)
	require.True(t, login.Visible())

	login.SetField("email", "benoit@toplivres.test")
	login.SetField("password", "benoit123")
	login.Dispatch(view.Event{Type: "submit"})

	assert.Equal(t, "Benoît Caron", doc.Region(view.RegionCustomerNavigation).Text("customer-name"))
	assert.Empty(t, history.Rows(), "no rows inherited from the previous user")
	assert.True(t, history.Empty())
	assert.Empty(t, f.notifier.Visible())

	f.guard.Logout(ctx)
}

/*
TestGuard_EndToEnd mounts the real customer controller through the default
factory against the stub server.
*/
func TestGuard_EndToEnd(t *testing.T) {
	f := newGuardFixture(t)
	f.authenticate(t, "alice@toplivres.test", "alice123")

	ctx := context.Background()
	doc := f.document(view.ShellCustomer)
	f.guard.Render(ctx)

	assert.True(t, doc.Region(view.RegionCustomerDashboard).Visible())
	assert.False(t, doc.Region(view.RegionOrderForm).Empty(), "catalogue rendered")
	assert.Equal(t, "Alice Martin", doc.Region(view.RegionCustomerNavigation).Text("customer-name"))

	f.guard.Logout(ctx)
	assert.True(t, doc.Region(view.RegionLogin).Visible())
	assert.False(t, doc.Region(view.RegionCustomerDashboard).Visible())
}
