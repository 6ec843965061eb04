// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package form_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/form"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/stubapi"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

type tokenHolder struct{ token string }

func (h *tokenHolder) Token() string { return h.token }

// formFixture wires a customer document against a fresh stub API, logged
// in and with the catalogue loaded.
type formFixture struct {
	doc      *view.Document
	region   *view.Region
	orders   *form.OrderForm
	loaders  *loader.Set
	notifier *notify.Notifier
	client   *api.Client
}

func newFormFixture(t *testing.T, email, password string) *formFixture {
	t.Helper()
	stub := stubapi.New(nil)
	server := httptest.NewServer(stub.Handler())
	t.Cleanup(server.Close)

	creds := &tokenHolder{}
	client := api.NewClient(server.URL, server.Client(), nil, creds, func() string {
		return stub.CSRFToken()
	})

	ctx := context.Background()
	response, err := client.Login(ctx, email, password)
	require.NoError(t, err)
	creds.token = response.AccessToken
	user, err := client.Me(ctx)
	require.NoError(t, err)

	doc := view.NewDocument(view.ShellCustomer, stub.CSRFToken())
	loaders := &loader.Set{
		API:     client,
		Doc:     doc,
		Blocked: &loader.BlockedState{},
		TargetCustomer: func() (int64, bool) {
			return user.ID, true
		},
	}
	require.NoError(t, loaders.LoadBooks(ctx))
	require.NoError(t, loaders.LoadOperations(ctx, ""))

	notifier := notify.New(notify.DefaultCap, nil)
	orders := &form.OrderForm{API: client, Loaders: loaders, Notifier: notifier}
	orders.Bind(ctx)

	return &formFixture{
		doc:      doc,
		region:   doc.Region(view.RegionOrderForm),
		orders:   orders,
		loaders:  loaders,
		notifier: notifier,
		client:   client,
	}
}

func (f *formFixture) submit(action string) {
	f.region.Dispatch(view.Event{Type: "submit", Target: view.Target{
		Dataset: map[string]string{"action": action},
	}})
}

/*
TestOrderForm_BindIsIdempotent verifies a re-entrant mount registers no
duplicate handlers and Unbind releases them all.
*/
func TestOrderForm_BindIsIdempotent(t *testing.T) {
	f := newFormFixture(t, "benoit@toplivres.test", "benoit123")

	f.orders.Bind(context.Background())
	f.orders.Bind(context.Background())
	assert.Equal(t, 1, f.region.ListenerCount("submit"))
	assert.Equal(t, 1, f.region.ListenerCount("input"))

	f.orders.Unbind()
	f.orders.Unbind()
	assert.Equal(t, 0, f.region.ListenerCount("submit"))
	assert.Equal(t, 0, f.region.ListenerCount("input"))
}

/*
TestOrderForm_CollectsOnlyPositiveQuantities verifies zero, negative and
non-numeric inputs are excluded from the submitted items, never coerced.
*/
func TestOrderForm_CollectsOnlyPositiveQuantities(t *testing.T) {
	f := newFormFixture(t, "benoit@toplivres.test", "benoit123")
	ctx := context.Background()

	f.region.SetField("qty-1", "2")
	f.region.SetField("qty-2", "0")
	f.region.SetField("qty-3", "-4")
	f.region.SetField("notes", "ignored")
	f.submit(form.ActionOrder)

	ops, err := f.client.Operations(ctx, "")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Len(t, ops[0].Items, 1)
	assert.Equal(t, int64(1), ops[0].Items[0].BookID)
	assert.Equal(t, 2, ops[0].Items[0].Quantity)

	// Success clears the inputs and toasts.
	assert.Empty(t, f.region.Field("qty-1"))
	require.NotEmpty(t, f.notifier.Visible())
	assert.Equal(t, i18n.ToastOrderSubmitted, f.notifier.Visible()[0].Message)
}

/*
TestOrderForm_NonNumericQuantityRefusedLocally verifies an all-garbage
form never reaches the network.
*/
func TestOrderForm_NonNumericQuantityRefusedLocally(t *testing.T) {
	f := newFormFixture(t, "benoit@toplivres.test", "benoit123")

	f.region.SetField("qty-1", "beaucoup")
	f.submit(form.ActionOrder)

	ops, err := f.client.Operations(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, ops)
	require.NotEmpty(t, f.notifier.Visible())
	assert.Equal(t, i18n.ValidationNoItems, f.notifier.Visible()[0].Message)
}

/*
TestOrderForm_SaleStockCeiling verifies a sale exceeding the known stock
marks the offending rows and issues no API call.
*/
func TestOrderForm_SaleStockCeiling(t *testing.T) {
	// Alice's seed stock: 6 of book 1, 5 of book 2.
	f := newFormFixture(t, "alice@toplivres.test", "alice123")
	ctx := context.Background()

	f.region.SetField("qty-1", "7")
	f.region.SetField("qty-2", "3")
	f.submit(form.ActionSale)

	assert.NotEmpty(t, f.region.RowError(1))
	assert.Empty(t, f.region.RowError(2))

	reports, err := f.client.Operations(ctx, api.TypeReport)
	require.NoError(t, err)
	assert.Len(t, reports, 1, "only the seed report; the submission was refused locally")

	// Within the ceiling the sale goes through and errors clear.
	f.region.SetField("qty-1", "6")
	f.region.SetField("qty-2", "")
	f.submit(form.ActionSale)

	assert.Empty(t, f.region.RowError(1))
	reports, err = f.client.Operations(ctx, api.TypeReport)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

/*
TestOrderForm_BlockedGate verifies the optimistic local gate: a blocked
verdict writes the banner and refuses the order without a network call.
*/
func TestOrderForm_BlockedGate(t *testing.T) {
	f := newFormFixture(t, "benoit@toplivres.test", "benoit123")
	ctx := context.Background()

	f.loaders.Blocked.Update(loader.Verdict{Blocked: true, Reason: i18n.BlockedPending})

	f.region.SetField("qty-1", "1")
	f.submit(form.ActionOrder)

	assert.Equal(t, i18n.BlockedPending, f.region.Text(form.SlotBlockedBanner))
	ops, err := f.client.Operations(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ops)
}

/*
TestOrderForm_ServerBlockedUpdatesBanner verifies the server 403 lands in
the banner, not the toast area, and re-enables the submit controls.
*/
func TestOrderForm_ServerBlockedUpdatesBanner(t *testing.T) {
	f := newFormFixture(t, "benoit@toplivres.test", "benoit123")
	ctx := context.Background()

	// A pending order exists server-side, but the local verdict is stale.
	require.NoError(t, f.client.CreateOrder(ctx, []api.OperationItem{{BookID: 2, Quantity: 1}}))
	f.loaders.Blocked.Update(loader.Verdict{})

	f.region.SetField("qty-1", "1")
	f.submit(form.ActionOrder)

	assert.Equal(t, i18n.BlockedPending, f.region.Text(form.SlotBlockedBanner))
	assert.True(t, f.loaders.Blocked.Current().Blocked)
	assert.Empty(t, f.notifier.Visible())
	assert.False(t, f.region.Disabled(form.CtrlSubmitOrder))
	assert.False(t, f.region.Disabled(form.CtrlSubmitSale))
}

/*
TestOrderForm_RecalcRunningTotal verifies the unit-price × quantity total
and the helper line react to quantity edits.
*/
func TestOrderForm_RecalcRunningTotal(t *testing.T) {
	f := newFormFixture(t, "alice@toplivres.test", "alice123")

	assert.Equal(t, i18n.FormHelperIdle, f.region.Text(form.SlotHelper))

	// 2 × 7,90 = 15,80 for book 1.
	f.region.SetField("qty-1", "2")
	f.region.Dispatch(view.Event{Type: "input"})

	assert.Equal(t, i18n.FormHelperSelected, f.region.Text(form.SlotHelper))
	assert.Contains(t, f.region.Text(form.SlotTotal), "15,80")
}
