// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package pages

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/form"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Admin is the controller of the admin dashboard shell: the two-bucket
// operations table with confirm/delete delegation, the add-book form, and
// the link-through to customer detail pages.
type Admin struct {
	Env

	addBook    *form.AddBookForm
	unbind     []func()
	registered bool
}

// Mount shows the admin dashboard and binds its interactive behavior.
func (a *Admin) Mount(ctx context.Context, loaded *Loaded) error {
	a.Doc.Region(view.RegionAdminDashboard).Show()
	a.Doc.Region(view.RegionAdminOps).Show()
	a.Doc.Region(view.RegionAddBookForm).Show()

	if !loaded.AdminOps {
		if err := a.Loaders.LoadAdminOperations(ctx); err != nil {
			return err
		}
		loaded.AdminOps = true
	}

	if a.addBook == nil {
		a.addBook = &form.AddBookForm{
			API:      a.API,
			Doc:      a.Doc,
			Notifier: a.Notifier,
			Log:      a.Log,
		}
	}
	a.addBook.Bind(ctx)

	if len(a.unbind) == 0 {
		a.bindOperations(ctx)
	}

	if a.Doc.ActivePane() == "" {
		a.Doc.SetActivePane(view.PaneOperations)
	}
	if !a.registered {
		a.registered = true
		a.Poller.Register(view.PaneOperations, func(ctx context.Context) error {
			return a.Loaders.LoadAdminOperations(ctx)
		})
	}
	a.Poller.Start(ctx)
	return nil
}

// Unmount releases every binding and the poller. Idempotent.
func (a *Admin) Unmount() {
	if a.addBook != nil {
		a.addBook.Unbind()
	}
	for _, off := range a.unbind {
		off()
	}
	a.unbind = nil
	a.Poller.Stop()
}

// # Operations delegation

func (a *Admin) bindOperations(ctx context.Context) {
	ops := a.Doc.Region(view.RegionAdminOps)
	if ops == nil {
		return
	}
	a.unbind = append(a.unbind,
		ops.On("click", view.TargetKind("action"), func(event view.Event) {
			a.handleAction(ctx, event.Target)
		}),
		ops.On("click", view.TargetKind("customer-link"), func(event view.Event) {
			if id := event.Target.Data(loader.DataCustomer); id != "" {
				// Full reload: the detail shell is a different document.
				a.Navigate("/admin/users/"+id, true)
			}
		}),
	)
}

// handleAction dispatches one row action: confirm advances the order
// status, delete removes or rejects the operation after a confirmation
// prompt. Deleting a recorded sales report rewinds stock and stats, so its
// prompt spells that impact out.
func (a *Admin) handleAction(ctx context.Context, target view.Target) {
	id, err := strconv.ParseInt(target.Data("id"), 10, 64)
	if err != nil {
		return
	}

	switch target.Data("action") {
	case "confirm":
		if actionErr := a.API.ConfirmOrder(ctx, id); actionErr != nil {
			a.Notifier.Error(actionErr)
			return
		}
	case "delete":
		prompt := i18n.ConfirmDeleteOrder
		if target.Data("type") == api.TypeReport {
			prompt = i18n.ConfirmDeleteReport
		}
		if a.Confirm != nil && !a.Confirm(prompt) {
			return
		}
		if actionErr := a.API.DeleteOperation(ctx, id); actionErr != nil {
			a.Notifier.Error(actionErr)
			return
		}
	default:
		return
	}

	if loadErr := a.Loaders.LoadAdminOperations(ctx); loadErr != nil {
		a.Log.Warn("admin_ops_refresh_failed", slog.Any("error", loadErr))
	}
}
