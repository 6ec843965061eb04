// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package pages

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// CustomerDetail is the controller of the admin's per-customer shell: the
// customer's actionable operations, their ten most recent overall, their
// inventory and stats. The inventory tab is active by default.
type CustomerDetail struct {
	Env

	unbind     []func()
	registered bool
}

// Mount shows the detail page and binds its interactive behavior.
func (d *CustomerDetail) Mount(ctx context.Context, loaded *Loaded) error {
	d.Doc.Region(view.RegionCustomerDetail).Show()
	d.Doc.Region(view.RegionCustomerNavigation).Show()

	customerID, ok := detailCustomerID(d.Doc)
	if !ok {
		// Malformed detail page; nothing to load.
		return nil
	}

	if !loaded.AdminOps {
		if err := d.Loaders.LoadAdminCustomerOperations(ctx, customerID); err != nil {
			return err
		}
		loaded.AdminOps = true
	}
	if !loaded.Inventory {
		if err := d.Loaders.LoadInventory(ctx); err != nil {
			return err
		}
		loaded.Inventory = true
	}
	if !loaded.Stats {
		if err := d.Loaders.LoadStats(ctx); err != nil {
			return err
		}
		loaded.Stats = true
	}

	if len(d.unbind) == 0 {
		d.bindOperations(ctx, customerID)
		d.bindTabs()
	}

	if d.Doc.ActivePane() == "" {
		d.Doc.SetActivePane(view.PaneInventory)
	}

	if !d.registered {
		d.registered = true
		d.Poller.Register(view.PaneOperations, func(ctx context.Context) error {
			return d.Loaders.LoadAdminCustomerOperations(ctx, customerID)
		})
		d.Poller.Register(view.PaneInventory, func(ctx context.Context) error {
			return d.Loaders.LoadInventory(ctx)
		})
		d.Poller.Register(view.PaneStats, func(ctx context.Context) error {
			return d.Loaders.LoadStats(ctx)
		})
	}
	d.Poller.Start(ctx)
	return nil
}

// Unmount releases every binding and the poller. Idempotent.
func (d *CustomerDetail) Unmount() {
	for _, off := range d.unbind {
		off()
	}
	d.unbind = nil
	d.Poller.Stop()
}

func (d *CustomerDetail) bindOperations(ctx context.Context, customerID int64) {
	ops := d.Doc.Region(view.RegionDetailOps)
	if ops == nil {
		return
	}
	d.unbind = append(d.unbind,
		ops.On("click", view.TargetKind("action"), func(event view.Event) {
			id, err := strconv.ParseInt(event.Target.Data("id"), 10, 64)
			if err != nil {
				return
			}
			switch event.Target.Data("action") {
			case "confirm":
				if actionErr := d.API.ConfirmOrder(ctx, id); actionErr != nil {
					d.Notifier.Error(actionErr)
					return
				}
			case "delete":
				prompt := i18n.ConfirmDeleteOrder
				if event.Target.Data("type") == api.TypeReport {
					prompt = i18n.ConfirmDeleteReport
				}
				if d.Confirm != nil && !d.Confirm(prompt) {
					return
				}
				if actionErr := d.API.DeleteOperation(ctx, id); actionErr != nil {
					d.Notifier.Error(actionErr)
					return
				}
			default:
				return
			}
			if loadErr := d.Loaders.LoadAdminCustomerOperations(ctx, customerID); loadErr != nil {
				d.Log.Warn("detail_ops_refresh_failed", slog.Any("error", loadErr))
			}
		}),
	)
}

func (d *CustomerDetail) bindTabs() {
	nav := d.Doc.Region(view.RegionCustomerNavigation)
	if nav == nil {
		return
	}
	d.unbind = append(d.unbind,
		nav.On("click", view.TargetKind("tab-link"), func(event view.Event) {
			pane := event.Target.Data("tab")
			if pane == "" {
				return
			}
			d.Doc.SetActivePane(pane)
			d.Doc.SetHash(pane)
		}),
	)
}
