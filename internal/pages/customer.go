// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package pages

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/form"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// SlotCustomerName is the greeting slot of the customer navigation bar.
const SlotCustomerName = "customer-name"

// Customer is the controller of the customer home shell: order form,
// history with filters and cancellation, inventory, stats, tabs, user
// menu, and the auto-refresh poller.
type Customer struct {
	Env

	orderForm  *form.OrderForm
	settings   *form.SettingsForm
	unbind     []func()
	registered bool
}

// Mount shows the customer dashboard and binds its interactive behavior.
func (c *Customer) Mount(ctx context.Context, loaded *Loaded) error {
	c.Doc.Region(view.RegionCustomerDashboard).Show()
	c.Doc.Region(view.RegionCustomerNavigation).Show()
	c.Doc.Region(view.RegionOrderForm).Show()

	if user, ok := c.Session.CurrentUser(); ok {
		c.Doc.Region(view.RegionCustomerNavigation).SetText(SlotCustomerName, user.Name)
	}

	// Warm-resource guard: a re-entrant guard call must not duplicate the
	// initial fetches.
	if !loaded.Books {
		if err := c.Loaders.LoadBooks(ctx); err != nil {
			return err
		}
		loaded.Books = true
	}
	if !loaded.Orders {
		if err := c.Loaders.LoadOperations(ctx, ""); err != nil {
			return err
		}
		loaded.Orders = true
	}
	if !loaded.Inventory {
		if err := c.Loaders.LoadInventory(ctx); err != nil {
			return err
		}
		loaded.Inventory = true
	}
	if !loaded.Stats {
		if err := c.Loaders.LoadStats(ctx); err != nil {
			return err
		}
		loaded.Stats = true
	}

	if c.orderForm == nil {
		c.orderForm = &form.OrderForm{
			API:      c.API,
			Loaders:  c.Loaders,
			Notifier: c.Notifier,
			Log:      c.Log,
		}
	}
	c.orderForm.Bind(ctx)

	if c.settings == nil {
		c.settings = &form.SettingsForm{
			API:      c.API,
			Doc:      c.Doc,
			Session:  c.Session,
			Notifier: c.Notifier,
			Log:      c.Log,
		}
	}
	c.settings.Bind(ctx)

	if len(c.unbind) == 0 {
		c.bindHistory(ctx)
		c.bindTabs()
		c.bindUserMenu()
	}

	if c.Doc.ActivePane() == "" {
		c.Doc.SetActivePane(view.PaneOrder)
	}

	// Pane loaders register once per controller; the poller outlives
	// mount/unmount cycles within one document.
	if !c.registered {
		c.registered = true
		c.Poller.Register(view.PaneOrder, func(ctx context.Context) error {
			return c.Loaders.LoadBooks(ctx)
		})
		c.Poller.Register(view.PaneHistory, func(ctx context.Context) error {
			return c.Loaders.LoadOperations(ctx, "")
		})
		c.Poller.Register(view.PaneInventory, func(ctx context.Context) error {
			return c.Loaders.LoadInventory(ctx)
		})
		c.Poller.Register(view.PaneStats, func(ctx context.Context) error {
			return c.Loaders.LoadStats(ctx)
		})
	}
	c.Poller.Start(ctx)
	return nil
}

// Unmount releases every binding and the poller. Idempotent.
func (c *Customer) Unmount() {
	if c.orderForm != nil {
		c.orderForm.Unbind()
	}
	if c.settings != nil {
		c.settings.Unbind()
	}
	for _, off := range c.unbind {
		off()
	}
	c.unbind = nil
	c.Poller.Stop()
}

// # History delegation

func (c *Customer) bindHistory(ctx context.Context) {
	history := c.Doc.Region(view.RegionHistory)
	if history == nil {
		return
	}
	c.unbind = append(c.unbind,
		history.On("click", view.TargetKind("cancelBtn"), func(event view.Event) {
			id, err := strconv.ParseInt(event.Target.Data("id"), 10, 64)
			if err != nil {
				return
			}
			if cancelErr := c.API.CancelOrder(ctx, id); cancelErr != nil {
				c.Notifier.Error(cancelErr)
				return
			}
			if loadErr := c.Loaders.LoadOperations(ctx, ""); loadErr != nil {
				c.Log.Warn("history_refresh_failed", slog.Any("error", loadErr))
			}
		}),
		history.On("click", view.TargetKind("filter-btn"), func(event view.Event) {
			if err := c.Loaders.LoadOperations(ctx, event.Target.Data("filter")); err != nil {
				c.Notifier.Error(err)
			}
		}),
	)
}

// # Tabs & user menu

func (c *Customer) bindTabs() {
	nav := c.Doc.Region(view.RegionCustomerNavigation)
	if nav == nil {
		return
	}
	c.unbind = append(c.unbind,
		nav.On("click", view.TargetKind("tab-link"), func(event view.Event) {
			pane := event.Target.Data("tab")
			if pane == "" {
				return
			}
			c.Doc.SetActivePane(pane)
			// Keep the hash in sync for back/forward; the hash-change
			// subscription triggers the pane refresh.
			c.Doc.SetHash(pane)
		}),
	)
}

func (c *Customer) bindUserMenu() {
	nav := c.Doc.Region(view.RegionCustomerNavigation)
	if nav == nil {
		return
	}
	c.unbind = append(c.unbind,
		nav.On("click", view.TargetKind("logout"), func(view.Event) {
			if c.Logout != nil {
				c.Logout()
			}
		}),
		nav.On("click", view.TargetKind("open-settings"), func(view.Event) {
			c.Doc.Region(view.RegionSettings).Show()
		}),
		nav.On("click", view.TargetKind("close-settings"), func(view.Event) {
			c.Doc.Region(view.RegionSettings).Hide()
		}),
	)
}
