// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package form binds the mutation forms: the shared order/sale entry form,
the admin add-book form, and the settings modal.

Every binder follows the same submit protocol: validate locally, disable
the submit controls, call the API, trigger the dependent resource loaders
on success, and re-enable the controls in a deferred path regardless of
outcome. No failure may leave a submit control permanently disabled.
*/
package form

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Form actions, carried by the submit control that triggered the event.
const (
	ActionOrder = "order"
	ActionSale  = "sale"
)

// Named controls and text slots of the order form region.
const (
	CtrlSubmitOrder = "submit-order"
	CtrlSubmitSale  = "submit-sale"

	SlotBlockedBanner = "order-blocked-banner"
	SlotTotal         = "books-total"
	SlotHelper        = "books-helper"
)

// qtyPrefix is the field-name prefix of the per-book quantity inputs.
const qtyPrefix = "qty-"

// OrderForm owns the shared order/sale entry form.
type OrderForm struct {
	API      *api.Client
	Loaders  *loader.Set
	Notifier *notify.Notifier
	Log      *slog.Logger

	unbind []func()
}

// Bind attaches the submit and recalculation handlers to the order form
// region. Binding is idempotent: a second call without an intervening
// Unbind is a no-op, guarded by the unbind-handle sentinel.
func (f *OrderForm) Bind(ctx context.Context) {
	if len(f.unbind) > 0 {
		return
	}
	region := f.Loaders.Doc.Region(view.RegionOrderForm)
	if region == nil {
		return
	}

	f.unbind = append(f.unbind,
		region.On("submit", nil, func(event view.Event) {
			f.submit(ctx, region, event.Target.Data("action"))
		}),
		region.On("input", nil, func(view.Event) {
			f.Recalc(region)
		}),
	)
	f.Recalc(region)
}

// Unbind releases the handlers. Calling it when never bound, or twice, is
// a no-op.
func (f *OrderForm) Unbind() {
	for _, off := range f.unbind {
		off()
	}
	f.unbind = nil
}

// # Submission

func (f *OrderForm) submit(ctx context.Context, region *view.Region, action string) {
	items := collectItems(region.Fields())
	if len(items) == 0 {
		f.Notifier.Notify(notify.KindError, i18n.ValidationNoItems)
		return
	}

	switch action {
	case ActionSale:
		if !f.validateStock(region, items) {
			return
		}
	case ActionOrder:
		// Optimistic local gate; the server remains the authority.
		if verdict := f.Loaders.Blocked.Current(); verdict.Blocked {
			region.SetText(SlotBlockedBanner, verdict.Reason)
			return
		}
	default:
		return
	}

	region.SetDisabled(CtrlSubmitOrder, true)
	region.SetDisabled(CtrlSubmitSale, true)
	defer func() {
		// Always re-enable, whatever happened above.
		region.SetDisabled(CtrlSubmitOrder, false)
		region.SetDisabled(CtrlSubmitSale, false)
	}()

	var err error
	if action == ActionOrder {
		err = f.API.CreateOrder(ctx, items)
	} else {
		err = f.API.CreateSale(ctx, items)
	}

	if err != nil {
		if apperr.IsBlocked(err) {
			// Server-signaled business rejection: update the persistent
			// banner immediately instead of toasting.
			f.Loaders.Blocked.BlockByServer(apperr.As(err).Message)
			region.SetText(SlotBlockedBanner, f.Loaders.Blocked.Current().Reason)
			return
		}
		f.Notifier.Error(err)
		return
	}

	region.ResetFields()
	region.ClearRowErrors()
	region.SetText(SlotBlockedBanner, "")

	// Refresh dependent resources. Orders history always; a sale also moves
	// stock, so the inventory and the stock hints re-pull too.
	if loadErr := f.Loaders.LoadOperations(ctx, ""); loadErr != nil {
		f.Log.Warn("post_submit_refresh_failed", slog.Any("error", loadErr))
	}
	if action == ActionSale {
		if loadErr := f.Loaders.LoadInventory(ctx); loadErr != nil {
			f.Log.Warn("post_submit_refresh_failed", slog.Any("error", loadErr))
		}
		if loadErr := f.Loaders.LoadBooks(ctx); loadErr != nil {
			f.Log.Warn("post_submit_refresh_failed", slog.Any("error", loadErr))
		}
		f.Notifier.Success(i18n.ToastSaleRecorded)
	} else {
		f.Notifier.Success(i18n.ToastOrderSubmitted)
	}
	f.Recalc(region)
}

// collectItems extracts the item list from the quantity inputs. Only
// positive integer quantities are collected: zero, negative, and
// non-numeric values are excluded, never coerced.
func collectItems(fields map[string]string) []api.OperationItem {
	var items []api.OperationItem
	for name, value := range fields {
		if !strings.HasPrefix(name, qtyPrefix) {
			continue
		}
		bookID, err := strconv.ParseInt(strings.TrimPrefix(name, qtyPrefix), 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || quantity <= 0 {
			continue
		}
		items = append(items, api.OperationItem{BookID: bookID, Quantity: quantity})
	}
	return items
}

// validateStock enforces the sale ceiling client-side: no item may exceed
// its row's known stock. Violations mark the offending rows and block the
// submission without any network call.
func (f *OrderForm) validateStock(region *view.Region, items []api.OperationItem) bool {
	region.ClearRowErrors()
	valid := true
	for _, item := range items {
		if ceiling := f.Loaders.Stock(item.BookID); item.Quantity > ceiling {
			region.SetRowError(item.BookID, i18n.ValidationExceedsStock(ceiling))
			valid = false
		}
	}
	return valid
}

// # Running total

// Recalc recomputes the running line total (unit price × quantity over
// positive rows) and the helper line. Invoked on every quantity edit.
func (f *OrderForm) Recalc(region *view.Region) {
	if region == nil {
		return
	}
	total := decimal.Zero
	selected := 0
	for name, value := range region.Fields() {
		if !strings.HasPrefix(name, qtyPrefix) {
			continue
		}
		bookID, err := strconv.ParseInt(strings.TrimPrefix(name, qtyPrefix), 10, 64)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || quantity <= 0 {
			continue
		}
		selected++
		total = total.Add(f.Loaders.Price(bookID).Mul(decimal.NewFromInt(int64(quantity))))
	}

	region.SetText(SlotTotal, i18n.FormatCurrency(total))
	if selected > 0 {
		region.SetText(SlotHelper, i18n.FormHelperSelected)
	} else {
		region.SetText(SlotHelper, i18n.FormHelperIdle)
	}
}
