// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package form

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/validate"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// CtrlAddBook is the submit control of the add-book form.
const CtrlAddBook = "submit-add-book"

// AddBookForm binds the admin catalogue form.
type AddBookForm struct {
	API      *api.Client
	Doc      *view.Document
	Notifier *notify.Notifier
	Log      *slog.Logger

	// AfterCreate, when set, runs after a successful creation — typically
	// a catalogue re-fetch.
	AfterCreate func(ctx context.Context)

	unbind func()
}

// Bind attaches the submit handler. Idempotent behind the unbind sentinel.
func (f *AddBookForm) Bind(ctx context.Context) {
	if f.unbind != nil {
		return
	}
	region := f.Doc.Region(view.RegionAddBookForm)
	if region == nil {
		return
	}
	f.unbind = region.On("submit", nil, func(view.Event) {
		f.submit(ctx, region)
	})
}

// Unbind releases the handler; safe to call twice.
func (f *AddBookForm) Unbind() {
	if f.unbind != nil {
		f.unbind()
		f.unbind = nil
	}
}

func (f *AddBookForm) submit(ctx context.Context, region *view.Region) {
	title := region.Field("title")
	price, priceErr := strconv.ParseFloat(region.Field("unit_price"), 64)

	v := &validate.Validator{}
	v.Required("title", title).
		Custom("unit_price", priceErr != nil, "Doit être un nombre").
		Positive("unit_price", price)
	if err := v.Err(); err != nil {
		f.Notifier.Error(err)
		return
	}

	region.SetDisabled(CtrlAddBook, true)
	defer region.SetDisabled(CtrlAddBook, false)

	book, err := f.API.AddBook(ctx, title, price)
	if err != nil {
		f.Notifier.Error(err)
		return
	}

	f.Notifier.Success(i18n.ToastBookAdded + " « " + book.Title + " »")
	region.ResetFields()
	if f.AfterCreate != nil {
		f.AfterCreate(ctx)
	}
}
