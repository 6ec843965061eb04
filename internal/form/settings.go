// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package form

import (
	"context"
	"log/slog"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/validate"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Settings modal actions and controls.
const (
	ActionProfile  = "profile"
	ActionPassword = "password"

	CtrlSaveProfile  = "save-profile"
	CtrlSavePassword = "save-password"
)

// SettingsForm binds the settings modal: partial profile updates and
// password changes.
type SettingsForm struct {
	API      *api.Client
	Doc      *view.Document
	Session  *session.Session
	Notifier *notify.Notifier
	Log      *slog.Logger

	unbind func()
}

// Bind attaches the submit handler. Idempotent behind the unbind sentinel.
func (f *SettingsForm) Bind(ctx context.Context) {
	if f.unbind != nil {
		return
	}
	region := f.Doc.Region(view.RegionSettings)
	if region == nil {
		return
	}
	f.unbind = region.On("submit", nil, func(event view.Event) {
		switch event.Target.Data("action") {
		case ActionProfile:
			f.saveProfile(ctx, region)
		case ActionPassword:
			f.savePassword(ctx, region)
		}
	})
}

// Unbind releases the handler; safe to call twice.
func (f *SettingsForm) Unbind() {
	if f.unbind != nil {
		f.unbind()
		f.unbind = nil
	}
}

// saveProfile sends only the fields the user filled in and re-persists the
// current-user snapshot from the server's response, so the cached copy
// tracks server truth.
func (f *SettingsForm) saveProfile(ctx context.Context, region *view.Region) {
	fields := map[string]string{}
	for _, name := range []string{"name", "email", "phone"} {
		if value := region.Field(name); value != "" {
			fields[name] = value
		}
	}

	v := &validate.Validator{}
	if email, ok := fields["email"]; ok {
		v.Email("email", email)
	}
	if err := v.Err(); err != nil {
		f.Notifier.Error(err)
		return
	}

	region.SetDisabled(CtrlSaveProfile, true)
	defer region.SetDisabled(CtrlSaveProfile, false)

	user, err := f.API.UpdateProfile(ctx, fields)
	if err != nil {
		f.Notifier.Error(err)
		return
	}
	if err := f.Session.SetCurrentUser(user); err != nil {
		f.Log.Warn("snapshot_persist_failed", slog.Any("error", err))
	}
	f.Notifier.Success(i18n.ToastProfileSaved)
}

func (f *SettingsForm) savePassword(ctx context.Context, region *view.Region) {
	current := region.Field("current_password")
	next := region.Field("new_password")

	v := &validate.Validator{}
	v.Required("current_password", current).
		Required("new_password", next).
		MinLen("new_password", next, 8)
	if err := v.Err(); err != nil {
		f.Notifier.Error(err)
		return
	}

	region.SetDisabled(CtrlSavePassword, true)
	defer region.SetDisabled(CtrlSavePassword, false)

	if err := f.API.ChangePassword(ctx, current, next); err != nil {
		f.Notifier.Error(err)
		return
	}
	region.SetField("current_password", "")
	region.SetField("new_password", "")
	f.Notifier.Success(i18n.ToastPasswordSaved)
}
