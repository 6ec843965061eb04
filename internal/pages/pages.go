// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package pages implements the mount/unmount-bound controllers of each shell.

Architecture:

  - Controller: the mount/unmount contract. Mount is idempotent — a second
    call without an intervening Unmount registers no duplicate listeners,
    starts no duplicate poller, and re-fetches no resource whose loaded
    flag is already set. Unmount is idempotent the other way: never mounted
    or already unmounted is a no-op.
  - Loaded: the shared warm-resource flags, scoped to one document
    lifetime. Switching controllers within one document does not re-fetch a
    warm resource; the refresh protocol relies on each loader being
    independently safe to re-invoke instead.

Idempotence is achieved inside each controller (bind sentinels, the
poller's single-timer guarantee), never delegated to the caller.
*/
package pages

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/loader"
	"github.com/fleuronvilik/toplivres-devgdk/internal/notify"
	"github.com/fleuronvilik/toplivres-devgdk/internal/poller"
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Controller is the mount/unmount contract every page controller honors.
type Controller interface {
	Mount(ctx context.Context, loaded *Loaded) error
	Unmount()
}

// Loaded is the shared "already fetched" flags table, one boolean per
// resource kind, scoped to one document lifetime.
type Loaded struct {
	AdminOps  bool
	Books     bool
	Orders    bool
	Inventory bool
	Stats     bool
}

// Env bundles the collaborators shared by every controller of one
// document. It is an explicit context object — no module-level statics —
// so independent instances (tests, multiple documents) cannot
// cross-contaminate.
type Env struct {
	Doc      *view.Document
	API      *api.Client
	Session  *session.Session
	Loaders  *loader.Set
	Notifier *notify.Notifier
	Poller   *poller.Poller
	Log      *slog.Logger

	// Navigate performs a navigation; hard forces a full document swap.
	Navigate func(path string, hard bool)
	// Confirm asks the user to confirm a destructive action.
	Confirm func(message string) bool
	// Logout tears the session down and re-runs the route guard.
	Logout func()
}

// detailCustomerID reads the inspected customer's id off the detail shell.
func detailCustomerID(doc *view.Document) (int64, bool) {
	region := doc.Region(view.RegionCustomerDetail)
	if region == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(region.Field("customer-id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
