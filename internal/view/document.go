// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package view models the client's rendering surface without a browser.

Architecture:

  - Document: the currently loaded page shell — an explicit [Shell] enum,
    a set of named regions, a visibility flag, the location hash, and the
    embedded CSRF token.
  - Region: a mountable UI fragment (table, form, banner) with full-replace
    row rendering, empty-state toggling, and typed event delegation built on
    [eventhub.Hub].

The shell kind is carried explicitly by the Document for determinism and
testability; [ProbeShell] keeps the legacy probe-which-roots-exist behavior
as a fallback adapter.

Every lookup is nil-safe: a loader resolving after its controller was
unmounted finds absent regions and renders nothing.
*/
package view

import (
	"sync"

	"github.com/fleuronvilik/toplivres-devgdk/pkg/eventhub"
)

// # Shells

// Shell identifies the static document variant currently loaded.
type Shell int

const (
	// ShellNone is an unknown or empty document.
	ShellNone Shell = iota
	// ShellAdmin is the admin dashboard page.
	ShellAdmin
	// ShellCustomerDetail is the admin's per-customer page.
	ShellCustomerDetail
	// ShellCustomer is the customer home page.
	ShellCustomer
)

// String returns the shell name used in logs.
func (s Shell) String() string {
	switch s {
	case ShellAdmin:
		return "admin"
	case ShellCustomerDetail:
		return "customer-detail"
	case ShellCustomer:
		return "customer"
	default:
		return "none"
	}
}

// # Region identifiers

// Region IDs mirror the root containers of the server-rendered pages.
const (
	RegionLogin = "login-form"

	RegionAdminDashboard = "admin-dashboard"
	RegionAdminOps       = "admin-ops-table"
	RegionAddBookForm    = "add-book-form"

	RegionCustomerDashboard  = "customer-dashboard"
	RegionCustomerNavigation = "customer-navigation"
	RegionOrderForm          = "operation-form"
	RegionHistory            = "customer-history"
	RegionInventory          = "customer-inventory"
	RegionStats              = "customer-stats"
	RegionSettings           = "settings-modal"

	RegionCustomerDetail = "customer-detail"
	RegionDetailOps      = "admin-customer-ops"
)

// Tab pane names, synced to the location hash.
const (
	PaneOrder      = "order"
	PaneHistory    = "history"
	PaneInventory  = "inventory"
	PaneStats      = "stats"
	PaneOperations = "operations"
)

// regionsByShell declares which root containers exist per document variant.
var regionsByShell = map[Shell][]string{
	ShellNone: {RegionLogin},
	ShellAdmin: {
		RegionLogin, RegionAdminDashboard, RegionAdminOps, RegionAddBookForm,
	},
	ShellCustomer: {
		RegionLogin, RegionCustomerDashboard, RegionCustomerNavigation,
		RegionOrderForm, RegionHistory, RegionInventory, RegionStats,
		RegionSettings,
	},
	ShellCustomerDetail: {
		RegionLogin, RegionCustomerDetail, RegionCustomerNavigation,
		RegionDetailOps, RegionInventory, RegionStats,
	},
}

// # Document

// Document is the currently loaded page.
//
// # Concurrency
//
// Document is safe for concurrent use; the poller goroutine reads the
// hidden flag and active pane while the main flow mutates regions.
type Document struct {
	mu         sync.RWMutex
	shell      Shell
	csrf       string
	hidden     bool
	hash       string
	activePane string
	regions    map[string]*Region
	hashHub    eventhub.Hub[string]
}

// NewDocument builds a document for the given shell, with its static root
// regions present and everything hidden (the guard decides what to show).
func NewDocument(shell Shell, csrf string) *Document {
	doc := &Document{
		shell:   shell,
		csrf:    csrf,
		regions: map[string]*Region{},
	}
	for _, id := range regionsByShell[shell] {
		doc.regions[id] = newRegion(id)
	}
	return doc
}

// Shell returns the explicit shell kind of this document.
func (d *Document) Shell() Shell {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.shell
}

// CSRF returns the anti-forgery token embedded in the document.
func (d *Document) CSRF() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.csrf
}

// Region returns the named region, or nil when this shell does not carry it.
func (d *Document) Region(id string) *Region {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.regions[id]
}

// HideAll hides every region (the guard's blank slate before mounting).
func (d *Document) HideAll() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, region := range d.regions {
		region.Hide()
	}
}

// # Visibility

// Hidden reports whether the document is currently not visible (background
// tab). The poller skips ticks entirely while hidden.
func (d *Document) Hidden() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hidden
}

// SetHidden flips the visibility flag.
func (d *Document) SetHidden(hidden bool) {
	d.mu.Lock()
	d.hidden = hidden
	d.mu.Unlock()
}

// # Tabs & hash

// ActivePane returns the currently active tab pane.
func (d *Document) ActivePane() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.activePane
}

// SetActivePane activates a tab pane.
func (d *Document) SetActivePane(pane string) {
	d.mu.Lock()
	d.activePane = pane
	d.mu.Unlock()
}

// Hash returns the current location hash (without the leading '#').
func (d *Document) Hash() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hash
}

// SetHash updates the location hash and notifies hash-change subscribers
// when the value actually changed.
func (d *Document) SetHash(hash string) {
	d.mu.Lock()
	changed := d.hash != hash
	d.hash = hash
	d.mu.Unlock()
	if changed {
		d.hashHub.Emit(hash)
	}
}

// OnHashChange subscribes to hash changes. The returned function removes
// exactly this subscription.
func (d *Document) OnHashChange(handler func(hash string)) (unsubscribe func()) {
	return d.hashHub.On(nil, handler)
}

// # Shell probing (fallback adapter)

// ProbeShell derives the shell kind by checking which root containers exist,
// mirroring the legacy DOM-presence detection. Prefer [Document.Shell].
func ProbeShell(d *Document) Shell {
	switch {
	case d.Region(RegionAdminDashboard) != nil:
		return ShellAdmin
	case d.Region(RegionCustomerDetail) != nil:
		return ShellCustomerDetail
	case d.Region(RegionCustomerNavigation) != nil:
		return ShellCustomer
	default:
		return ShellNone
	}
}
