// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package view

import (
	"sync"

	"github.com/fleuronvilik/toplivres-devgdk/pkg/eventhub"
)

// # Events

// Event is a user interaction bubbling through a region.
type Event struct {
	// Type is the interaction kind ("click", "submit", "input").
	Type string
	// Target describes the element the interaction landed on.
	Target Target
}

// Target mirrors the dataset-carrying element of the original delegation
// pattern: handlers match on Kind (the selector class) and read Dataset.
type Target struct {
	Kind    string
	Dataset map[string]string
}

// Data returns a dataset value, empty when absent.
func (t Target) Data(key string) string {
	return t.Dataset[key]
}

// # Rows

// Row is one rendered table line. Cells are display strings; Data carries
// the machine-readable attributes handlers need (ids, statuses).
type Row struct {
	ID    int64
	Cells []string
	Data  map[string]string
}

// # Region

// Region is a mountable UI fragment: a table with full-replace rendering
// and an empty-state element, a set of named form fields and controls, and
// per-event-type delegation hubs.
type Region struct {
	mu        sync.RWMutex
	id        string
	visible   bool
	empty     bool
	rows      []Row
	fields    map[string]string
	disabled  map[string]bool
	texts     map[string]string
	rowErrors map[int64]string
	hubs      map[string]*eventhub.Hub[Event]
}

func newRegion(id string) *Region {
	return &Region{
		id:        id,
		empty:     true,
		fields:    map[string]string{},
		disabled:  map[string]bool{},
		texts:     map[string]string{},
		rowErrors: map[int64]string{},
		hubs:      map[string]*eventhub.Hub[Event]{},
	}
}

// ID returns the region identifier.
func (r *Region) ID() string { return r.id }

// # Visibility

// Show makes the region visible. Safe on nil.
func (r *Region) Show() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.visible = true
	r.mu.Unlock()
}

// Hide makes the region invisible. Safe on nil.
func (r *Region) Hide() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.visible = false
	r.mu.Unlock()
}

// Visible reports whether the region is shown. A nil region is not visible.
func (r *Region) Visible() bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.visible
}

// # Table rendering

// SetRows fully replaces the rendered rows. Rendering always starts from a
// clear: the last writer wins, which is the documented eventual-consistency
// contract between racing loader calls. The empty-state element toggles
// against the data table based on the row count.
func (r *Region) SetRows(rows []Row) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.rows = rows
	r.empty = len(rows) == 0
	r.mu.Unlock()
}

// Rows returns the currently rendered rows.
func (r *Region) Rows() []Row {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows
}

// Empty reports whether the empty-state element is shown instead of the
// data table.
func (r *Region) Empty() bool {
	if r == nil {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.empty
}

// # Form fields & controls

// SetField sets a named input value.
func (r *Region) SetField(name, value string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.fields[name] = value
	r.mu.Unlock()
}

// Field returns a named input value, empty when unset.
func (r *Region) Field(name string) string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fields[name]
}

// Fields returns a copy of all input values.
func (r *Region) Fields() map[string]string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	copied := make(map[string]string, len(r.fields))
	for name, value := range r.fields {
		copied[name] = value
	}
	return copied
}

// ResetFields clears every input value (form.reset()).
func (r *Region) ResetFields() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.fields = map[string]string{}
	r.mu.Unlock()
}

// SetDisabled flips the disabled state of a named control.
func (r *Region) SetDisabled(control string, disabled bool) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.disabled[control] = disabled
	r.mu.Unlock()
}

// Disabled reports whether a named control is disabled.
func (r *Region) Disabled(control string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.disabled[control]
}

// # Text slots

// SetText sets a named text slot (banner, running total, helper line).
func (r *Region) SetText(slot, text string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.texts[slot] = text
	r.mu.Unlock()
}

// Text returns a named text slot, empty when unset.
func (r *Region) Text(slot string) string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.texts[slot]
}

// # Row-level errors

// SetRowError marks one row (keyed by book id) with an inline error.
func (r *Region) SetRowError(rowID int64, message string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.rowErrors[rowID] = message
	r.mu.Unlock()
}

// RowError returns the inline error of a row, empty when clean.
func (r *Region) RowError(rowID int64) string {
	if r == nil {
		return ""
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rowErrors[rowID]
}

// ClearRowErrors removes every inline row error.
func (r *Region) ClearRowErrors() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.rowErrors = map[int64]string{}
	r.mu.Unlock()
}

// # Event delegation

// On registers a delegated handler for one event type. match filters on the
// bubbled target (nil matches all); the returned function removes exactly
// this binding.
func (r *Region) On(eventType string, match func(Target) bool, handler func(Event)) (unsubscribe func()) {
	if r == nil {
		return func() {}
	}
	return r.hub(eventType).On(func(event Event) bool {
		return match == nil || match(event.Target)
	}, handler)
}

// Dispatch delivers an event to the region's delegated handlers.
func (r *Region) Dispatch(event Event) {
	if r == nil {
		return
	}
	r.mu.RLock()
	hub := r.hubs[event.Type]
	r.mu.RUnlock()
	if hub != nil {
		hub.Emit(event)
	}
}

// ListenerCount reports how many handlers are bound for one event type.
// Exposed so tests can assert mount idempotence.
func (r *Region) ListenerCount(eventType string) int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if hub, ok := r.hubs[eventType]; ok {
		return hub.Len()
	}
	return 0
}

func (r *Region) hub(eventType string) *eventhub.Hub[Event] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hub, ok := r.hubs[eventType]; ok {
		return hub
	}
	hub := &eventhub.Hub[Event]{}
	r.hubs[eventType] = hub
	return hub
}

// TargetKind returns a predicate matching targets of one kind, the typed
// equivalent of a closest-selector match.
func TargetKind(kind string) func(Target) bool {
	return func(target Target) bool { return target.Kind == kind }
}
