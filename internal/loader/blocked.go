// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package loader

import (
	"sync"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
)

// Verdict is the outcome of the order-blocked derivation: whether a new
// order may be submitted, and the banner message when it may not.
type Verdict struct {
	Blocked bool
	Reason  string
}

// DeriveBlocked computes the order-blocked state from a full operations
// list.
//
// An order is blocked when either:
//
//  1. any non-cancelled order is still pending or approved, or
//  2. the most recent order (by timestamp, identifier tie-break) is
//     delivered and no report has been recorded at or after that delivery
//     (identifier tie-break again).
//
// The client only mirrors this rule for optimistic form gating; the server
// re-validates on submission.
func DeriveBlocked(operations []api.Operation) Verdict {
	var lastOrder *api.Operation

	for i := range operations {
		op := operations[i]
		if op.Type != api.TypeOrder || op.Status == api.StatusCancelled {
			continue
		}
		if op.Status == api.StatusPending || op.Status == api.StatusApproved {
			return Verdict{Blocked: true, Reason: i18n.BlockedPending}
		}
		if lastOrder == nil || laterThan(op, *lastOrder) {
			lastOrder = &operations[i]
		}
	}

	if lastOrder == nil || lastOrder.Status != api.StatusDelivered {
		return Verdict{}
	}

	for _, op := range operations {
		if op.Type == api.TypeReport && op.Status != api.StatusCancelled && !laterThan(*lastOrder, op) {
			// A report exists at or after the last delivery.
			return Verdict{}
		}
	}
	return Verdict{Blocked: true, Reason: i18n.BlockedReportRequired}
}

// laterThan reports whether a is strictly more recent than b, comparing
// timestamps first and identifiers when the timestamps are equal or
// unparsable.
func laterThan(a, b api.Operation) bool {
	timeA, okA := a.Time()
	timeB, okB := b.Time()
	if okA && okB && !timeA.Equal(timeB) {
		return timeA.After(timeB)
	}
	return a.ID > b.ID
}

// BlockedState is the shared, banner-backing blocked verdict. It is
// recomputed after operations fetches and consulted synchronously by the
// order form before any network call.
type BlockedState struct {
	mu      sync.RWMutex
	verdict Verdict
}

// Current returns the latest verdict.
func (s *BlockedState) Current() Verdict {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verdict
}

// Update replaces the verdict.
func (s *BlockedState) Update(verdict Verdict) {
	s.mu.Lock()
	s.verdict = verdict
	s.mu.Unlock()
}

// BlockByServer applies a server-signaled rejection immediately, without
// waiting for the next poll cycle.
func (s *BlockedState) BlockByServer(message string) {
	if message == "" {
		message = i18n.BlockedPending
	}
	s.Update(Verdict{Blocked: true, Reason: message})
}
