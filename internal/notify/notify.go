// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package notify renders transient user-facing messages.

Architecture:

  - Notifier: an in-memory toast host with a visible-count cap.
  - Deduplication: structured field errors surface as one notice per
    (field, message) pair, deduplicated within a single call.
  - Silence policy: poller failures are never surfaced here; they retry
    silently on the next tick.
*/
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
)

// Kind classifies a notice for styling.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notice is one visible toast.
type Notice struct {
	Kind    Kind
	Message string
}

// DefaultCap is the maximum number of simultaneously visible notices;
// older ones are evicted first.
const DefaultCap = 5

// Notifier is the toast host.
type Notifier struct {
	mu      sync.Mutex
	cap     int
	notices []Notice
	log     *slog.Logger
}

// New constructs a Notifier. capacity <= 0 falls back to [DefaultCap];
// log may be nil.
func New(capacity int, log *slog.Logger) *Notifier {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{cap: capacity, log: log}
}

// Notify appends a notice, evicting the oldest past the cap.
func (n *Notifier) Notify(kind Kind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, Notice{Kind: kind, Message: message})
	if len(n.notices) > n.cap {
		n.notices = n.notices[len(n.notices)-n.cap:]
	}
}

// Success posts a success toast.
func (n *Notifier) Success(message string) { n.Notify(KindSuccess, message) }

// Error surfaces a failed API call.
//
// Structured field errors become one notice per (field, message) pair,
// deduplicated within this call. Everything else becomes a single localized
// notice. The raw cause goes to the log, never to the user.
func (n *Notifier) Error(err error) {
	appError := apperr.As(err)
	if appError == nil {
		n.log.Error("unclassified_error", slog.Any("error", err))
		n.Notify(KindError, i18n.ErrGeneric)
		return
	}

	if len(appError.Details) > 0 {
		seen := map[string]bool{}
		for _, detail := range appError.Details {
			key := detail.Field + "\x00" + detail.Message
			if seen[key] {
				continue
			}
			seen[key] = true
			n.Notify(KindError, fmt.Sprintf("[%s] %s", detail.Field, detail.Message))
		}
		return
	}

	switch appError.Code {
	case "UNAUTHORIZED":
		n.Notify(KindError, i18n.ErrUnauthorized)
	case "FORBIDDEN":
		n.Notify(KindError, i18n.ErrForbidden)
	default:
		message := appError.Message
		if message == "" {
			message = i18n.ErrGeneric
		}
		n.Notify(KindError, message)
	}
}

// Visible returns the currently visible notices, oldest first.
func (n *Notifier) Visible() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, len(n.notices))
	copy(out, n.notices)
	return out
}

// Clear dismisses every notice.
func (n *Notifier) Clear() {
	n.mu.Lock()
	n.notices = nil
	n.mu.Unlock()
}
