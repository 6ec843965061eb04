// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package guard

import (
	"github.com/fleuronvilik/toplivres-devgdk/internal/session"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Action is the single outcome of one route evaluation.
type Action int

const (
	// ActionRenderLogin shows the login view only.
	ActionRenderLogin Action = iota
	// ActionMountAdmin mounts the admin dashboard controller.
	ActionMountAdmin
	// ActionMountCustomerDetail mounts the per-customer admin controller.
	ActionMountCustomerDetail
	// ActionMountCustomer mounts the customer home controller.
	ActionMountCustomer
	// ActionRedirectAdmin hard-redirects to /admin (full document load).
	ActionRedirectAdmin
	// ActionRedirectHome hard-redirects to / (full document load).
	ActionRedirectHome
)

// String returns the action name used in logs.
func (a Action) String() string {
	switch a {
	case ActionRenderLogin:
		return "render-login"
	case ActionMountAdmin:
		return "mount-admin"
	case ActionMountCustomerDetail:
		return "mount-customer-detail"
	case ActionMountCustomer:
		return "mount-customer"
	case ActionRedirectAdmin:
		return "hard-redirect-/admin"
	case ActionRedirectHome:
		return "hard-redirect-/"
	default:
		return "unknown"
	}
}

// Evaluate is the route guard's transition function: given the decoded
// role and the current shell kind, it yields exactly one action.
//
// Redirects are hard (full document load) because the shell kind is fixed
// by which static containers the currently loaded document carries — a
// soft navigation cannot change it.
func Evaluate(role session.Role, shell view.Shell) Action {
	if role == session.RoleNone {
		return ActionRenderLogin
	}

	if role == session.RoleAdmin {
		switch shell {
		case view.ShellAdmin:
			return ActionMountAdmin
		case view.ShellCustomerDetail:
			return ActionMountCustomerDetail
		default:
			// Misrouted: admin on the customer home (or an unknown page).
			return ActionRedirectAdmin
		}
	}

	// Customer role.
	if shell == view.ShellCustomer {
		return ActionMountCustomer
	}
	// Misrouted: non-admin on an admin or detail shell.
	return ActionRedirectHome
}
