// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package session holds the locally persisted identity state of the client.

Architecture:

  - Store: a two-key durable string store (credential + user snapshot),
    the Go analogue of the browser's local storage.
  - Session: the Credential/Role Reader. It extracts the role claim from
    the stored JWT without verifying the signature — validity is
    authoritative only at the API boundary, where a failing authenticated
    call triggers the logged-out recovery path.

Any decoding failure (missing token, malformed structure, non-JSON payload)
yields the empty role silently; a broken credential is indistinguishable
from "logged out" at this layer.
*/
package session

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
)

// Local storage keys.
const (
	KeyToken       = "token"
	KeyCurrentUser = "currentUser"
)

// Role is the authorization role claim carried by the credential.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	// RoleNone marks the unauthenticated state.
	RoleNone Role = ""
)

// roleClaims is the only claim segment this layer reads.
type roleClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Session reads and mutates the persisted identity state.
type Session struct {
	store *Store
}

// New wraps a Store.
func New(store *Store) *Session {
	return &Session{store: store}
}

// # Credential

// Token returns the persisted credential, empty when logged out.
func (s *Session) Token() string {
	return s.store.Get(KeyToken)
}

// SetToken persists a freshly issued credential.
func (s *Session) SetToken(token string) error {
	return s.store.Set(KeyToken, token)
}

// DecodeRole extracts the role claim from the stored credential.
//
// The token is parsed without signature verification: the claims segment is
// split out, base64-decoded, and read as JSON. Every failure path returns
// [RoleNone] — this function never errors.
func (s *Session) DecodeRole() Role {
	token := s.Token()
	if token == "" {
		return RoleNone
	}

	claims := &roleClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return RoleNone
	}

	switch Role(claims.Role) {
	case RoleAdmin:
		return RoleAdmin
	case RoleCustomer:
		return RoleCustomer
	default:
		return RoleNone
	}
}

// # Current-user snapshot

// CurrentUser returns the cached profile snapshot. ok is false when no
// snapshot is stored or it cannot be decoded.
func (s *Session) CurrentUser() (user api.User, ok bool) {
	raw := s.store.Get(KeyCurrentUser)
	if raw == "" {
		return api.User{}, false
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return api.User{}, false
	}
	return user, true
}

// SetCurrentUser persists the profile snapshot. It must be re-invoked after
// a successful settings update so the cache tracks server truth.
func (s *Session) SetCurrentUser(user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.store.Set(KeyCurrentUser, string(raw))
}

// # Lifecycle

// Clear destroys the credential and snapshot (logout or 401 recovery).
func (s *Session) Clear() error {
	if err := s.store.Delete(KeyToken); err != nil {
		return err
	}
	return s.store.Delete(KeyCurrentUser)
}
