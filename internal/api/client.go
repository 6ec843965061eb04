// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package api implements the typed HTTP client for the TopLivres bookstore API.

Architecture:

  - One method per endpoint; no caller ever builds a URL or header by hand.
  - Every request carries "Accept: application/json" and a UUIDv7
    X-Request-ID for log correlation.
  - State-changing requests carry the document-sourced X-CSRF-TOKEN.
  - Error payloads ({errors:{field:[...]}} or {msg:"..."}) decode into the
    [apperr.AppError] taxonomy; callers never parse response bodies on the
    failure path.

No client-side timeout is imposed beyond the caller's context.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/apperr"
)

// HeaderXRequestID is the request correlation header.
const HeaderXRequestID = "X-Request-ID"

// HeaderCSRFToken is the anti-forgery header required on mutations.
const HeaderCSRFToken = "X-CSRF-TOKEN"

// CredentialSource yields the current bearer token, empty when logged out.
type CredentialSource interface {
	Token() string
}

// CSRFSource yields the anti-forgery token embedded in the current
// document, empty when none is present.
type CSRFSource func() string

// Client is the typed TopLivres API client.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
	creds   CredentialSource
	csrf    CSRFSource
}

// NewClient constructs a Client. httpClient may be nil, in which case
// [http.DefaultClient] is used.
func NewClient(baseURL string, httpClient *http.Client, log *slog.Logger, creds CredentialSource, csrf CSRFSource) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		log:     log,
		creds:   creds,
		csrf:    csrf,
	}
}

// # Transport core

// errorBody mirrors the two error payload shapes of the API.
type errorBody struct {
	Errors map[string][]string `json:"errors"`
	Msg    string              `json:"msg"`
}

// do performs one round-trip: encode body, send, decode into out.
// out may be nil for endpoints whose response body is ignored.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set(HeaderXRequestID, newRequestID())
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := c.creds.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	if method != http.MethodGet && c.csrf != nil {
		request.Header.Set(HeaderCSRFToken, c.csrf())
	}

	response, err := c.http.Do(request)
	if err != nil {
		return apperr.Transport(err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return apperr.Transport(err)
	}

	if response.StatusCode >= 400 {
		return c.decodeError(method, path, response.StatusCode, payload)
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("api: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// decodeError converts a non-2xx response into an [apperr.AppError].
func (c *Client) decodeError(method, path string, status int, payload []byte) error {
	var body errorBody
	_ = json.Unmarshal(payload, &body)

	c.log.Debug("api_request_failed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
	)

	if len(body.Errors) > 0 {
		details := make([]apperr.FieldError, 0, len(body.Errors))
		for field, messages := range body.Errors {
			for _, message := range messages {
				details = append(details, apperr.FieldError{Field: field, Message: message})
			}
		}
		appError := apperr.FromStatus(status, "")
		appError.Details = details
		return appError
	}
	return apperr.FromStatus(status, body.Msg)
}

// newRequestID returns a UUIDv7 (time-sortable) correlation ID, falling back
// to a random UUID when v7 generation fails.
func newRequestID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// # Authentication & profile

// Login authenticates with email/password and returns the signed credential.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

// Me fetches the current user profile.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &out)
	return out, err
}

// UpdateProfile applies a partial profile update and returns the fresh
// snapshot.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPut, "/api/users", fields, &out)
	return out, err
}

// ChangePassword rotates the account password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.do(ctx, http.MethodPut, "/api/users/password", map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}, nil)
}

// # Catalogue & customer resources

// Books fetches the full catalogue.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	var out Envelope[[]Book]
	err := c.do(ctx, http.MethodGet, "/api/books", nil, &out)
	return out.Data, err
}

// Inventory fetches the aggregated stock of one customer.
func (c *Client) Inventory(ctx context.Context, customerID int64) ([]InventoryRow, error) {
	var out Envelope[[]InventoryRow]
	path := "/api/users/inventory?id=" + url.QueryEscape(fmt.Sprint(customerID))
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Data, err
}

// Operations fetches the caller's operations, optionally filtered by type
// ("order", "report", or "" for all).
func (c *Client) Operations(ctx context.Context, typeFilter string) ([]Operation, error) {
	var out Envelope[[]Operation]
	err := c.do(ctx, http.MethodGet, "/api/operations?type="+url.QueryEscape(typeFilter), nil, &out)
	return out.Data, err
}

// Stats fetches the sales snapshot of one customer.
func (c *Client) Stats(ctx context.Context, customerID int64) (Stats, error) {
	var out Envelope[Stats]
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/stats", customerID), nil, &out)
	return out.Data, err
}

// # Customer mutations

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, items []OperationItem) error {
	return c.submitOperation(ctx, "/api/orders", items)
}

// CreateSale submits a sales report.
func (c *Client) CreateSale(ctx context.Context, items []OperationItem) error {
	return c.submitOperation(ctx, "/api/sales", items)
}

func (c *Client) submitOperation(ctx context.Context, path string, items []OperationItem) error {
	err := c.do(ctx, http.MethodPost, path, map[string]any{"items": items}, nil)
	if ae := apperr.As(err); ae != nil && ae.HTTPStatus == http.StatusForbidden {
		// The server signals the order-blocked business rule with a 403 and
		// a message; reclassify so the form updates the banner instead of
		// toasting.
		return apperr.Blocked(ae.Message)
	}
	return err
}

// CancelOrder cancels one of the caller's pending orders.
func (c *Client) CancelOrder(ctx context.Context, operationID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orders/%d", operationID), nil, nil)
}

// # Admin

// AdminOperations fetches all operations split into actionable and history
// buckets.
func (c *Client) AdminOperations(ctx context.Context) (AdminOperations, error) {
	var out AdminOperations
	err := c.do(ctx, http.MethodGet, "/api/admin/operations", nil, &out)
	return out, err
}

// ConfirmOrder advances an order's status (pending → approved → delivered).
func (c *Client) ConfirmOrder(ctx context.Context, operationID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/orders/%d/confirm", operationID), nil, nil)
}

// DeleteOperation deletes or rejects an operation.
func (c *Client) DeleteOperation(ctx context.Context, operationID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/operations/%d", operationID), nil, nil)
}

// AddBook adds a catalogue book and returns it.
func (c *Client) AddBook(ctx context.Context, title string, unitPrice float64) (Book, error) {
	var out Book
	err := c.do(ctx, http.MethodPost, "/api/admin/books", map[string]any{
		"title":      title,
		"unit_price": unitPrice,
	}, &out)
	return out, err
}
