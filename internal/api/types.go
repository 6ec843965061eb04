// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// # Catalogue

// Book is a catalogue item. Server-owned, read-only from the client.
type Book struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// # Operations

// Operation type vocabulary.
const (
	TypeOrder  = "order"
	TypeReport = "report"
)

// Operation status vocabulary.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
	StatusRecorded  = "recorded"
)

// OperationItem is one line of an order or sales report.
type OperationItem struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// OperationCustomer is the read-only customer projection embedded in
// admin operation listings.
type OperationCustomer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Operation is an order or sales-report record exchanged with the server.
//
// Date stays a raw string: server eras disagreed on its format, and the
// ordering logic must tolerate unparsable dates by falling back to the
// identifier. Use [Operation.Time] for chronological comparisons.
type Operation struct {
	ID       int64             `json:"id"`
	Date     string            `json:"date"`
	Type     string            `json:"type"`
	Status   string            `json:"status"`
	Customer OperationCustomer `json:"customer"`
	Items    []OperationItem   `json:"items"`
	Notes    string            `json:"notes,omitempty"`
}

// Time parses the operation date. ok is false when the date is absent or
// unparsable, in which case callers tie-break on the identifier.
func (op Operation) Time() (parsed time.Time, ok bool) {
	if op.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, op.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// # Inventory & stats

// InventoryRow is a server-aggregated stock line. Zero-stock rows are not
// displayed by the client.
type InventoryRow struct {
	Title string `json:"title"`
	Stock int    `json:"stock"`
}

// Stats is the observational sales snapshot of one customer.
type Stats struct {
	TotalSales     int             `json:"total_sales"`
	TotalDelivered int             `json:"total_delivered"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DeliveryRatio  float64         `json:"delivery_ratio"`
}

// # Users

// User is the current-user profile snapshot.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// # Envelopes

// Envelope is the standard {"data": ...} wrapper of list and stats
// responses.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// AdminOperations is the two-bucket payload of GET /api/admin/operations.
type AdminOperations struct {
	Actionable []Operation `json:"actionable"`
	History    []Operation `json:"history"`
}

// LoginResponse is the payload of POST /api/auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
