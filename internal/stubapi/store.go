// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package stubapi

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
)

// account is a stored user with its password hash.
type account struct {
	api.User
	Role         string
	PasswordHash []byte
}

// store is the in-memory dataset. All access goes through the store's
// mutex; handlers hold it for the duration of one request.
type store struct {
	mu sync.Mutex

	accounts   []*account
	books      []api.Book
	operations []*api.Operation

	nextUserID      int64
	nextBookID      int64
	nextOperationID int64
}

func newStore() *store {
	s := &store{
		nextUserID:      1,
		nextBookID:      1,
		nextOperationID: 1,
	}
	s.seed()
	return s
}

// # Seed data

// seed loads the demo dataset: one admin, two customers, a small
// catalogue, and enough operation history to exercise every status.
func (s *store) seed() {
	s.addAccount("Admin", "admin@toplivres.test", "0600000000", "admin", "admin123")
	alice := s.addAccount("Alice Martin", "alice@toplivres.test", "0611111111", "customer", "alice123")
	s.addAccount("Benoît Caron", "benoit@toplivres.test", "0622222222", "customer", "benoit123")

	s.addBook("Le Petit Prince", "7.90")
	s.addBook("L'Étranger", "9.50")
	s.addBook("Vendredi ou la Vie sauvage", "6.20")

	// Alice has one completed order cycle (delivered and reported) so her
	// account starts unblocked with stock and stats populated.
	s.addOperation(alice.ID, api.TypeOrder, api.StatusDelivered, []api.OperationItem{
		{BookID: 1, Quantity: 10},
		{BookID: 2, Quantity: 5},
	}, time.Now().Add(-96*time.Hour))
	s.addOperation(alice.ID, api.TypeReport, api.StatusRecorded, []api.OperationItem{
		{BookID: 1, Quantity: 4},
	}, time.Now().Add(-48*time.Hour))
}

func (s *store) addAccount(name, email, phone, role, password string) *account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	a := &account{
		User: api.User{
			ID:    s.nextUserID,
			Name:  name,
			Email: email,
			Phone: phone,
		},
		Role:         role,
		PasswordHash: hash,
	}
	s.nextUserID++
	s.accounts = append(s.accounts, a)
	return a
}

func (s *store) addBook(title, unitPrice string) api.Book {
	price, _ := decimal.NewFromString(unitPrice)
	book := api.Book{ID: s.nextBookID, Title: title, UnitPrice: price}
	s.nextBookID++
	s.books = append(s.books, book)
	return book
}

func (s *store) addOperation(customerID int64, opType, status string, items []api.OperationItem, at time.Time) *api.Operation {
	customer := api.OperationCustomer{ID: customerID}
	if a := s.accountByID(customerID); a != nil {
		customer.Name = a.Name
	}
	op := &api.Operation{
		ID:       s.nextOperationID,
		Date:     at.UTC().Format(time.RFC3339),
		Type:     opType,
		Status:   status,
		Customer: customer,
		Items:    items,
	}
	s.nextOperationID++
	s.operations = append(s.operations, op)
	return op
}

// # Lookups

func (s *store) accountByID(id int64) *account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *store) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s *store) bookByID(id int64) (api.Book, bool) {
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return api.Book{}, false
}

func (s *store) operationByID(id int64) (*api.Operation, int) {
	for i, op := range s.operations {
		if op.ID == id {
			return op, i
		}
	}
	return nil, -1
}

func (s *store) customerOperations(customerID int64, typeFilter string) []api.Operation {
	out := []api.Operation{}
	for _, op := range s.operations {
		if op.Customer.ID != customerID {
			continue
		}
		if typeFilter != "" && op.Type != typeFilter {
			continue
		}
		out = append(out, *op)
	}
	sortMostRecentFirst(out)
	return out
}

// sortMostRecentFirst orders by date descending, id descending for ties
// and unparsable dates.
func sortMostRecentFirst(ops []api.Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		ti, iOK := ops[i].Time()
		tj, jOK := ops[j].Time()
		if iOK && jOK && !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ops[i].ID > ops[j].ID
	})
}

// # Business rules

// blockedReason reports why a customer cannot order, empty when allowed.
// A customer is blocked while an order is pending or approved, and after a
// delivery until a sales report follows it.
func (s *store) blockedReason(customerID int64) string {
	var lastOrder *api.Operation
	for _, op := range s.operations {
		if op.Customer.ID != customerID || op.Status == api.StatusCancelled {
			continue
		}
		if op.Type != api.TypeOrder {
			continue
		}
		if op.Status == api.StatusPending || op.Status == api.StatusApproved {
			return msgBlockedPending
		}
		if lastOrder == nil || laterOperation(*op, *lastOrder) {
			lastOrder = op
		}
	}
	if lastOrder == nil || lastOrder.Status != api.StatusDelivered {
		return ""
	}
	for _, op := range s.operations {
		if op.Customer.ID != customerID || op.Type != api.TypeReport || op.Status == api.StatusCancelled {
			continue
		}
		if !laterOperation(*lastOrder, *op) {
			return ""
		}
	}
	return msgBlockedReportRequired
}

func laterOperation(a, b api.Operation) bool {
	ta, aOK := a.Time()
	tb, bOK := b.Time()
	if aOK && bOK && !ta.Equal(tb) {
		return ta.After(tb)
	}
	return a.ID > b.ID
}

// stockByBook aggregates a customer's stock: delivered quantities in,
// reported sales out. Never negative.
func (s *store) stockByBook(customerID int64) map[int64]int {
	stock := map[int64]int{}
	for _, op := range s.operations {
		if op.Customer.ID != customerID || op.Status == api.StatusCancelled {
			continue
		}
		for _, item := range op.Items {
			switch {
			case op.Type == api.TypeOrder && op.Status == api.StatusDelivered:
				stock[item.BookID] += item.Quantity
			case op.Type == api.TypeReport:
				stock[item.BookID] -= item.Quantity
			}
		}
	}
	for id, count := range stock {
		if count < 0 {
			stock[id] = 0
		}
	}
	return stock
}

func (s *store) inventory(customerID int64) []api.InventoryRow {
	stock := s.stockByBook(customerID)
	rows := []api.InventoryRow{}
	for _, book := range s.books {
		if count, ok := stock[book.ID]; ok && count != 0 {
			rows = append(rows, api.InventoryRow{Title: book.Title, Stock: count})
		}
	}
	return rows
}

func (s *store) stats(customerID int64) api.Stats {
	stats := api.Stats{TotalAmount: decimal.Zero}
	for _, op := range s.operations {
		if op.Customer.ID != customerID || op.Status == api.StatusCancelled {
			continue
		}
		for _, item := range op.Items {
			switch {
			case op.Type == api.TypeOrder && op.Status == api.StatusDelivered:
				stats.TotalDelivered += item.Quantity
			case op.Type == api.TypeReport:
				stats.TotalSales += item.Quantity
				if book, ok := s.bookByID(item.BookID); ok {
					amount := book.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
					stats.TotalAmount = stats.TotalAmount.Add(amount)
				}
			}
		}
	}
	if stats.TotalDelivered > 0 {
		stats.DeliveryRatio = float64(stats.TotalSales) / float64(stats.TotalDelivered)
	}
	return stats
}

// adminBuckets splits every operation into actionable (pending or approved
// orders) and history, both most recent first.
func (s *store) adminBuckets() api.AdminOperations {
	out := api.AdminOperations{Actionable: []api.Operation{}, History: []api.Operation{}}
	for _, op := range s.operations {
		if op.Type == api.TypeOrder && (op.Status == api.StatusPending || op.Status == api.StatusApproved) {
			out.Actionable = append(out.Actionable, *op)
		} else {
			out.History = append(out.History, *op)
		}
	}
	sortMostRecentFirst(out.Actionable)
	sortMostRecentFirst(out.History)
	return out
}
