// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package loader implements the idempotent fetch+render functions for each
server resource.

Every loader follows the same shape: fetch from its endpoint, fully replace
the target region's rows from the response, and toggle the empty-state
element based on whether the result set is non-empty. Because rendering
always starts from a full clear, concurrently racing loader calls converge
on the last response to resolve ("last write wins") — an accepted,
documented eventual-consistency contract, not a defect; divergence heals
within one poll cycle.

Loaders guard every region lookup against nil: a promise resolving after
its controller was unmounted renders into nothing.
*/
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fleuronvilik/toplivres-devgdk/internal/api"
	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
	"github.com/fleuronvilik/toplivres-devgdk/internal/view"
)

// Text slots written by the stats loader.
const (
	SlotTotalSales    = "total-sales"
	SlotTotalDeliv    = "total-delivered"
	SlotTotalRevenue  = "total-revenue"
	SlotDeliveryRatio = "delivery-ratio"
	SlotStatsHelper   = "stats-helper"
	SlotStatsStatus   = "stats-status"
	SlotStatsPace     = "stats-pace"
)

// Row dataset keys.
const (
	DataID       = "id"
	DataType     = "type"
	DataStatus   = "status"
	DataBucket   = "bucket"
	DataCustomer = "customer-id"
	DataStock    = "stock"
	DataPrice    = "price"
)

// Admin operation buckets.
const (
	BucketActionable = "actionable"
	BucketHistory    = "history"
)

// Set bundles the loaders of one mounted document with their shared
// dependencies.
type Set struct {
	API     *api.Client
	Doc     *view.Document
	Log     *slog.Logger
	Blocked *BlockedState

	// TargetCustomer resolves the customer whose inventory/stats are shown:
	// the logged-in customer on the home shell, the inspected customer on
	// the admin detail shell.
	TargetCustomer func() (int64, bool)

	mu     sync.RWMutex
	stock  map[int64]int
	prices map[int64]decimal.Decimal
}

// Stock returns the last known stock ceiling of a book, zero when unknown.
func (s *Set) Stock(bookID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stock[bookID]
}

// Price returns the last known unit price of a book.
func (s *Set) Price(bookID int64) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices[bookID]
}

// # Books

// LoadBooks renders the catalogue into the order form, annotating each row
// with its unit price and the customer's aggregated stock. Inventory
// failures are tolerated and treated as zero stock.
func (s *Set) LoadBooks(ctx context.Context) error {
	books, err := s.API.Books(ctx)
	if err != nil {
		return err
	}

	stockByTitle := map[string]int{}
	if customerID, ok := s.TargetCustomer(); ok {
		inventory, invErr := s.API.Inventory(ctx, customerID)
		if invErr != nil && s.Log != nil {
			s.Log.Debug("inventory_unavailable", slog.Any("error", invErr))
		}
		for _, row := range inventory {
			stockByTitle[row.Title] = row.Stock
		}
	}

	stock := make(map[int64]int, len(books))
	prices := make(map[int64]decimal.Decimal, len(books))
	rows := make([]view.Row, 0, len(books))
	for _, book := range books {
		bookStock := stockByTitle[book.Title]
		stock[book.ID] = bookStock
		prices[book.ID] = book.UnitPrice
		rows = append(rows, view.Row{
			ID: book.ID,
			Cells: []string{
				book.Title,
				i18n.FormatCurrency(book.UnitPrice),
				i18n.HintInStock(bookStock),
			},
			Data: map[string]string{
				DataID:    fmt.Sprint(book.ID),
				DataPrice: book.UnitPrice.String(),
				DataStock: fmt.Sprint(bookStock),
			},
		})
	}

	s.mu.Lock()
	s.stock = stock
	s.prices = prices
	s.mu.Unlock()

	s.Doc.Region(view.RegionOrderForm).SetRows(rows)
	return nil
}

// # Operations (customer history)

// LoadOperations renders the caller's operation history, optionally
// filtered by type. The order-blocked verdict is recomputed only from
// unfiltered fetches, which see the full list.
func (s *Set) LoadOperations(ctx context.Context, typeFilter string) error {
	operations, err := s.API.Operations(ctx, typeFilter)
	if err != nil {
		return err
	}

	if typeFilter == "" && s.Blocked != nil {
		s.Blocked.Update(DeriveBlocked(operations))
	}

	rows := make([]view.Row, 0, len(operations))
	for _, op := range operations {
		rows = append(rows, operationRow(op, ""))
	}
	s.Doc.Region(view.RegionHistory).SetRows(rows)
	return nil
}

// # Admin operations

// LoadAdminOperations renders the two-bucket admin listing. Actionable and
// history rows land in the same region, tagged by bucket.
func (s *Set) LoadAdminOperations(ctx context.Context) error {
	listing, err := s.API.AdminOperations(ctx)
	if err != nil {
		return err
	}

	rows := make([]view.Row, 0, len(listing.Actionable)+len(listing.History))
	for _, op := range listing.Actionable {
		rows = append(rows, operationRow(op, BucketActionable))
	}
	for _, op := range listing.History {
		rows = append(rows, operationRow(op, BucketHistory))
	}
	s.Doc.Region(view.RegionAdminOps).SetRows(rows)
	return nil
}

// LoadAdminCustomerOperations renders one customer's slice of the admin
// listing: every actionable operation plus the ten most recent overall,
// ordered most recent first (timestamp, identifier tie-break).
func (s *Set) LoadAdminCustomerOperations(ctx context.Context, customerID int64) error {
	listing, err := s.API.AdminOperations(ctx)
	if err != nil {
		return err
	}

	var actionable, all []api.Operation
	for _, op := range listing.Actionable {
		if op.Customer.ID == customerID {
			actionable = append(actionable, op)
			all = append(all, op)
		}
	}
	for _, op := range listing.History {
		if op.Customer.ID == customerID {
			all = append(all, op)
		}
	}

	sortMostRecentFirst(all)
	if len(all) > 10 {
		all = all[:10]
	}

	rows := make([]view.Row, 0, len(actionable)+len(all))
	for _, op := range actionable {
		rows = append(rows, operationRow(op, BucketActionable))
	}
	for _, op := range all {
		rows = append(rows, operationRow(op, BucketHistory))
	}
	s.Doc.Region(view.RegionDetailOps).SetRows(rows)
	return nil
}

// sortMostRecentFirst orders operations newest first, by timestamp with an
// identifier tie-break.
func sortMostRecentFirst(operations []api.Operation) {
	sort.SliceStable(operations, func(i, j int) bool {
		return laterThan(operations[i], operations[j])
	})
}

// # Inventory

// LoadInventory renders the customer's aggregated stock. Zero-stock rows
// are not displayed.
func (s *Set) LoadInventory(ctx context.Context) error {
	customerID, ok := s.TargetCustomer()
	if !ok {
		return nil
	}
	inventory, err := s.API.Inventory(ctx, customerID)
	if err != nil {
		return err
	}

	rows := make([]view.Row, 0, len(inventory))
	for _, line := range inventory {
		if line.Stock == 0 {
			continue
		}
		rows = append(rows, view.Row{
			Cells: []string{line.Title, fmt.Sprint(line.Stock)},
			Data:  map[string]string{DataStock: fmt.Sprint(line.Stock)},
		})
	}
	s.Doc.Region(view.RegionInventory).SetRows(rows)
	return nil
}

// # Stats

// LoadStats renders the observational sales snapshot: KPI slots, the
// clamped delivery-ratio percentage, the helper line, and the pace status.
func (s *Set) LoadStats(ctx context.Context) error {
	customerID, ok := s.TargetCustomer()
	if !ok {
		return nil
	}
	stats, err := s.API.Stats(ctx, customerID)
	if err != nil {
		return err
	}

	region := s.Doc.Region(view.RegionStats)
	if region == nil {
		return nil
	}

	hasData := stats.TotalSales > 0 || stats.TotalDelivered > 0 || stats.TotalAmount.IsPositive()
	if !hasData {
		region.SetRows(nil)
		region.SetText(SlotStatsHelper, i18n.StatsEmpty)
		return nil
	}

	ratioPct := int(math.Round(stats.DeliveryRatio * 100))
	clampedPct := min(max(ratioPct, 0), 100)

	region.SetRows([]view.Row{{Cells: []string{"stats"}}})
	region.SetText(SlotTotalSales, fmt.Sprint(stats.TotalSales))
	region.SetText(SlotTotalDeliv, fmt.Sprint(stats.TotalDelivered))
	region.SetText(SlotTotalRevenue, i18n.FormatCurrency(stats.TotalAmount))
	region.SetText(SlotDeliveryRatio, fmt.Sprintf("%d%%", clampedPct))
	region.SetText(SlotStatsHelper, i18n.StatsRatioLine(stats.TotalSales, stats.TotalDelivered, ratioPct))

	pace, line := i18n.Pace(stats.DeliveryRatio, stats.TotalDelivered)
	region.SetText(SlotStatsPace, string(pace))
	region.SetText(SlotStatsStatus, line)
	return nil
}

// # Shared rendering

// operationRow renders one operation line. The dataset carries everything
// the delegated action handlers need.
func operationRow(op api.Operation, bucket string) view.Row {
	row := view.Row{
		ID: op.ID,
		Cells: []string{
			fmt.Sprint(op.ID),
			op.Date,
			i18n.FormatType(op.Type),
			i18n.FormatStatus(op.Status),
		},
		Data: map[string]string{
			DataID:     fmt.Sprint(op.ID),
			DataType:   op.Type,
			DataStatus: op.Status,
		},
	}
	if bucket != "" {
		row.Data[DataBucket] = bucket
	}
	if op.Customer.ID != 0 {
		row.Data[DataCustomer] = fmt.Sprint(op.Customer.ID)
		row.Cells = append(row.Cells, op.Customer.Name)
	}
	return row
}
