// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package i18n_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fleuronvilik/toplivres-devgdk/internal/platform/i18n"
)

/*
TestFormatCurrency verifies French-locale euro rendering: comma decimal
separator, two fraction digits, trailing euro sign.
*/
func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"unit_price", "7.9"},
		{"integer_amount", "12"},
		{"round_to_cents", "9.499"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			formatted := i18n.FormatCurrency(amount)

			assert.True(t, strings.HasSuffix(formatted, "€"), formatted)
			assert.Contains(t, formatted, ",", "French decimal separator")
			assert.NotContains(t, formatted, ".")
		})
	}
}

/*
TestFormatTypeAndStatus verifies display labels, with unknown server
vocabulary passing through unchanged.
*/
func TestFormatTypeAndStatus(t *testing.T) {
	assert.Equal(t, "Commande", i18n.FormatType("order"))
	assert.Equal(t, "Vente", i18n.FormatType("report"))
	assert.Equal(t, "exchange", i18n.FormatType("exchange"))

	assert.Equal(t, "En attente", i18n.FormatStatus("pending"))
	assert.Equal(t, "refused", i18n.FormatStatus("refused"))
}

/*
TestPace verifies the 30%/15% sales-pace thresholds and the zero-delivery
special case.
*/
func TestPace(t *testing.T) {
	tests := []struct {
		name      string
		ratio     float64
		delivered int
		want      i18n.PaceStatus
	}{
		{"above_target", 0.45, 100, i18n.PaceOK},
		{"exactly_target", 0.30, 100, i18n.PaceOK},
		{"middling", 0.20, 100, i18n.PaceWarn},
		{"exactly_floor", 0.15, 100, i18n.PaceWarn},
		{"poor", 0.05, 100, i18n.PaceBad},
		{"no_deliveries", 0, 0, i18n.PaceWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, line := i18n.Pace(tt.ratio, tt.delivered)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, line)
		})
	}
}
