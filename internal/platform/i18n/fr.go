// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

/*
Package i18n provides the French string table of the TopLivres UI.

No i18n framework is needed: the table is a plain struct of constants and
small formatting helpers. Currency and numbers go through x/text so that
amounts render the French way ("1 234,56 €").
*/
package i18n

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer renders numbers with French grouping and decimal separators.
var printer = message.NewPrinter(language.French)

// # Navigation & app chrome

const (
	AppTitle = "TopLivres"

	NavNewOperation = "Nouvelle opération"
	NavHistory      = "Historique"
	NavInventory    = "Ton stock"
	NavStats        = "Statistiques"
	NavLogout       = "Se déconnecter"
)

// # Form strings

const (
	FormTitle          = "Sélectionne des quantités"
	FormHelperIdle     = "Saisis une quantité pour commencer."
	FormHelperSelected = "Vérifie la sélection puis envoie."

	ActionSubmitOrder   = "Envoyer la commande"
	ActionSubmitSale    = "Enregistrer la vente"
	ActionCancelPending = "Annuler la demande en cours"
	ActionCancel        = "Annuler"
	ActionApprove       = "Approuver"
	ActionDeliver       = "Livrer"
	ActionReject        = "Refuser"
	ActionDelete        = "Supprimer"

	ValidationNonNegative = "Doit être supérieur ou égal à 0"
	ValidationPositive    = "Saisis une quantité positive"
	ValidationNoItems     = "Aucun article sélectionné."

	BlockedPending        = "Tu as déjà une demande en cours. Attends la livraison ou annule-la."
	BlockedReportRequired = "Tu dois déclarer les ventes depuis la dernière livraison avant de recommander."
)

// # Empty states & toasts

const (
	HistoryEmpty   = "Aucune opération pour le moment."
	InventoryEmpty = "Ton stock est vide pour l’instant."
	StatsEmpty     = "Pas assez de données pour afficher des stats."

	ToastOrderSubmitted = "Commande envoyée."
	ToastSaleRecorded   = "Vente enregistrée."
	ToastBookAdded      = "Livre ajouté."
	ToastProfileSaved   = "Profil mis à jour."
	ToastPasswordSaved  = "Mot de passe modifié."
	ToastOrderCancelled = "Commande annulée."

	ErrGeneric      = "Une erreur est survenue."
	ErrUnauthorized = "Accès non autorisé."
	ErrForbidden    = "Action non autorisée."
	ErrTitle        = "Le titre est obligatoire"

	// Admin confirmation for deleting a recorded sales report. The prompt
	// must spell out the stock/stats impact before the DELETE is issued.
	ConfirmDeleteReport = "Supprimer ce rapport de vente ? Le stock et les statistiques du client seront recalculés."
	ConfirmDeleteOrder  = "Supprimer cette opération ?"
)

// # Enum labels

var operationTypes = map[string]string{
	"order":  "Commande",
	"report": "Vente",
}

var operationStatuses = map[string]string{
	"pending":   "En attente",
	"approved":  "Confirmée",
	"delivered": "Livrée",
	"cancelled": "Annulée",
	"recorded":  "Enregistrée",
	"rejected":  "Refusée",
	"expired":   "Expirée",
}

// FormatType returns the display label of an operation type. Unknown types
// fall through unchanged so new server vocabulary stays visible.
func FormatType(operationType string) string {
	if label, ok := operationTypes[operationType]; ok {
		return label
	}
	return operationType
}

// FormatStatus returns the display label of an operation status.
func FormatStatus(status string) string {
	if label, ok := operationStatuses[status]; ok {
		return label
	}
	return status
}

// # Formatting helpers

// FormatCurrency renders an amount as French-locale euros.
func FormatCurrency(amount decimal.Decimal) string {
	value, _ := amount.Round(2).Float64()
	return printer.Sprintf("%v €", number.Decimal(value,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// ValidationExceedsStock formats the inline error for a quantity above the
// known stock ceiling.
func ValidationExceedsStock(max int) string {
	return printer.Sprintf("Dépasse le stock disponible (max %d)", max)
}

// HintInStock formats the stock tooltip of a catalogue row.
func HintInStock(count int) string {
	return printer.Sprintf("En stock : %d", count)
}

// StatsRatioLine formats the one-line summary under the stats grid.
func StatsRatioLine(sold, delivered, ratioPct int) string {
	return printer.Sprintf("%d vendus sur %d livrés (%d%%)", sold, delivered, ratioPct)
}

// # Sales pace status

// PaceStatus classifies the delivery ratio against the 30% sales target.
type PaceStatus string

const (
	PaceOK   PaceStatus = "ok"
	PaceWarn PaceStatus = "warn"
	PaceBad  PaceStatus = "bad"
)

// Pace returns the sales-pace classification and its display line.
// A customer with zero recorded deliveries is always "warn" with a
// dedicated message, to avoid odd ratio phrasing.
func Pace(ratio float64, totalDelivered int) (PaceStatus, string) {
	if totalDelivered == 0 {
		return PaceWarn, "Aucune livraison enregistrée pour l’instant."
	}
	switch {
	case ratio >= 0.30:
		return PaceOK, "Bon rythme de vente (objectif 30%)"
	case ratio >= 0.15:
		return PaceWarn, "Rythme moyen (objectif 30%)"
	default:
		return PaceBad, "Rythme à améliorer (objectif 30%)"
	}
}
