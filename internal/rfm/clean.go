// Package rfm derives Recency, Frequency and Monetary metrics from retail
// transactions, scores them into quantiles and maps the scores to named
// customer segments.
package rfm

import (
	"strings"

	"github.com/sells-group/rfm-cli/internal/model"
)

// DefaultCancelMarker marks cancelled invoices, e.g. "C489449".
const DefaultCancelMarker = "C"

// CleanStats counts the records dropped by Clean.
type CleanStats struct {
	Input     int `json:"input"`
	Missing   int `json:"missing"`   // empty description or customer ID
	Cancelled int `json:"cancelled"` // invoice carries the cancel marker
	Kept      int `json:"kept"`
}

// IsCancelled reports whether the invoice contains the cancel marker.
// An empty invoice or marker never counts as cancelled.
func IsCancelled(invoice, marker string) bool {
	if invoice == "" || marker == "" {
		return false
	}
	return strings.Contains(invoice, marker)
}

// Clean drops incomplete and cancelled transactions and derives the revenue
// of the rest. It never fails: offending records are skipped.
func Clean(txns []model.Transaction, cancelMarker string) ([]model.LineItem, CleanStats) {
	stats := CleanStats{Input: len(txns)}
	items := make([]model.LineItem, 0, len(txns))

	for _, t := range txns {
		if t.Description == "" || t.CustomerID == "" {
			stats.Missing++
			continue
		}
		if IsCancelled(t.Invoice, cancelMarker) {
			stats.Cancelled++
			continue
		}
		items = append(items, model.NewLineItem(t))
	}

	stats.Kept = len(items)
	return items, stats
}
