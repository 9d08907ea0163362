package rfm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rfm-cli/internal/model"
)

func txn(invoice, customer, desc string, qty, price float64, at time.Time) model.Transaction {
	return model.Transaction{
		Invoice:     invoice,
		StockCode:   "85123A",
		Description: desc,
		Quantity:    qty,
		InvoiceDate: at,
		Price:       price,
		CustomerID:  customer,
		Country:     "United Kingdom",
	}
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		invoice string
		marker  string
		want    bool
	}{
		{"C54321", "C", true},
		{"54321C", "C", true},
		{"54321", "C", false},
		{"", "C", false},
		{"C54321", "", false},
		{"X54321", "X", true},
	}
	for _, tt := range tests {
		t.Run(tt.invoice+"/"+tt.marker, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCancelled(tt.invoice, tt.marker))
		})
	}
}

func TestClean(t *testing.T) {
	at := time.Date(2011, 12, 1, 10, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		txn("536365", "17850", "WHITE HANGING HEART", 6, 2.55, at),
		txn("C54321", "17850", "WHITE HANGING HEART", 6, 2.55, at),
		txn("536366", "", "HAND WARMER", 6, 1.85, at),
		txn("536367", "13047", "", 32, 1.69, at),
		txn("", "13047", "JAM MAKING SET", 2, 4.25, at),
	}

	items, stats := Clean(txns, DefaultCancelMarker)

	require.Len(t, items, 2)
	assert.Equal(t, CleanStats{Input: 5, Missing: 2, Cancelled: 1, Kept: 2}, stats)

	assert.Equal(t, "536365", items[0].Invoice)
	assert.InDelta(t, 15.3, items[0].Revenue, 1e-9)
	assert.Equal(t, "", items[1].Invoice, "empty invoice is not treated as cancelled")
	assert.InDelta(t, 8.5, items[1].Revenue, 1e-9)

	for _, it := range items {
		assert.NotEmpty(t, it.Description)
		assert.NotEmpty(t, it.CustomerID)
		assert.False(t, IsCancelled(it.Invoice, DefaultCancelMarker))
		assert.InDelta(t, it.Quantity*it.Price, it.Revenue, 1e-12)
	}
}

func TestClean_CancelledRegardlessOfOtherFields(t *testing.T) {
	at := time.Date(2011, 12, 1, 10, 0, 0, 0, time.UTC)
	items, stats := Clean([]model.Transaction{
		txn("C54321", "12346", "MEDIUM CERAMIC TOP STORAGE JAR", 74215, 1.04, at),
	}, DefaultCancelMarker)

	assert.Empty(t, items)
	assert.Equal(t, 1, stats.Cancelled)
}

func TestClean_Empty(t *testing.T) {
	items, stats := Clean(nil, DefaultCancelMarker)
	assert.Empty(t, items)
	assert.Equal(t, CleanStats{}, stats)
}
