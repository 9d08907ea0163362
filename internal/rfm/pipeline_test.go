package rfm

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rfm-cli/internal/model"
)

// customerTxns returns freq single-line invoices for customer id, the latest
// dated recency days before the reference date.
func customerTxns(id string, recency, freq int) []model.Transaction {
	var out []model.Transaction
	for k := 0; k < freq; k++ {
		out = append(out, txn(
			fmt.Sprintf("5%s%02d", id, k), id, "REGENCY CAKESTAND 3 TIER",
			2, 5, reference.AddDate(0, 0, -(recency+k)),
		))
	}
	return out
}

// loyalFixture has ten customers; customer i (1-based) has recency i and
// frequency 11-i, so customers 3 and 4 score "44".
func loyalFixture() []model.Transaction {
	var txns []model.Transaction
	for i := 1; i <= 10; i++ {
		txns = append(txns, customerTxns(fmt.Sprintf("%d", 12345+i), i, 11-i)...)
	}
	// Noise the cleaner must drop.
	txns = append(txns,
		txn("C999999", "12346", "REGENCY CAKESTAND 3 TIER", -50, 5, reference.AddDate(0, 0, -1)),
		txn("599999", "", "REGENCY CAKESTAND 3 TIER", 50, 5, reference.AddDate(0, 0, -1)),
		txn("599998", "12400", "", 50, 5, reference.AddDate(0, 0, -1)),
	)
	return txns
}

func TestRun_Segments(t *testing.T) {
	res, err := Run(loyalFixture(), Options{Reference: reference})
	require.NoError(t, err)
	require.Len(t, res.Customers, 10)

	want := []string{
		SegmentChampions, SegmentChampions,
		SegmentLoyalCustomers, SegmentLoyalCustomers,
		SegmentNeedAttention, SegmentNeedAttention,
		SegmentHibernating, SegmentHibernating,
		SegmentHibernating, SegmentHibernating,
	}
	for i, c := range res.Customers {
		assert.Equal(t, fmt.Sprintf("%d", 12346+i), c.CustomerID)
		assert.Equal(t, want[i], c.Segment, "customer %s code %s", c.CustomerID, c.RFScore)
		assert.Equal(t, i+1, c.Recency)
		assert.Equal(t, 10-i, c.Frequency)
	}

	assert.Equal(t, []string{"12348", "12349"}, res.SegmentIDs(SegmentLoyalCustomers))
	assert.Empty(t, res.SegmentIDs(SegmentNewCustomers))
	assert.Equal(t, CleanStats{Input: 58, Missing: 2, Cancelled: 1, Kept: 55}, res.Clean)
	assert.Len(t, res.Labels, 10)
}

func TestRun_EveryCustomerLabelled(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 60; i++ {
		txns = append(txns, customerTxns(fmt.Sprintf("%d", 13000+i), (i*17)%60, 1+(i*7)%9)...)
	}

	res, err := Run(txns, Options{Reference: reference})
	require.NoError(t, err)
	require.Len(t, res.Customers, 60)

	for _, c := range res.Customers {
		assert.Contains(t, res.Labels, c.Segment)
		assert.Greater(t, c.Monetary, 0.0)
		assert.GreaterOrEqual(t, c.Frequency, 1)
		assert.GreaterOrEqual(t, c.Recency, 0)
	}
}

func TestRun_Idempotent(t *testing.T) {
	txns := loyalFixture()

	first, err := Run(txns, Options{Reference: reference})
	require.NoError(t, err)
	second, err := Run(txns, Options{Reference: reference})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_TooFewCustomers(t *testing.T) {
	var txns []model.Transaction
	for i := 1; i <= 4; i++ {
		txns = append(txns, customerTxns(fmt.Sprintf("%d", 12345+i), i, i)...)
	}

	_, err := Run(txns, Options{Reference: reference})
	assert.ErrorIs(t, err, ErrTooFewCustomers)
}

func TestRun_ReferenceRequired(t *testing.T) {
	_, err := Run(loyalFixture(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference date is required")
}

func TestRun_ReferenceBeforeInvoices(t *testing.T) {
	_, err := Run(loyalFixture(), Options{Reference: reference.Add(-72 * time.Hour)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after reference date")
}

func TestRun_IncompleteRules(t *testing.T) {
	_, err := Run(loyalFixture(), Options{Reference: reference, Rules: DefaultRules()[:3]})
	assert.ErrorIs(t, err, ErrIncompleteRules)
}

func TestRun_CustomMarker(t *testing.T) {
	// With "X" as the marker the credit note of 12346 counts, pushing its
	// monetary value below zero, so the customer is dropped.
	res, err := Run(loyalFixture(), Options{Reference: reference, CancelMarker: "X"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Clean.Cancelled)
	require.Len(t, res.Customers, 9)
	assert.Equal(t, "12347", res.Customers[0].CustomerID)
}
