package rfm

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/rfm-cli/internal/model"
)

const day = 24 * time.Hour

type customerAcc struct {
	latest   time.Time
	invoices map[string]struct{}
	revenues []float64
}

// Aggregate groups line items by customer and computes one metric tuple per
// customer against the reference date. Customers whose monetary value is not
// positive (or is NaN) are dropped. The result is ordered by customer ID, so it does not
// depend on the order of items.
//
// A transaction dated after reference is an error: recency would be negative.
func Aggregate(items []model.LineItem, reference time.Time) ([]model.CustomerMetrics, error) {
	accs := make(map[string]*customerAcc)
	for _, it := range items {
		if it.InvoiceDate.After(reference) {
			return nil, eris.Errorf("rfm: invoice %s for customer %s dated %s is after reference date %s",
				it.Invoice, it.CustomerID,
				it.InvoiceDate.Format(time.DateTime), reference.Format(time.DateOnly))
		}

		acc, ok := accs[it.CustomerID]
		if !ok {
			acc = &customerAcc{invoices: make(map[string]struct{})}
			accs[it.CustomerID] = acc
		}
		if it.InvoiceDate.After(acc.latest) {
			acc.latest = it.InvoiceDate
		}
		acc.invoices[it.Invoice] = struct{}{}
		acc.revenues = append(acc.revenues, it.Revenue)
	}

	metrics := make([]model.CustomerMetrics, 0, len(accs))
	for id, acc := range accs {
		monetary := sumSorted(acc.revenues)
		if !(monetary > 0) { // also drops NaN
			continue
		}
		metrics = append(metrics, model.CustomerMetrics{
			CustomerID: id,
			Recency:    int(reference.Sub(acc.latest) / day),
			Frequency:  len(acc.invoices),
			Monetary:   monetary,
		})
	}

	slices.SortFunc(metrics, func(a, b model.CustomerMetrics) int {
		return model.CompareCustomerIDs(a.CustomerID, b.CustomerID)
	})
	return metrics, nil
}

// sumSorted adds values in ascending order so the float result does not
// depend on input order.
func sumSorted(values []float64) float64 {
	slices.Sort(values)
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
