package rfm

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfm-cli/internal/model"
)

// DefaultBins is the number of quantile scores per metric.
const DefaultBins = 5

// Bins must stay single-digit so an RF code is exactly two characters.
const (
	minBins = 2
	maxBins = 9
)

// ErrTooFewCustomers is returned when the population cannot fill every bin.
var ErrTooFewCustomers = eris.New("rfm: too few customers for quantile scoring")

// Score assigns each customer a 1..bins score per metric by splitting the
// population into bins quantile groups of near-equal size.
//
// Frequency is ranked first (ties keep table order) and the ranks are binned,
// since its values are heavily duplicated. Recency and monetary are binned on
// their values and fall back to the same rank strategy when duplicates make
// the quantile edges collapse. Recency is inverted: the most recent customers
// score highest.
func Score(metrics []model.CustomerMetrics, bins int) ([]model.CustomerRFM, error) {
	if bins < minBins || bins > maxBins {
		return nil, eris.Errorf("rfm: bins must be between %d and %d, got %d", minBins, maxBins, bins)
	}
	n := len(metrics)
	if n < bins {
		return nil, eris.Wrapf(ErrTooFewCustomers, "rfm: %d customers cannot fill %d bins", n, bins)
	}

	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i, m := range metrics {
		recency[i] = float64(m.Recency)
		frequency[i] = float64(m.Frequency)
		monetary[i] = m.Monetary
	}

	rBins := valueBins("recency", recency, bins)
	fBins := BinRanks(RankFirst(frequency), bins)
	mBins := valueBins("monetary", monetary, bins)

	rows := make([]model.CustomerRFM, n)
	for i, m := range metrics {
		r := bins + 1 - rBins[i]
		rows[i] = model.CustomerRFM{
			CustomerID:     m.CustomerID,
			Recency:        m.Recency,
			Frequency:      m.Frequency,
			Monetary:       m.Monetary,
			RecencyScore:   r,
			FrequencyScore: fBins[i],
			MonetaryScore:  mBins[i],
			RFScore:        RFCode(r, fBins[i]),
		}
	}
	return rows, nil
}

func valueBins(metric string, values []float64, bins int) []int {
	if out, ok := QuantileBins(values, bins); ok {
		return out
	}
	zap.L().Debug("rfm: quantile edges not unique, binning by rank",
		zap.String("metric", metric),
		zap.Int("bins", bins),
	)
	return BinRanks(RankFirst(values), bins)
}

// RankFirst returns the 1-based ascending rank of every value. Equal values
// get distinct ranks in the order they appear.
func RankFirst(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(values[a], values[b])
	})

	ranks := make([]int, len(values))
	for pos, i := range idx {
		ranks[i] = pos + 1
	}
	return ranks
}

// BinRanks splits ranks 1..n into bins groups. Rank r lands in the first bin
// whose upper edge 1 + b·(n−1)/bins it does not exceed; integer arithmetic
// keeps group sizes within one of each other.
func BinRanks(ranks []int, bins int) []int {
	n := len(ranks)
	out := make([]int, n)
	for i, r := range ranks {
		if n <= 1 {
			out[i] = 1
			continue
		}
		b := ceilDiv(bins*(r-1), n-1)
		out[i] = max(b, 1)
	}
	return out
}

// QuantileEdges returns the bins+1 quantile cut points of values using linear
// interpolation between order statistics.
func QuantileEdges(values []float64, bins int) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	n := len(sorted)

	edges := make([]float64, bins+1)
	if n == 0 {
		return edges
	}
	for k := 0; k <= bins; k++ {
		pos := float64(k) * float64(n-1) / float64(bins)
		lo := int(math.Floor(pos))
		hi := min(lo+1, n-1)
		frac := pos - float64(lo)
		edges[k] = sorted[lo] + frac*(sorted[hi]-sorted[lo])
	}
	edges[bins] = sorted[n-1]
	return edges
}

// QuantileBins assigns each value to a 1-based bin between its quantile
// edges, the lowest edge belonging to bin 1. It reports false when the edges
// are not strictly increasing.
func QuantileBins(values []float64, bins int) ([]int, bool) {
	edges := QuantileEdges(values, bins)
	for k := 1; k < len(edges); k++ {
		if edges[k] <= edges[k-1] {
			return nil, false
		}
	}

	upper := edges[1:]
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = min(sort.SearchFloat64s(upper, v)+1, bins)
	}
	return out, true
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
