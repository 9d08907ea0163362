package rfm

import (
	"slices"

	"github.com/sells-group/rfm-cli/internal/model"
)

// Summarize reports the count and mean metrics of every segment present in
// rows. Segments follow the order of labels; any others come last, sorted.
func Summarize(rows []model.CustomerRFM, labels []string) []model.SegmentSummary {
	type acc struct {
		count     int
		recency   float64
		frequency float64
		monetary  float64
	}
	accs := make(map[string]*acc)
	for _, r := range rows {
		a, ok := accs[r.Segment]
		if !ok {
			a = &acc{}
			accs[r.Segment] = a
		}
		a.count++
		a.recency += float64(r.Recency)
		a.frequency += float64(r.Frequency)
		a.monetary += r.Monetary
	}

	order := make([]string, 0, len(accs))
	for _, l := range labels {
		if _, ok := accs[l]; ok && !slices.Contains(order, l) {
			order = append(order, l)
		}
	}
	var extra []string
	for l := range accs {
		if !slices.Contains(order, l) {
			extra = append(extra, l)
		}
	}
	slices.Sort(extra)
	order = append(order, extra...)

	out := make([]model.SegmentSummary, 0, len(order))
	for _, l := range order {
		a := accs[l]
		n := float64(a.count)
		out = append(out, model.SegmentSummary{
			Segment:       l,
			Count:         a.count,
			MeanRecency:   a.recency / n,
			MeanFrequency: a.frequency / n,
			MeanMonetary:  a.monetary / n,
		})
	}
	return out
}
