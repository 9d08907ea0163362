package rfm

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/rfm-cli/internal/model"
)

// Options configures a pipeline run.
type Options struct {
	Reference    time.Time // anchors recency; must not precede any invoice
	CancelMarker string    // defaults to DefaultCancelMarker
	Bins         int       // defaults to DefaultBins
	Rules        []Rule    // defaults to DefaultRules()
}

// Result is the segmented customer table of one run.
type Result struct {
	Customers []model.CustomerRFM
	Clean     CleanStats
	Labels    []string // segment labels in rule order
}

// Run cleans txns, aggregates per-customer metrics, scores them and labels
// every customer with a segment. It returns either a complete table or an
// error; there is no partial result.
func Run(txns []model.Transaction, opts Options) (*Result, error) {
	if opts.Reference.IsZero() {
		return nil, eris.New("rfm: reference date is required")
	}
	if opts.CancelMarker == "" {
		opts.CancelMarker = DefaultCancelMarker
	}
	if opts.Bins == 0 {
		opts.Bins = DefaultBins
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}

	seg, err := NewSegmenter(opts.Rules, opts.Bins)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("reference", opts.Reference.Format(time.DateOnly)))

	items, cs := Clean(txns, opts.CancelMarker)
	log.Info("rfm: cleaned transactions",
		zap.Int("input", cs.Input),
		zap.Int("missing", cs.Missing),
		zap.Int("cancelled", cs.Cancelled),
		zap.Int("kept", cs.Kept),
	)

	metrics, err := Aggregate(items, opts.Reference)
	if err != nil {
		return nil, err
	}
	log.Info("rfm: aggregated customers", zap.Int("customers", len(metrics)))

	rows, err := Score(metrics, opts.Bins)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		label, ok := seg.Segment(rows[i].RFScore)
		if !ok {
			return nil, eris.Wrapf(ErrIncompleteRules, "rfm: no segment for code %s", rows[i].RFScore)
		}
		rows[i].Segment = label
	}
	log.Info("rfm: segmented customers", zap.Int("customers", len(rows)))

	return &Result{
		Customers: rows,
		Clean:     cs,
		Labels:    seg.Labels(),
	}, nil
}

// SegmentIDs returns the customer IDs labelled with segment, in table order.
func (r *Result) SegmentIDs(segment string) []string {
	var ids []string
	for _, c := range r.Customers {
		if c.Segment == segment {
			ids = append(ids, c.CustomerID)
		}
	}
	return ids
}
