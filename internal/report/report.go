// Package report renders segment summaries and rule tables for the terminal.
package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/rfm-cli/internal/model"
)

// Render formats.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted render formats.
var Formats = []string{FormatTable, FormatCSV, FormatJSON, FormatYAML}

// RuleRow describes one segment rule and the RF codes it wins.
type RuleRow struct {
	Priority int      `json:"priority" yaml:"priority"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Label    string   `json:"label" yaml:"label"`
	Codes    []string `json:"codes" yaml:"codes"`
}

// RenderSummary writes per-segment summaries to w in the given format.
func RenderSummary(w io.Writer, format string, rows []model.SegmentSummary) error {
	switch format {
	case FormatTable:
		return summaryTable(w, rows)
	case FormatCSV:
		return summaryCSV(w, rows)
	case FormatJSON:
		return renderJSON(w, rows)
	case FormatYAML:
		return renderYAML(w, rows)
	default:
		return unknownFormat(format)
	}
}

// RenderRules writes the rule table to w in the given format.
func RenderRules(w io.Writer, format string, rows []RuleRow) error {
	switch format {
	case FormatTable:
		return rulesTable(w, rows)
	case FormatCSV:
		return rulesCSV(w, rows)
	case FormatJSON:
		return renderJSON(w, rows)
	case FormatYAML:
		return renderYAML(w, rows)
	default:
		return unknownFormat(format)
	}
}

func summaryTable(w io.Writer, rows []model.SegmentSummary) error {
	p := message.NewPrinter(language.English)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Segment", "Customers", "Recency (mean)", "Frequency (mean)", "Monetary (mean)"})

	total := 0
	for _, r := range rows {
		total += r.Count
		t.AppendRow(table.Row{
			r.Segment,
			p.Sprintf("%d", r.Count),
			p.Sprintf("%.1f", r.MeanRecency),
			p.Sprintf("%.1f", r.MeanFrequency),
			p.Sprintf("%.2f", r.MeanMonetary),
		})
	}
	t.AppendFooter(table.Row{"Total", p.Sprintf("%d", total)})
	t.Render()
	return nil
}

func summaryCSV(w io.Writer, rows []model.SegmentSummary) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	enc.Register(func(f float64) ([]byte, error) {
		return strconv.AppendFloat(nil, f, 'f', 2, 64), nil
	})
	if len(rows) == 0 {
		if err := enc.EncodeHeader(model.SegmentSummary{}); err != nil {
			return eris.Wrap(err, "report: encode summary header")
		}
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return eris.Wrapf(err, "report: encode segment %s", r.Segment)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush summary csv")
}

func rulesTable(w io.Writer, rows []RuleRow) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Pattern", "Segment", "Codes"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Priority, r.Pattern, r.Label, codeList(r.Codes)})
	}
	t.Render()
	return nil
}

func rulesCSV(w io.Writer, rows []RuleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"priority", "pattern", "label", "codes"}); err != nil {
		return eris.Wrap(err, "report: write rules header")
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Priority), r.Pattern, r.Label, strings.Join(r.Codes, " ")}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "report: write rule %d", r.Priority)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush rules csv")
}

func codeList(codes []string) string {
	if len(codes) == 0 {
		return "(shadowed)"
	}
	return strings.Join(codes, " ")
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "report: encode json")
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: close yaml encoder")
}

func unknownFormat(format string) error {
	return eris.Errorf("report: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

