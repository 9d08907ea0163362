// Package loader turns raw sheet rows into typed retail transactions.
package loader

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/rfm-cli/internal/fetcher"
	"github.com/sells-group/rfm-cli/internal/model"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = eris.New("loader: missing required columns")

// Options configures how an input file is read.
type Options struct {
	Sheet    string // XLSX sheet name; empty selects the first sheet
	Progress bool   // render a progress bar while parsing rows
}

// Stats counts what the loader saw.
type Stats struct {
	Rows      int `json:"rows"`      // non-blank data rows, header excluded
	Malformed int `json:"malformed"` // rows dropped for unparseable quantity, price or date
}

type field int

const (
	fieldInvoice field = iota
	fieldStockCode
	fieldDescription
	fieldQuantity
	fieldInvoiceDate
	fieldPrice
	fieldCustomerID
	fieldCountry
	numFields
)

var fieldNames = [numFields]string{
	"Invoice", "StockCode", "Description", "Quantity",
	"InvoiceDate", "Price", "Customer ID", "Country",
}

// headerAliases maps normalised header names to fields.
var headerAliases = map[string]field{
	"invoice":     fieldInvoice,
	"invoiceno":   fieldInvoice,
	"stockcode":   fieldStockCode,
	"description": fieldDescription,
	"quantity":    fieldQuantity,
	"invoicedate": fieldInvoiceDate,
	"price":       fieldPrice,
	"unitprice":   fieldPrice,
	"customerid":  fieldCustomerID,
	"country":     fieldCountry,
}

var requiredFields = []field{
	fieldInvoice, fieldDescription, fieldQuantity,
	fieldInvoiceDate, fieldPrice, fieldCustomerID,
}

var timeLayouts = []string{
	fetcher.TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/06 15:04",
}

// Load reads the file at path (XLSX, CSV or a ZIP holding one of them,
// chosen by extension) and parses it into transactions.
func Load(ctx context.Context, path string, opts Options) ([]model.Transaction, Stats, error) {
	rows, err := readRows(ctx, path, opts)
	if err != nil {
		return nil, Stats{}, err
	}

	txns, stats, err := Parse(rows, opts.Progress)
	if err != nil {
		return nil, Stats{}, eris.Wrapf(err, "loader: parse %s", filepath.Base(path))
	}

	zap.L().Info("loader: transactions loaded",
		zap.String("path", path),
		zap.Int("rows", stats.Rows),
		zap.Int("malformed", stats.Malformed),
		zap.Int("transactions", len(txns)),
	)
	return txns, stats, nil
}

func readRows(ctx context.Context, path string, opts Options) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: opts.Sheet})
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "loader: open csv")
		}
		defer f.Close() //nolint:errcheck
		return fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{TrimSpace: true, LazyQuotes: true})
	case ".zip":
		dir, err := os.MkdirTemp("", "rfm-input-")
		if err != nil {
			return nil, eris.Wrap(err, "loader: create extraction directory")
		}
		defer os.RemoveAll(dir) //nolint:errcheck

		table, err := fetcher.ExtractTable(path, dir)
		if err != nil {
			return nil, err
		}
		return readRows(ctx, table, opts)
	default:
		return nil, eris.Errorf("loader: unsupported input extension %q (want .xlsx, .csv or .zip)", ext)
	}
}

// Parse maps header names to columns and converts every data row. The first
// row must be the header. Rows with an unparseable quantity, price or date are
// dropped and counted as malformed.
func Parse(rows [][]string, progress bool) ([]model.Transaction, Stats, error) {
	if len(rows) == 0 {
		return nil, Stats{}, eris.Wrap(ErrMissingColumns, "loader: input has no header row")
	}

	cols, err := mapHeader(rows[0])
	if err != nil {
		return nil, Stats{}, err
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.Default(int64(len(rows)-1), "parsing rows")
	}

	var stats Stats
	txns := make([]model.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if bar != nil {
			_ = bar.Add(1)
		}
		if isBlank(row) {
			continue
		}
		stats.Rows++

		txn, err := parseRow(row, cols)
		if err != nil {
			stats.Malformed++
			zap.L().Debug("loader: dropping malformed row",
				zap.Int("row", i+2),
				zap.Error(err),
			)
			continue
		}
		txns = append(txns, txn)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return txns, stats, nil
}

// mapHeader returns the column index of every field, -1 when absent.
func mapHeader(header []string) ([numFields]int, error) {
	var cols [numFields]int
	for i := range cols {
		cols[i] = -1
	}
	for i, name := range header {
		f, ok := headerAliases[normalizeHeader(name)]
		if ok && cols[f] < 0 {
			cols[f] = i
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if cols[f] < 0 {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return cols, eris.Wrapf(ErrMissingColumns, "loader: header lacks %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "_", "")
}

func parseRow(row []string, cols [numFields]int) (model.Transaction, error) {
	get := func(f field) string {
		idx := cols[f]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	qty, err := parseFinite(get(fieldQuantity))
	if err != nil {
		return model.Transaction{}, eris.Wrap(err, "quantity")
	}
	price, err := parseFinite(get(fieldPrice))
	if err != nil {
		return model.Transaction{}, eris.Wrap(err, "price")
	}
	ts, err := ParseTimestamp(get(fieldInvoiceDate))
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		Invoice:     get(fieldInvoice),
		StockCode:   get(fieldStockCode),
		Description: get(fieldDescription),
		Quantity:    qty,
		InvoiceDate: ts,
		Price:       price,
		CustomerID:  NormalizeCustomerID(get(fieldCustomerID)),
		Country:     get(fieldCountry),
	}, nil
}

// parseFinite parses a number, rejecting NaN and infinities so they are
// treated like missing values.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

// ParseTimestamp accepts the layouts seen in retail exports, plus Excel
// serial day numbers for date cells that lost their number format.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, eris.New("invoice date is empty")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return xlsx.TimeFromExcelTime(serial, false).Round(time.Second), nil
	}
	return time.Time{}, eris.Errorf("invoice date %q: unrecognised layout", s)
}

// NormalizeCustomerID strips the ".0" suffix spreadsheets add to numeric IDs.
func NormalizeCustomerID(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".0")
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
