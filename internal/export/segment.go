// Package export writes segmentation results to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Segment export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// segmentSheet names the worksheet of an XLSX segment export.
const segmentSheet = "customers"

// WriteSegment writes one column of customer IDs under header to path.
func WriteSegment(path, format, header string, ids []string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		return writeSegmentCSV(path, header, ids)
	case FormatXLSX:
		return writeSegmentXLSX(path, header, ids)
	default:
		return eris.Errorf("export: unknown segment format %q", format)
	}
}

func writeSegmentCSV(path, header string, ids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create segment csv")
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write([]string{header}); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, id := range ids {
		if err := w.Write([]string{id}); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush segment csv")
	}
	return eris.Wrap(f.Close(), "export: close segment csv")
}

func writeSegmentXLSX(path, header string, ids []string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(segmentSheet)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	sheet.AddRow().AddCell().SetString(header)
	for _, id := range ids {
		sheet.AddRow().AddCell().SetString(id)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save segment xlsx")
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create output directory")
	}
	return nil
}
