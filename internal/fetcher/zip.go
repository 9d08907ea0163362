package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// TableExtensions are the file types ExtractTable accepts inside an archive.
var TableExtensions = []string{".xlsx", ".csv", ".txt"}

// ExtractTable extracts the one spreadsheet or delimited file held by a ZIP
// archive into destDir and returns its path. Directories, other file types
// and macOS resource forks are ignored.
func ExtractTable(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var tables []*zip.File
	for _, f := range r.File {
		if isTableEntry(f) {
			tables = append(tables, f)
		}
	}

	if len(tables) != 1 {
		return "", eris.Errorf("zip: expected exactly 1 table file in %s, got %d", filepath.Base(zipPath), len(tables))
	}
	return extractEntry(tables[0], destDir)
}

func isTableEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	return slices.Contains(TableExtensions, ext)
}

// extractEntry writes f under destDir, rejecting names that escape it.
func extractEntry(f *zip.File, destDir string) (string, error) {
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}
	return destPath, eris.Wrap(out.Close(), "zip: close file")
}
