package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Input.Path)
	assert.Equal(t, "Year 2010-2011", cfg.Input.Sheet)
	assert.False(t, cfg.Input.Progress)
	assert.Equal(t, "C", cfg.Clean.CancelMarker)
	assert.Equal(t, "2011-12-11", cfg.Scoring.ReferenceDate)
	assert.Equal(t, 5, cfg.Scoring.Bins)
	assert.Equal(t, "loyal_customers", cfg.Output.Segment)
	assert.Equal(t, "loyal_customer_id.csv", cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "loyal_customer_id", cfg.Output.Header)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
input:
  path: retail.xlsx
  sheet: Year 2009-2010
scoring:
  reference_date: "2010-12-11"
output:
  segment: champions
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "retail.xlsx", cfg.Input.Path)
	assert.Equal(t, "Year 2009-2010", cfg.Input.Sheet)
	assert.Equal(t, "2010-12-11", cfg.Scoring.ReferenceDate)
	assert.Equal(t, "champions", cfg.Output.Segment)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Scoring.Bins)
	assert.Equal(t, "C", cfg.Clean.CancelMarker)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
output:
  format: xlsx
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RFM_OUTPUT_FORMAT", "csv")
	t.Setenv("RFM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("RFM_SCORING_BINS", "4")
	t.Setenv("RFM_INPUT_PATH", "/data/online_retail_II.xlsx")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Scoring.Bins)
	assert.Equal(t, "/data/online_retail_II.xlsx", cfg.Input.Path)
}

func TestReferenceTime(t *testing.T) {
	cfg := validDefaults()
	ref, err := cfg.ReferenceTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2011, 12, 11, 0, 0, 0, 0, time.UTC), ref)

	cfg.Scoring.ReferenceDate = "11/12/2011"
	_, err = cfg.ReferenceTime()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Input.Path = "retail.xlsx"
	cfg.Input.Sheet = "Year 2010-2011"
	cfg.Clean.CancelMarker = "C"
	cfg.Scoring.ReferenceDate = "2011-12-11"
	cfg.Scoring.Bins = 5
	cfg.Output.Segment = "loyal_customers"
	cfg.Output.Path = "loyal_customer_id.csv"
	cfg.Output.Format = "csv"
	cfg.Output.Header = "loyal_customer_id"
	return cfg
}

func TestValidateSegment_AllPresent(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("segment"))
}

func TestValidateSegment_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Input.Path = ""
	cfg.Output.Path = ""
	cfg.Output.Format = "parquet"

	err := cfg.Validate("segment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input.path")
	assert.Contains(t, err.Error(), "output.path")
	assert.Contains(t, err.Error(), "output.format must be csv or xlsx")
}

func TestValidateSummary_IgnoresOutput(t *testing.T) {
	cfg := validDefaults()
	cfg.Output = OutputConfig{}

	assert.NoError(t, cfg.Validate("summary"))
}

func TestValidateBadReferenceDate(t *testing.T) {
	cfg := validDefaults()
	cfg.Scoring.ReferenceDate = "yesterday"

	err := cfg.Validate("summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference_date")
}

func TestValidateBinBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Scoring.Bins = 1
	err := cfg.Validate("rules")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.bins must be between 2 and 9")

	cfg.Scoring.Bins = 10
	assert.Error(t, cfg.Validate("segment"))

	cfg.Scoring.Bins = 9
	assert.NoError(t, cfg.Validate("segment"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation mode")
}
