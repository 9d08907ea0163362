package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ReferenceDateLayout is the layout of scoring.reference_date.
const ReferenceDateLayout = "2006-01-02"

// Config holds the full application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Clean    CleanConfig    `yaml:"clean" mapstructure:"clean"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Segments SegmentsConfig `yaml:"segments" mapstructure:"segments"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputConfig locates the transaction sheet.
type InputConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	Sheet    string `yaml:"sheet" mapstructure:"sheet"`
	Progress bool   `yaml:"progress" mapstructure:"progress"`
}

// CleanConfig configures record filtering.
type CleanConfig struct {
	CancelMarker string `yaml:"cancel_marker" mapstructure:"cancel_marker"`
}

// ScoringConfig configures the RFM metrics and quantile scores.
type ScoringConfig struct {
	ReferenceDate string `yaml:"reference_date" mapstructure:"reference_date"`
	Bins          int    `yaml:"bins" mapstructure:"bins"`
}

// SegmentsConfig points at an optional rule file overriding the built-in table.
type SegmentsConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// OutputConfig configures the exports written after a successful run.
type OutputConfig struct {
	Segment    string `yaml:"segment" mapstructure:"segment"`
	Path       string `yaml:"path" mapstructure:"path"`
	Format     string `yaml:"format" mapstructure:"format"`
	Header     string `yaml:"header" mapstructure:"header"`
	TablePath  string `yaml:"table_path" mapstructure:"table_path"`
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.path", "")
	v.SetDefault("input.sheet", "Year 2010-2011")
	v.SetDefault("input.progress", false)
	v.SetDefault("clean.cancel_marker", "C")
	v.SetDefault("scoring.reference_date", "2011-12-11")
	v.SetDefault("scoring.bins", 5)
	v.SetDefault("segments.rules_path", "")
	v.SetDefault("output.segment", "loyal_customers")
	v.SetDefault("output.path", "loyal_customer_id.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.header", "loyal_customer_id")
	v.SetDefault("output.table_path", "")
	v.SetDefault("output.sqlite_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// ReferenceTime parses scoring.reference_date as a UTC midnight.
func (c *Config) ReferenceTime() (time.Time, error) {
	t, err := time.ParseInLocation(ReferenceDateLayout, c.Scoring.ReferenceDate, time.UTC)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "config: parse reference_date %q", c.Scoring.ReferenceDate)
	}
	return t, nil
}

// Validate checks that required fields are present for the given mode.
// Modes: "segment" (full pipeline with exports), "summary" (pipeline, no
// exports), "rules" (rule table only).
func (c *Config) Validate(mode string) error {
	var missing []string

	switch mode {
	case "segment", "summary":
		if c.Input.Path == "" {
			missing = append(missing, "input.path (RFM_INPUT_PATH or --input)")
		}
		if _, err := c.ReferenceTime(); err != nil {
			missing = append(missing, fmt.Sprintf("scoring.reference_date must be %s", ReferenceDateLayout))
		}
		if c.Scoring.Bins < 2 || c.Scoring.Bins > 9 {
			missing = append(missing, fmt.Sprintf("scoring.bins must be between 2 and 9 (got %d)", c.Scoring.Bins))
		}
	case "rules":
		if c.Scoring.Bins < 2 || c.Scoring.Bins > 9 {
			missing = append(missing, fmt.Sprintf("scoring.bins must be between 2 and 9 (got %d)", c.Scoring.Bins))
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if mode == "segment" {
		if c.Output.Segment == "" {
			missing = append(missing, "output.segment")
		}
		if c.Output.Path == "" {
			missing = append(missing, "output.path")
		}
		if c.Output.Format != "csv" && c.Output.Format != "xlsx" {
			missing = append(missing, fmt.Sprintf("output.format must be csv or xlsx (got %q)", c.Output.Format))
		}
		if c.Output.Header == "" {
			missing = append(missing, "output.header")
		}
	}

	if len(missing) > 0 {
		return eris.Errorf("config: %s mode: %s", mode, strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
