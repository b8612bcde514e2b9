package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Text     TextConfig
	OCR      OCRConfig
	Extract  ExtractConfig
	Batch    BatchConfig
	Database DatabaseConfig
	Log      LogConfig
}

// InputConfig selects the documents of a run
type InputConfig struct {
	Dir        string
	Pattern    string
	Recursive  bool
	SkipHidden bool
}

// OutputConfig holds destinations of the two output relations
type OutputConfig struct {
	SummaryCSV   string
	LineItemsCSV string
	MirrorDir    string // empty disables mirroring
	XLSX         string // empty disables the workbook
	Delimiter    string
}

// Text engines
const (
	TextEnginePdftotext = "pdftotext"
	TextEngineNative    = "native"
)

// TextConfig holds direct text extraction settings
type TextConfig struct {
	Engine    string
	Pdftotext string
}

// OCRConfig holds OCR fallback settings
type OCRConfig struct {
	Command       string
	OutputDir     string
	Language      string
	Timeout       time.Duration
	MaxConcurrent int
	KeepOutput    bool
}

// ExtractConfig holds the closed order-number format
type ExtractConfig struct {
	OrderPrefix string
	OrderDigits int
}

// BatchConfig holds worker pool settings
type BatchConfig struct {
	Workers         int
	DocumentTimeout time.Duration
}

// DatabaseConfig holds the optional result store settings
type DatabaseConfig struct {
	URL             string // empty disables the store
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
	File  string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Dir:        "invoices_in",
			Pattern:    constants.DefaultInputPattern,
			SkipHidden: true,
		},
		Output: OutputConfig{
			SummaryCSV:   "extracted_invoice_data.csv",
			LineItemsCSV: "line_items.csv",
			Delimiter:    ",",
		},
		Text: TextConfig{
			Engine:    TextEnginePdftotext,
			Pdftotext: "pdftotext",
		},
		OCR: OCRConfig{
			Command:       "ocrmypdf",
			OutputDir:     "ocr_output",
			Timeout:       5 * time.Minute,
			MaxConcurrent: 1,
			KeepOutput:    true,
		},
		Extract: ExtractConfig{
			OrderPrefix: "3100",
			OrderDigits: 6,
		},
		Batch: BatchConfig{
			Workers:         1,
			DocumentTimeout: 10 * time.Minute,
		},
		Database: DatabaseConfig{
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig builds the configuration from defaults, a .env file, an optional TOML
// file at path and environment variables, in that order of precedence (last wins).
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError(CodeConfig, "load .env", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError(CodeConfig, "read config file", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return NewAppError(CodeConfig, "parse config file", err)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return NewAppError(CodeConfig, "encode config file", err)
	}
	if err := ValidateJSONAgainstSchema(ConfigFileSchema(), b); err != nil {
		return NewAppError(CodeConfig, path, errors.Join(ErrInvalidInput, err))
	}
	var fc fileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return NewAppError(CodeConfig, "decode config file", err)
	}
	return fc.apply(c)
}

func (c *Config) applyEnv() {
	c.Input.Dir = getEnv("INPUT_DIR", c.Input.Dir)
	c.Input.Pattern = getEnv("INPUT_PATTERN", c.Input.Pattern)
	c.Input.Recursive = getEnvAsBool("INPUT_RECURSIVE", c.Input.Recursive)
	c.Input.SkipHidden = getEnvAsBool("INPUT_SKIP_HIDDEN", c.Input.SkipHidden)

	c.Output.SummaryCSV = getEnv("SUMMARY_CSV", c.Output.SummaryCSV)
	c.Output.LineItemsCSV = getEnv("LINE_ITEMS_CSV", c.Output.LineItemsCSV)
	c.Output.MirrorDir = getEnv("MIRROR_DIR", c.Output.MirrorDir)
	c.Output.XLSX = getEnv("XLSX_OUT", c.Output.XLSX)
	c.Output.Delimiter = getEnv("CSV_DELIMITER", c.Output.Delimiter)

	c.Text.Engine = getEnv("TEXT_ENGINE", c.Text.Engine)
	c.Text.Pdftotext = getEnv("PDFTOTEXT_BIN", c.Text.Pdftotext)

	c.OCR.Command = getEnv("OCR_COMMAND", c.OCR.Command)
	c.OCR.OutputDir = getEnv("OCR_OUTPUT_DIR", c.OCR.OutputDir)
	c.OCR.Language = getEnv("OCR_LANGUAGE", c.OCR.Language)
	c.OCR.Timeout = getEnvAsDuration("OCR_TIMEOUT", c.OCR.Timeout)
	c.OCR.MaxConcurrent = getEnvAsInt("OCR_MAX_CONCURRENT", c.OCR.MaxConcurrent)
	c.OCR.KeepOutput = getEnvAsBool("OCR_KEEP_OUTPUT", c.OCR.KeepOutput)

	c.Extract.OrderPrefix = getEnv("ORDER_PREFIX", c.Extract.OrderPrefix)
	c.Extract.OrderDigits = getEnvAsInt("ORDER_DIGITS", c.Extract.OrderDigits)

	c.Batch.Workers = getEnvAsInt("BATCH_WORKERS", c.Batch.Workers)
	c.Batch.DocumentTimeout = getEnvAsDuration("DOCUMENT_TIMEOUT", c.Batch.DocumentTimeout)

	c.Database.URL = getEnv("DB_URL", c.Database.URL)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("input.dir", c.Input.Dir, Required).
		Field("input.pattern", c.Input.Pattern, Required).
		Field("output.summary_csv", c.Output.SummaryCSV, Required).
		Field("output.line_items_csv", c.Output.LineItemsCSV, Required).
		Field("output.delimiter", c.Output.Delimiter, Required, MaxLength(1)).
		Field("text.engine", c.Text.Engine, OneOf(TextEnginePdftotext, TextEngineNative)).
		Field("ocr.command", c.OCR.Command, Required).
		Field("ocr.timeout", c.OCR.Timeout, Positive).
		Field("ocr.max_concurrent", c.OCR.MaxConcurrent, Positive).
		Field("extract.order_prefix", c.Extract.OrderPrefix, Required).
		Field("extract.order_digits", c.Extract.OrderDigits, Positive).
		Field("batch.workers", c.Batch.Workers, Positive).
		Field("batch.document_timeout", c.Batch.DocumentTimeout, Positive).
		Field("log.level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error"))
	if c.Text.Engine == TextEnginePdftotext {
		v.Field("text.pdftotext", c.Text.Pdftotext, Required)
	}
	if c.Database.URL != "" {
		v.Field("database.max_conns", c.Database.MaxConns, Positive).
			Field("database.dial_timeout", c.Database.DialTimeout, Positive)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// fileConfig mirrors the TOML layout; nil means "keep the current value".
type fileConfig struct {
	Input *struct {
		Dir        *string `json:"dir"`
		Pattern    *string `json:"pattern"`
		Recursive  *bool   `json:"recursive"`
		SkipHidden *bool   `json:"skip_hidden"`
	} `json:"input"`
	Output *struct {
		SummaryCSV   *string `json:"summary_csv"`
		LineItemsCSV *string `json:"line_items_csv"`
		MirrorDir    *string `json:"mirror_dir"`
		XLSX         *string `json:"xlsx"`
		Delimiter    *string `json:"delimiter"`
	} `json:"output"`
	Text *struct {
		Engine    *string `json:"engine"`
		Pdftotext *string `json:"pdftotext_bin"`
	} `json:"text"`
	OCR *struct {
		Command       *string `json:"command"`
		OutputDir     *string `json:"output_dir"`
		Language      *string `json:"language"`
		Timeout       *string `json:"timeout"`
		MaxConcurrent *int    `json:"max_concurrent"`
		KeepOutput    *bool   `json:"keep_output"`
	} `json:"ocr"`
	Extract *struct {
		OrderPrefix *string `json:"order_prefix"`
		OrderDigits *int    `json:"order_digits"`
	} `json:"extract"`
	Batch *struct {
		Workers         *int    `json:"workers"`
		DocumentTimeout *string `json:"document_timeout"`
	} `json:"batch"`
	Database *struct {
		URL             *string `json:"url"`
		MaxConns        *int32  `json:"max_conns"`
		MinConns        *int32  `json:"min_conns"`
		MaxConnLifetime *string `json:"max_conn_lifetime"`
		MaxConnIdleTime *string `json:"max_conn_idle_time"`
		DialTimeout     *string `json:"dial_timeout"`
	} `json:"database"`
	Log *struct {
		Level *string `json:"level"`
		File  *string `json:"file"`
	} `json:"log"`
}

func (fc fileConfig) apply(c *Config) error {
	if s := fc.Input; s != nil {
		setIf(&c.Input.Dir, s.Dir)
		setIf(&c.Input.Pattern, s.Pattern)
		setIf(&c.Input.Recursive, s.Recursive)
		setIf(&c.Input.SkipHidden, s.SkipHidden)
	}
	if s := fc.Output; s != nil {
		setIf(&c.Output.SummaryCSV, s.SummaryCSV)
		setIf(&c.Output.LineItemsCSV, s.LineItemsCSV)
		setIf(&c.Output.MirrorDir, s.MirrorDir)
		setIf(&c.Output.XLSX, s.XLSX)
		setIf(&c.Output.Delimiter, s.Delimiter)
	}
	if s := fc.Text; s != nil {
		setIf(&c.Text.Engine, s.Engine)
		setIf(&c.Text.Pdftotext, s.Pdftotext)
	}
	if s := fc.OCR; s != nil {
		setIf(&c.OCR.Command, s.Command)
		setIf(&c.OCR.OutputDir, s.OutputDir)
		setIf(&c.OCR.Language, s.Language)
		setIf(&c.OCR.MaxConcurrent, s.MaxConcurrent)
		setIf(&c.OCR.KeepOutput, s.KeepOutput)
		if err := setDuration(&c.OCR.Timeout, s.Timeout, "ocr.timeout"); err != nil {
			return err
		}
	}
	if s := fc.Extract; s != nil {
		setIf(&c.Extract.OrderPrefix, s.OrderPrefix)
		setIf(&c.Extract.OrderDigits, s.OrderDigits)
	}
	if s := fc.Batch; s != nil {
		setIf(&c.Batch.Workers, s.Workers)
		if err := setDuration(&c.Batch.DocumentTimeout, s.DocumentTimeout, "batch.document_timeout"); err != nil {
			return err
		}
	}
	if s := fc.Database; s != nil {
		setIf(&c.Database.URL, s.URL)
		setIf(&c.Database.MaxConns, s.MaxConns)
		setIf(&c.Database.MinConns, s.MinConns)
		if err := setDuration(&c.Database.MaxConnLifetime, s.MaxConnLifetime, "database.max_conn_lifetime"); err != nil {
			return err
		}
		if err := setDuration(&c.Database.MaxConnIdleTime, s.MaxConnIdleTime, "database.max_conn_idle_time"); err != nil {
			return err
		}
		if err := setDuration(&c.Database.DialTimeout, s.DialTimeout, "database.dial_timeout"); err != nil {
			return err
		}
	}
	if s := fc.Log; s != nil {
		setIf(&c.Log.Level, s.Level)
		setIf(&c.Log.File, s.File)
	}
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, field string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("%s: invalid duration %q", field, *v), ErrInvalidInput)
	}
	*dst = d
	return nil
}
