package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"INPUT_DIR", "INPUT_PATTERN", "INPUT_RECURSIVE", "INPUT_SKIP_HIDDEN",
	"SUMMARY_CSV", "LINE_ITEMS_CSV", "MIRROR_DIR", "XLSX_OUT", "CSV_DELIMITER",
	"TEXT_ENGINE", "PDFTOTEXT_BIN",
	"OCR_COMMAND", "OCR_OUTPUT_DIR", "OCR_LANGUAGE", "OCR_TIMEOUT", "OCR_MAX_CONCURRENT", "OCR_KEEP_OUTPUT",
	"ORDER_PREFIX", "ORDER_DIGITS",
	"BATCH_WORKERS", "DOCUMENT_TIMEOUT",
	"DB_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_LIFETIME", "DB_MAX_CONN_IDLE_TIME", "DB_DIAL_TIMEOUT",
	"LOG_LEVEL", "LOG_FILE",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoicex.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "*.pdf", cfg.Input.Pattern)
	assert.Equal(t, "extracted_invoice_data.csv", cfg.Output.SummaryCSV)
	assert.Equal(t, "line_items.csv", cfg.Output.LineItemsCSV)
	assert.Equal(t, TextEnginePdftotext, cfg.Text.Engine)
	assert.Equal(t, "3100", cfg.Extract.OrderPrefix)
	assert.Equal(t, 6, cfg.Extract.OrderDigits)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("BATCH_WORKERS", "4")
	t.Setenv("ORDER_PREFIX", "4200")
	t.Setenv("OCR_TIMEOUT", "90s")
	t.Setenv("INPUT_RECURSIVE", "true")
	t.Setenv("ORDER_DIGITS", "not-a-number")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "4200", cfg.Extract.OrderPrefix)
	assert.Equal(t, 90*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.Input.Recursive)
	assert.Equal(t, 6, cfg.Extract.OrderDigits, "unparseable values keep the default")
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
[input]
dir = "scans"
recursive = true

[output]
delimiter = ";"
xlsx = "out/invoices.xlsx"

[ocr]
timeout = "2m"
language = "eng+deu"

[batch]
workers = 3

[database]
max_conn_lifetime = "1h"
`)
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("DB_MAX_CONN_IDLE_TIME", "45s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "scans", cfg.Input.Dir)
	assert.True(t, cfg.Input.Recursive)
	assert.Equal(t, ";", cfg.Output.Delimiter)
	assert.Equal(t, "out/invoices.xlsx", cfg.Output.XLSX)
	assert.Equal(t, 2*time.Minute, cfg.OCR.Timeout)
	assert.Equal(t, "eng+deu", cfg.OCR.Language)
	assert.Equal(t, 8, cfg.Batch.Workers, "environment wins over the file")
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 45*time.Second, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, "line_items.csv", cfg.Output.LineItemsCSV, "unset keys keep defaults")
}

func TestLoadConfig_FileRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown section", "[server]\nport = 80\n"},
		{"unknown key", "[batch]\nthreads = 2\n"},
		{"bad duration", "[ocr]\ntimeout = \"soon\"\n"},
		{"zero workers", "[batch]\nworkers = 0\n"},
		{"unknown engine", "[text]\nengine = \"magic\"\n"},
		{"wrong type", "[input]\nrecursive = \"yes\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, CodeConfig, ErrorCode(err))
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearConfigEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Equal(t, CodeConfig, ErrorCode(err))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"delimiter", func(c *Config) { c.Output.Delimiter = ";;" }, "output.delimiter"},
		{"engine", func(c *Config) { c.Text.Engine = "magic" }, "text.engine"},
		{"order digits", func(c *Config) { c.Extract.OrderDigits = -1 }, "extract.order_digits"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"db conns", func(c *Config) {
			c.Database.URL = "sqlite://results.db"
			c.Database.MaxConns = 0
		}, "database.max_conns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_ValidateNativeEngineNeedsNoBinary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Text.Engine = TextEngineNative
	cfg.Text.Pdftotext = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("a", "", Required).
		Field("b", 0, Positive).
		Field("c", "x", OneOf("y", "z"))

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Contains(t, v.ErrorMessage(), "'a'")
	assert.Contains(t, v.ErrorMessage(), "must be one of y, z")
}

func TestOCRError_Classification(t *testing.T) {
	err := OCRError("scan.pdf", ErrOCRTimeout)
	assert.ErrorIs(t, err, ErrOCR)
	assert.ErrorIs(t, err, ErrOCRTimeout)
	assert.Equal(t, CodeOCRTimeout, ErrorCode(err))

	err = OCRError("scan.pdf", os.ErrNotExist)
	assert.ErrorIs(t, err, ErrOCR)
	assert.Equal(t, CodeOCRFailed, ErrorCode(err))
}
