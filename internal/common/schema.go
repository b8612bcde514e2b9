package common

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

// ConfigFileSchema returns the JSON-Schema (draft 2020-12 subset) a config file must satisfy
// once decoded from TOML.
func ConfigFileSchema() map[string]any {
	str := map[string]any{"type": "string"}
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	boolean := map[string]any{"type": "boolean"}
	duration := map[string]any{"type": "string", "pattern": durationPattern}
	positive := map[string]any{"type": "integer", "minimum": 1}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"input": section(map[string]any{
				"dir":         nonEmpty,
				"pattern":     nonEmpty,
				"recursive":   boolean,
				"skip_hidden": boolean,
			}),
			"output": section(map[string]any{
				"summary_csv":    nonEmpty,
				"line_items_csv": nonEmpty,
				"mirror_dir":     str,
				"xlsx":           str,
				"delimiter":      map[string]any{"type": "string", "minLength": 1, "maxLength": 1},
			}),
			"text": section(map[string]any{
				"engine":        map[string]any{"type": "string", "enum": []string{TextEnginePdftotext, TextEngineNative}},
				"pdftotext_bin": nonEmpty,
			}),
			"ocr": section(map[string]any{
				"command":        nonEmpty,
				"output_dir":     str,
				"language":       str,
				"timeout":        duration,
				"max_concurrent": positive,
				"keep_output":    boolean,
			}),
			"extract": section(map[string]any{
				"order_prefix": map[string]any{"type": "string", "pattern": `^[0-9A-Za-z]+$`},
				"order_digits": map[string]any{"type": "integer", "minimum": 1, "maximum": 32},
			}),
			"batch": section(map[string]any{
				"workers":          positive,
				"document_timeout": duration,
			}),
			"database": section(map[string]any{
				"url":                str,
				"max_conns":          positive,
				"min_conns":          map[string]any{"type": "integer", "minimum": 0},
				"max_conn_lifetime":  duration,
				"max_conn_idle_time": duration,
				"dial_timeout":       duration,
			}),
			"log": section(map[string]any{
				"level": map[string]any{"type": "string", "enum": []string{"debug", "info", "warn", "error"}},
				"file":  str,
			}),
		},
	}
}

func section(props map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema compiles schemaMap and validates the JSON document data against it.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
