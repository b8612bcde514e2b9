package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Run one PDF through the pipeline and print what was recognised",
	Long: `Prints the acquisition method, the recognised fields and the parsed line items
of a single document as JSON. Nothing is written to the output tables.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

type inspectOutput struct {
	PDFFilename  string              `json:"pdf_filename"`
	Status       constants.DocStatus `json:"status"`
	Method       string              `json:"method,omitempty"`
	OCRAttempted bool                `json:"ocr_attempted"`
	TextBytes    int                 `json:"text_bytes"`
	DurationMS   int64               `json:"duration_ms"`
	Fields       entity.FieldRecord  `json:"fields"`
	Missing      []string            `json:"missing_fields"`
	LineItems    []entity.LineItem   `json:"line_items"`
	Error        string              `json:"error,omitempty"`
	ErrorCode    string              `json:"error_code,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	doc, err := ingest.NewDocument(filepath.Dir(path), path)
	if err != nil {
		return err
	}
	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}

	res := proc.Process(cmd.Context(), doc)
	out := inspectOutput{
		PDFFilename:  doc.Name,
		Status:       res.Status,
		Method:       res.Method,
		OCRAttempted: res.OCRAttempted,
		TextBytes:    res.TextBytes,
		DurationMS:   res.Duration.Milliseconds(),
		Fields:       res.Fields,
		Missing:      res.Fields.Missing(),
		LineItems:    res.Items,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
		out.ErrorCode = common.ErrorCode(res.Err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return res.Err
}
