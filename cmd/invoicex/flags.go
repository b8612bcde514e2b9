package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// inputFlags are shared by run and watch.
type inputFlags struct {
	dir       string
	pattern   string
	recursive bool
	workers   int

	summary   string
	lineItems string
	xlsx      string
	mirror    string
	dbURL     string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.dir, "input", "i", "", "directory of PDFs (default from config: invoices_in)")
	fs.StringVar(&f.pattern, "pattern", "", "filename pattern, case-insensitive (default *.pdf)")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "descend into sub-directories")
	fs.IntVarP(&f.workers, "workers", "w", 0, "documents processed concurrently")
	fs.StringVar(&f.summary, "summary", "", "summary CSV path")
	fs.StringVar(&f.lineItems, "line-items", "", "line items CSV path")
	fs.StringVar(&f.xlsx, "xlsx", "", "also write an XLSX workbook to this path")
	fs.StringVar(&f.mirror, "mirror", "", "copy both CSV files into this directory")
	fs.StringVar(&f.dbURL, "db", "", "also store results in this database (postgres:// or sqlite://)")
}

var runFlags, watchFlags inputFlags

// applyFlags copies explicitly set flags of cmd onto c.
func applyFlags(cmd *cobra.Command, c *common.Config) {
	var f *inputFlags
	switch cmd {
	case runCmd:
		f = &runFlags
	case watchCmd:
		f = &watchFlags
	default:
		return
	}
	changed := cmd.Flags().Changed
	if changed("input") {
		c.Input.Dir = f.dir
	}
	if changed("pattern") {
		c.Input.Pattern = f.pattern
	}
	if changed("recursive") {
		c.Input.Recursive = f.recursive
	}
	if changed("workers") {
		c.Batch.Workers = f.workers
	}
	if changed("summary") {
		c.Output.SummaryCSV = f.summary
	}
	if changed("line-items") {
		c.Output.LineItemsCSV = f.lineItems
	}
	if changed("xlsx") {
		c.Output.XLSX = f.xlsx
	}
	if changed("mirror") {
		c.Output.MirrorDir = f.mirror
	}
	if changed("db") {
		c.Database.URL = f.dbURL
	}
}
