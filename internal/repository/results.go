package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	runsTable      = "extract_runs"
	summariesTable = "invoice_summaries"
	lineItemsTable = "invoice_line_items"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extract_runs (
		run_id          TEXT PRIMARY KEY,
		started_at      TEXT NOT NULL,
		finished_at     TEXT NOT NULL DEFAULT '',
		files_total     INTEGER NOT NULL DEFAULT 0,
		files_extracted INTEGER NOT NULL DEFAULT 0,
		files_partial   INTEGER NOT NULL DEFAULT 0,
		files_failed    INTEGER NOT NULL DEFAULT 0,
		files_skipped   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_summaries (
		run_id          TEXT NOT NULL,
		pdf_filename    TEXT NOT NULL,
		order_number    TEXT NOT NULL DEFAULT '',
		invoice_number  TEXT NOT NULL DEFAULT '',
		invoice_date    TEXT NOT NULL DEFAULT '',
		due_date        TEXT NOT NULL DEFAULT '',
		total_amount    TEXT NOT NULL DEFAULT '',
		freight_inc_gst TEXT NOT NULL DEFAULT '',
		supplier        TEXT NOT NULL DEFAULT '',
		abn             TEXT NOT NULL DEFAULT '',
		po_number       TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, pdf_filename)
	)`,
	`CREATE TABLE IF NOT EXISTS invoice_line_items (
		run_id          TEXT NOT NULL,
		pdf_filename    TEXT NOT NULL,
		line_index      INTEGER NOT NULL,
		order_number    TEXT NOT NULL DEFAULT '',
		invoice_number  TEXT NOT NULL DEFAULT '',
		sku             TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		qty             TEXT NOT NULL DEFAULT '',
		unit_price      TEXT NOT NULL DEFAULT '',
		amount          TEXT NOT NULL DEFAULT '',
		freight_inc_gst TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, pdf_filename, line_index)
	)`,
}

// ResultRepository stores batch results in the extract_runs, invoice_summaries and
// invoice_line_items tables.
type ResultRepository interface {
	CreateSchema(ctx context.Context) error
	StartRun(ctx context.Context, runID string, startedAt time.Time) error
	SaveDocument(ctx context.Context, runID string, summary entity.SummaryRow, items []entity.LineItemRow) error
	DeleteDocument(ctx context.Context, runID, pdfFilename string) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, stats entity.BatchStats) error
	ListSummaries(ctx context.Context, runID string) ([]entity.SummaryRow, error)
	ListLineItems(ctx context.Context, runID string) ([]entity.LineItemRow, error)
}

type resultRepository struct {
	db *DB
}

func NewResultRepository(db *DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) CreateSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (r *resultRepository) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	q := fmt.Sprintf(`INSERT INTO %s (run_id, started_at) VALUES (%s, %s)
		ON CONFLICT (run_id) DO NOTHING`, runsTable, r.db.Dialect.placeholder(1), r.db.Dialect.placeholder(2))
	if _, err := r.db.ExecContext(ctx, q, runID, formatTime(startedAt)); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// SaveDocument replaces the rows of one document in a single transaction, so a
// summary row is never visible without its line items.
func (r *resultRepository) SaveDocument(ctx context.Context, runID string, summary entity.SummaryRow, items []entity.LineItemRow) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.deleteDocument(ctx, tx, runID, summary.PDFFilename); err != nil {
		return err
	}

	summaryArgs := []any{runID}
	for _, v := range summary.Values() {
		summaryArgs = append(summaryArgs, v)
	}
	if _, err = tx.ExecContext(ctx, r.insertSQL(summariesTable, constants.SummaryColumns), summaryArgs...); err != nil {
		return fmt.Errorf("insert summary %s: %w", summary.PDFFilename, err)
	}

	if len(items) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx, r.insertSQL(lineItemsTable, constants.LineItemColumns))
		if err != nil {
			return fmt.Errorf("prepare line item insert: %w", err)
		}
		defer stmt.Close()
		for _, it := range items {
			args := []any{runID, it.PDFFilename, it.LineIndex}
			for _, v := range it.Values()[2:] {
				args = append(args, v)
			}
			if _, err = stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert line item %s#%d: %w", it.PDFFilename, it.LineIndex, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *resultRepository) DeleteDocument(ctx context.Context, runID, pdfFilename string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err = r.deleteDocument(ctx, tx, runID, pdfFilename); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *resultRepository) deleteDocument(ctx context.Context, tx *sql.Tx, runID, pdfFilename string) error {
	p1, p2 := r.db.Dialect.placeholder(1), r.db.Dialect.placeholder(2)
	for _, table := range []string{lineItemsTable, summariesTable} {
		q := fmt.Sprintf(`DELETE FROM %s WHERE run_id = %s AND pdf_filename = %s`, table, p1, p2)
		if _, err := tx.ExecContext(ctx, q, runID, pdfFilename); err != nil {
			return fmt.Errorf("delete %s rows of %s: %w", table, pdfFilename, err)
		}
	}
	return nil
}

func (r *resultRepository) FinishRun(ctx context.Context, runID string, finishedAt time.Time, stats entity.BatchStats) error {
	d := r.db.Dialect
	q := fmt.Sprintf(`UPDATE %s SET finished_at = %s, files_total = %s, files_extracted = %s,
		files_partial = %s, files_failed = %s, files_skipped = %s WHERE run_id = %s`,
		runsTable, d.placeholder(1), d.placeholder(2), d.placeholder(3),
		d.placeholder(4), d.placeholder(5), d.placeholder(6), d.placeholder(7))
	res, err := r.db.ExecContext(ctx, q, formatTime(finishedAt),
		stats.Total, stats.Extracted, stats.Partial, stats.Failed, stats.Skipped, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", runID)
	}
	return nil
}

func (r *resultRepository) ListSummaries(ctx context.Context, runID string) ([]entity.SummaryRow, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE run_id = %s ORDER BY pdf_filename`,
		strings.Join(constants.SummaryColumns, ", "), summariesTable, r.db.Dialect.placeholder(1))
	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	var out []entity.SummaryRow
	for rows.Next() {
		vals := make([]string, len(constants.SummaryColumns))
		dest := make([]any, len(vals))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		s := entity.SummaryRow{PDFFilename: vals[0]}
		for i, name := range constants.SummaryColumns[1:] {
			s.Set(name, vals[i+1])
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *resultRepository) ListLineItems(ctx context.Context, runID string) ([]entity.LineItemRow, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE run_id = %s ORDER BY pdf_filename, line_index`,
		strings.Join(constants.LineItemColumns, ", "), lineItemsTable, r.db.Dialect.placeholder(1))
	rows, err := r.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var out []entity.LineItemRow
	for rows.Next() {
		var li entity.LineItemRow
		if err := rows.Scan(&li.PDFFilename, &li.LineIndex, &li.OrderNumber, &li.InvoiceNumber,
			&li.SKU, &li.Description, &li.Qty, &li.UnitPrice, &li.Amount, &li.FreightIncGST); err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// insertSQL builds an insert of run_id followed by cols.
func (r *resultRepository) insertSQL(table string, cols []string) string {
	ph := make([]string, 0, len(cols)+1)
	for i := 0; i <= len(cols); i++ {
		ph = append(ph, r.db.Dialect.placeholder(i+1))
	}
	return fmt.Sprintf("INSERT INTO %s (run_id, %s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(ph, ", "))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
