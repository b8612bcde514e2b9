package main

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/lineitems"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// newProcessor wires the per-document pipeline from cfg.
func newProcessor(cfg *common.Config, logger *slog.Logger) (*core.Processor, error) {
	runner := ocr.ExecRunner{}
	text, err := extract.New(cfg.Text, runner, logger)
	if err != nil {
		return nil, err
	}
	engine := ocr.NewOCRmyPDF(ocr.Config{
		Command:  cfg.OCR.Command,
		Language: cfg.OCR.Language,
		Timeout:  cfg.OCR.Timeout,
	}, runner, logger)
	fx, err := fields.NewExtractor(cfg.Extract)
	if err != nil {
		return nil, err
	}
	return core.NewProcessor(logger, text, engine, fx, lineitems.NewParser(), core.ProcessorOptions{
		OCROutputDir:  cfg.OCR.OutputDir,
		KeepOCROutput: cfg.OCR.KeepOutput,
		MaxOCR:        cfg.OCR.MaxConcurrent,
	}), nil
}

// newSink wires every configured destination. The returned cleanup closes the database.
func newSink(ctx context.Context, cfg *common.Config, logger *slog.Logger) (export.Sink, func(), error) {
	csvSink, err := export.NewCSVSink(export.CSVConfig{
		SummaryPath:   cfg.Output.SummaryCSV,
		LineItemsPath: cfg.Output.LineItemsCSV,
		Delimiter:     cfg.Output.Delimiter,
		MirrorDir:     cfg.Output.MirrorDir,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	sinks := []export.Sink{csvSink}
	if cfg.Output.XLSX != "" {
		sinks = append(sinks, export.NewXLSXSink(cfg.Output.XLSX, logger))
	}

	cleanup := func() {}
	if cfg.Database.URL != "" {
		db, err := repository.Open(ctx, repository.Config{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, nil, common.SinkError("open result store", err)
		}
		if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout, logger); err != nil {
			db.Close(logger)
			return nil, nil, common.SinkError("reach result store", err)
		}
		repo := repository.NewResultRepository(db)
		if err := repo.CreateSchema(ctx); err != nil {
			db.Close(logger)
			return nil, nil, common.SinkError("prepare result store", err)
		}
		sinks = append(sinks, repository.NewSink(repo, logger))
		cleanup = func() { db.Close(logger) }
	}
	return export.NewMulti(logger, sinks...), cleanup, nil
}

func discoverOptions(cfg *common.Config) ingest.DiscoverOptions {
	return ingest.DiscoverOptions{
		Pattern:    cfg.Input.Pattern,
		Recursive:  cfg.Input.Recursive,
		SkipHidden: cfg.Input.SkipHidden,
	}
}
