package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// DiscoverOptions select the documents of a run.
type DiscoverOptions struct {
	Pattern    string // glob on the base name, case-insensitive
	Recursive  bool
	SkipHidden bool
}

type DirStats struct {
	Scanned uint32 // regular files looked at
	Matched uint32
	Hidden  uint32 // hidden files and directories skipped
	Failed  uint32 // entries that could not be read
}

// Discover lists the documents under root sorted by name. Each document is named by
// its slash-separated path relative to root, so names stay unique in recursive mode.
// Unreadable entries are logged and counted, never fatal; only a missing or
// unreadable root is an error.
func Discover(root string, opts DiscoverOptions, logger *slog.Logger) ([]entity.Document, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("input dir is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("stat input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("input %s is not a directory", root)
	}

	var docs []entity.Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("skipping unreadable entry", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if path == root {
			return nil
		}
		if opts.SkipHidden && IsHidden(path) {
			stats.Hidden++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		stats.Scanned++
		if !Matches(path, opts.Pattern) {
			return nil
		}

		doc, err := NewDocument(root, path)
		if err != nil {
			logger.Warn("skipping unreadable file", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		stats.Matched++
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	logger.Info("input discovered",
		"root", root, "pattern", opts.Pattern, "recursive", opts.Recursive,
		"scanned", stats.Scanned, "matched", stats.Matched,
		"hidden", stats.Hidden, "failed", stats.Failed)
	return docs, stats, nil
}

// NewDocument describes the file at path, named relative to root.
func NewDocument(root, path string) (entity.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return entity.Document{}, err
	}
	if info.IsDir() {
		return entity.Document{}, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		name = filepath.ToSlash(rel)
	}
	return entity.Document{
		Path:    path,
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}, nil
}
