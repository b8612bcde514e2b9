package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Root        string
	Options     DiscoverOptions
	InitialScan bool          // if true, emit matching files already present
	Debounce    time.Duration // coalesce rapid create/write bursts per file
	Logger      *slog.Logger
}

// StartWatcher emits the paths of matching PDFs that are created or rewritten under
// cfg.Root until ctx is done. A file written in several chunks is emitted once, after
// Debounce of quiet time.
func StartWatcher(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		logger.Error("watcher start failed: no root provided")
		return nil, nil, errors.New("no root provided")
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	var initial []string
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != cfg.Root && (!cfg.Options.Recursive || (cfg.Options.SkipHidden && IsHidden(path))) {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		if cfg.InitialScan && accept(path, cfg.Options) {
			initial = append(initial, path)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to add root directory", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		for _, p := range initial {
			select {
			case evCh <- p:
			case <-ctx.Done():
				return
			}
		}

		// pending maps a path to the time of its last event
		pending := map[string]time.Time{}
		tick := time.NewTicker(tickInterval(cfg.Debounce))
		defer tick.Stop()

		flush := func(now time.Time) bool {
			for p, last := range pending {
				if now.Sub(last) < cfg.Debounce {
					continue
				}
				delete(pending, p)
				select {
				case evCh <- p:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create && cfg.Options.Recursive {
					// new sub-directories are watched too; adding a file fails and is ignored
					if !(cfg.Options.SkipHidden && IsHidden(e.Name)) {
						_ = w.Add(e.Name)
					}
				}
				if accept(e.Name, cfg.Options) && e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					pending[e.Name] = time.Now()
					if cfg.Debounce <= 0 && !flush(time.Now()) {
						return
					}
				}
			case now := <-tick.C:
				if len(pending) > 0 && !flush(now) {
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func accept(path string, opts DiscoverOptions) bool {
	if opts.SkipHidden && IsHidden(path) {
		return false
	}
	return Matches(path, opts.Pattern)
}

func tickInterval(debounce time.Duration) time.Duration {
	if d := debounce / 4; d > 10*time.Millisecond {
		return d
	}
	return 10 * time.Millisecond
}
