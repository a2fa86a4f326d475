// Package importer watches a drop-box directory for Markdown files and turns
// them into local drafts. A file dropped into the box becomes a draft keyed
// by its file name; the file is removed once the draft is saved.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/halvard/skald/internal/models"
	"github.com/halvard/skald/internal/pageservice"
	"github.com/halvard/skald/internal/parser"
	"github.com/halvard/skald/internal/storage"
)

// idPrefix marks imported pages as local until their first publish.
const idPrefix = "local-import-"

// PageID derives the deterministic local page id for a drop-box file, so
// re-dropping the same file updates the same draft instead of forking a
// new page.
func PageID(relPath string) string {
	stem := strings.TrimSuffix(filepath.Base(relPath), ".md")
	return idPrefix + models.SanitizeSlug(stem)
}

// Watch starts an fsnotify watcher on the drop-box root and imports Markdown
// files until ctx is cancelled. Events are debounced into a full rescan so a
// burst of drops (or a slow copy firing multiple writes) imports once.
func Watch(ctx context.Context, svc *pageservice.Service, store storage.Provider, root string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("importer: watch %s: %w", root, err)
	}

	logger.Info("importer: started", slog.String("root", root))

	// Import anything already sitting in the box before watching.
	Scan(ctx, svc, store, logger)

	var scanTimer *time.Timer
	var scanCh <-chan time.Time

	scheduleScan := func() {
		if scanTimer == nil {
			scanTimer = time.NewTimer(200 * time.Millisecond)
			scanCh = scanTimer.C
		} else {
			scanTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if scanTimer != nil {
				scanTimer.Stop()
			}
			logger.Info("importer: stopped")
			return nil

		case <-scanCh:
			Scan(ctx, svc, store, logger)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New subdirectories get watched too; their contents surface
			// through the rescan.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := w.Add(ev.Name); addErr != nil {
						logger.Warn("importer: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleScan()
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleScan()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("importer: error", slog.String("error", watchErr.Error()))
		}
	}
}

// Scan imports every Markdown file currently in the drop-box. Files that
// import cleanly are deleted; files that fail stay put for the next pass.
func Scan(ctx context.Context, svc *pageservice.Service, store storage.Provider, logger *slog.Logger) {
	files, err := store.List("")
	if err != nil {
		logger.Warn("importer: list failed", slog.String("error", err.Error()))
		return
	}

	for _, f := range files {
		if err := importFile(ctx, svc, store, f.Path); err != nil {
			logger.Warn("importer: import failed",
				slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Info("importer: imported", slog.String("path", f.Path))
	}
}

func importFile(ctx context.Context, svc *pageservice.Service, store storage.Provider, relPath string) error {
	data, err := store.Read(relPath)
	if err != nil {
		return err
	}

	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	fields := res.Fields
	if fields.Title == "" {
		fields.Title = strings.TrimSuffix(filepath.Base(relPath), ".md")
	}
	if fields.Slug == "" {
		fields.Slug = models.SanitizeSlug(fields.Title)
	}

	if _, err := svc.SaveDraft(ctx, PageID(relPath), models.KindPost, fields, ""); err != nil {
		return err
	}
	return store.Delete(relPath)
}
