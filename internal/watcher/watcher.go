// Package watcher feeds documents dropped into a folder to a chat session.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/BerylCAtieno/document-chat/internal/models"
	"github.com/BerylCAtieno/document-chat/internal/services"
	"github.com/BerylCAtieno/document-chat/internal/utils"
)

// DefaultExtensions are the file types the extractors understand.
var DefaultExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// DefaultSettle is how long a path must stay quiet before it is emitted.
const DefaultSettle = 500 * time.Millisecond

type Operation string

const (
	FileCreated  Operation = "created"
	FileModified Operation = "modified"
)

type Event struct {
	Path      string
	Operation Operation
}

// Uploader is the part of a chat session the watcher drives.
type Uploader interface {
	Upload(ctx context.Context, files []models.FileHandle) ([]models.Notification, error)
}

type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
	settle     time.Duration
	logger     *utils.Logger
}

func New(extensions []string, settle time.Duration, logger *utils.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	return &Watcher{
		watcher:    w,
		extensions: exts,
		settle:     settle,
		logger:     logger,
	}, nil
}

// Watch monitors dir and emits one event per file once writes to it have
// stopped for the settle period. The channel closes when ctx is done or the
// watcher is stopped.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)

		pending := make(map[string]Event)
		deadlines := make(map[string]time.Time)
		ticker := time.NewTicker(w.settle / 2)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(event.Name) {
					continue
				}

				var op Operation
				switch {
				case event.Op&fsnotify.Create == fsnotify.Create:
					op = FileCreated
				case event.Op&fsnotify.Write == fsnotify.Write:
					op = FileModified
				default:
					continue
				}

				// A create followed by writes is still a create.
				if prev, seen := pending[event.Name]; !seen || prev.Operation != FileCreated {
					pending[event.Name] = Event{Path: event.Name, Operation: op}
				}
				deadlines[event.Name] = time.Now().Add(w.settle)
			case now := <-ticker.C:
				for path, deadline := range deadlines {
					if now.Before(deadline) {
						continue
					}
					ev := pending[path]
					delete(pending, path)
					delete(deadlines, path)

					select {
					case events <- ev:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("File watcher error", "error", err)
			}
		}
	}()

	return events, nil
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) isWatchedExtension(path string) bool {
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Feed uploads each event's file through up, one at a time, until events
// closes or ctx is done. Per-file results reach subscribers of the session's
// notifications; only failures to hand a file over are logged here.
func Feed(ctx context.Context, events <-chan Event, up Uploader, busyRetry time.Duration, logger *utils.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := feedOne(ctx, ev, up, busyRetry, logger); err != nil {
				logger.Warn("Failed to ingest watched file", "path", ev.Path, "error", err)
			}
		}
	}
}

func feedOne(ctx context.Context, ev Event, up Uploader, busyRetry time.Duration, logger *utils.Logger) error {
	data, err := os.ReadFile(ev.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	file := models.FileHandle{Name: filepath.Base(ev.Path), Data: data}

	for attempt := 0; attempt < 3; attempt++ {
		_, err := up.Upload(ctx, []models.FileHandle{file})
		if err == nil {
			logger.Debug("Watched file handed to session", "path", ev.Path, "operation", string(ev.Operation))
			return nil
		}
		if !errors.Is(err, services.ErrBusy) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(busyRetry):
		}
	}

	return fmt.Errorf("session stayed busy for %s", ev.Path)
}
