// Package upload turns local image files into upload batches, either from a
// list of paths or by watching a drop folder.
package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"

	"github.com/example/eventshare/internal/application"
	"github.com/example/eventshare/internal/logging"
)

// DefaultSettle is how long a watched folder must stay quiet before the
// files dropped into it are uploaded.
const DefaultSettle = 750 * time.Millisecond

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// IsImage reports whether path has an image extension the backend accepts.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// File returns an UploadFile that opens path when its turn comes.
func File(path string) application.UploadFile {
	return application.UploadFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Files expands paths into upload files. Directories are walked recursively
// and contribute their images in path order, skipping hidden entries;
// non-image files given explicitly are kept so the backend can reject them.
func Files(paths []string) ([]application.UploadFile, error) {
	var files []application.UploadFile
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
		if !info.IsDir() {
			files = append(files, File(p))
			continue
		}
		found, err := images(p)
		if err != nil {
			return nil, fmt.Errorf("upload: walk %s: %w", p, err)
		}
		for _, f := range found {
			files = append(files, File(f))
		}
	}
	return files, nil
}

func images(root string) ([]string, error) {
	var found []string
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if path != root && strings.HasPrefix(filepath.Base(path), ".") {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}
			if !de.IsDir() && IsImage(path) {
				found = append(found, path)
			}
			return nil
		},
	})
	sort.Strings(found)
	return found, err
}

// Batch receives the files that settled in a watched folder.
type Batch func(ctx context.Context, files []application.UploadFile) error

// WatchOptions configure Watch.
type WatchOptions struct {
	Settle time.Duration
	Logger *slog.Logger
	// Ready, when set, is closed once the folder is being watched.
	Ready chan<- struct{}
}

// Watch uploads images created in dir until ctx is cancelled. Files are
// collected until the folder has been quiet for the settle interval and then
// handed to batch in name order. Batches run one at a time; a failing batch is
// logged and the watch continues.
func Watch(ctx context.Context, dir string, batch Batch, opts WatchOptions) error {
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	logger := logging.Component(ctx, opts.Logger, "UploadWatcher", "Watch", "dir", dir)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("upload: new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("upload: watch %s: %w", dir, err)
	}
	if opts.Ready != nil {
		close(opts.Ready)
	}
	logger.InfoContext(ctx, "watching for photos")

	pending := make(map[string]bool)
	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImage(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "watch error", "error", err)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]bool)

			sort.Strings(paths)
			files := make([]application.UploadFile, 0, len(paths))
			for _, p := range paths {
				if info, err := os.Stat(p); err == nil && !info.IsDir() {
					files = append(files, File(p))
				}
			}
			if len(files) == 0 {
				continue
			}
			if err := batch(ctx, files); err != nil {
				logger.WarnContext(ctx, "batch upload failed", "error", err, "file_count", len(files))
				continue
			}
			logger.InfoContext(ctx, "batch uploaded", "file_count", len(files))
		}
	}
}
