// Package terminal presents the page controllers on a line oriented terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/lightbox"
	"github.com/example/eventshare/internal/selection"
	"github.com/example/eventshare/internal/ui"
	"github.com/example/eventshare/internal/view"
)

// Options configure a Terminal.
type Options struct {
	// DownloadDir receives saved downloads. Empty means the working directory.
	DownloadDir string
	// AssumeYes answers every confirmation with yes without reading input.
	AssumeYes bool
}

// Terminal writes to out and reads answers from in. It implements every
// surface contract of the ui, view, collection, selection and lightbox
// packages.
type Terminal struct {
	out         io.Writer
	in          *bufio.Reader
	downloadDir string
	assumeYes   bool

	mu      sync.Mutex
	current string
	targets []string
}

// New constructs a Terminal.
func New(out io.Writer, in io.Reader, opts Options) *Terminal {
	if in == nil {
		in = strings.NewReader("")
	}
	dir := opts.DownloadDir
	if dir == "" {
		dir = "."
	}
	return &Terminal{
		out:         out,
		in:          bufio.NewReader(in),
		downloadDir: dir,
		assumeYes:   opts.AssumeYes,
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

// ReadLine reads one trimmed line. It returns io.EOF once input is exhausted.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Notify implements ui.Notifier.
func (t *Terminal) Notify(notice ui.Notice) {
	t.printf("[%s] %s\n", notice.Kind, notice.Message)
}

// Confirm implements ui.Confirmer. End of input counts as no.
func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if t.assumeYes {
		t.printf("%s [y/N]: y\n", prompt)
		return true, nil
	}
	t.printf("%s [y/N]: ", prompt)
	answer, err := t.ReadLine()
	if errors.Is(err, io.EOF) {
		t.printf("\n")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Navigate implements ui.Navigator by printing the target.
func (t *Terminal) Navigate(_ context.Context, target string) error {
	t.mu.Lock()
	t.targets = append(t.targets, target)
	t.mu.Unlock()
	t.printf("open %s\n", target)
	return nil
}

// Targets returns every navigation target so far.
func (t *Terminal) Targets() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.targets...)
}

// Progress implements ui.ProgressReporter.
func (t *Terminal) Progress(completed, total int) {
	t.printf("uploaded %d/%d\n", completed, total)
}

// Done implements ui.ProgressReporter.
func (t *Terminal) Done() {}

// ShowShareLinks implements ui.ShareDialog.
func (t *Terminal) ShowShareLinks(album api.Album, links api.ShareLinks) {
	t.printf("Share %q\n  VIP link:         %s\n  Full access link: %s\n", album.Name, links.VIP, links.Full)
}

// ApplyRole implements ui.RoleChrome.
func (t *Terminal) ApplyRole(v ui.RoleView) {
	t.printf("== %s ==\n", v.Title)
}

// ShowLoading implements ui.LoadingView.
func (t *Terminal) ShowLoading(message string) {
	t.printf("... %s\n", message)
}

// ShowError implements ui.LoadingView and ui.GalleryView.
func (t *Terminal) ShowError(message string) {
	t.printf("error: %s\n", message)
}

// SetTitle implements ui.GalleryView.
func (t *Terminal) SetTitle(title string) {
	t.printf("== %s ==\n", title)
}

// SetAlbum implements ui.AlbumHeader.
func (t *Terminal) SetAlbum(album api.Album) {
	t.printf("== %s ==\n", album.Name)
}

// SetMode implements selection.Toolbar.
func (t *Terminal) SetMode(selection.Mode) {}

// SetCount implements selection.Toolbar.
func (t *Terminal) SetCount(int) {}

// SetDeleteEnabled implements selection.Toolbar.
func (t *Terminal) SetDeleteEnabled(bool) {}

// Show implements lightbox.Display.
func (t *Terminal) Show(v lightbox.View) {
	t.printf("[%s] %s %s\n", v.Counter(), v.Photo.Name, v.Photo.URL)
}

// Hide implements lightbox.Display.
func (t *Terminal) Hide() {
	t.printf("lightbox closed\n")
}

// SuspendScroll implements lightbox.Scroller.
func (t *Terminal) SuspendScroll() {}

// RestoreScroll implements lightbox.Scroller.
func (t *Terminal) RestoreScroll() {}

// Panes returns a registry for view.NewSwitcher that tracks the visible pane.
func (t *Terminal) Panes(names ...string) map[string]view.Pane {
	panes := make(map[string]view.Pane, len(names))
	for _, name := range names {
		panes[name] = view.PaneFunc(func(visible bool) {
			if !visible {
				return
			}
			t.mu.Lock()
			t.current = name
			t.mu.Unlock()
		})
	}
	return panes
}

// CurrentPane returns the last pane made visible.
func (t *Terminal) CurrentPane() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Save implements ui.Saver by writing into the download directory. Only the
// base name of filename is used.
func (t *Terminal) Save(ctx context.Context, filename string, body io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("terminal: invalid filename %q", filename)
	}
	if err := os.MkdirAll(t.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("terminal: create download dir: %w", err)
	}

	target := filepath.Join(t.downloadDir, name)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("terminal: create %s: %w", target, err)
	}
	written, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("terminal: write %s: %w", target, err)
	}
	if size >= 0 && written != size {
		t.printf("warning: expected %s, wrote %s\n", humanize.Bytes(uint64(size)), humanize.Bytes(uint64(written)))
	}
	t.printf("saved %s (%s)\n", target, humanize.Bytes(uint64(written)))
	return target, nil
}
