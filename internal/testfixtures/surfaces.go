package testfixtures

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/example/eventshare/internal/api"
	"github.com/example/eventshare/internal/collection"
	"github.com/example/eventshare/internal/lightbox"
	"github.com/example/eventshare/internal/selection"
	"github.com/example/eventshare/internal/ui"
	"github.com/example/eventshare/internal/view"
)

// Notifier records notices.
type Notifier struct {
	mu      sync.Mutex
	notices []ui.Notice
}

// Notify implements ui.Notifier.
func (n *Notifier) Notify(notice ui.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

// Notices returns every recorded notice.
func (n *Notifier) Notices() []ui.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ui.Notice(nil), n.notices...)
}

// Messages returns the messages of the notices of kind.
func (n *Notifier) Messages(kind ui.NoticeKind) []string {
	var out []string
	for _, notice := range n.Notices() {
		if notice.Kind == kind {
			out = append(out, notice.Message)
		}
	}
	return out
}

// Confirmer answers every prompt with Answer, or fails with Err.
type Confirmer struct {
	Answer bool
	Err    error

	mu      sync.Mutex
	prompts []string
}

// Confirm implements ui.Confirmer.
func (c *Confirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.Answer, c.Err
}

// Prompts returns the prompts asked so far.
func (c *Confirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Navigator records navigation targets.
type Navigator struct {
	// Err, when set, fails every navigation without recording it.
	Err error

	mu      sync.Mutex
	targets []string
}

// Navigate implements ui.Navigator.
func (n *Navigator) Navigate(_ context.Context, target string) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
	return nil
}

// Targets returns the recorded targets.
func (n *Navigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// Progress records upload progress as "completed/total" pairs.
type Progress struct {
	mu      sync.Mutex
	updates [][2]int
	done    int
}

// Progress implements ui.ProgressReporter.
func (p *Progress) Progress(completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, [2]int{completed, total})
}

// Done implements ui.ProgressReporter.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
}

// Updates returns the recorded updates.
func (p *Progress) Updates() [][2]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][2]int(nil), p.updates...)
}

// DoneCalls returns how often Done was called.
func (p *Progress) DoneCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// SharedAlbum is one presentation of share links.
type SharedAlbum struct {
	Album api.Album
	Links api.ShareLinks
}

// ShareDialog records shown share links.
type ShareDialog struct {
	mu    sync.Mutex
	shown []SharedAlbum
}

// ShowShareLinks implements ui.ShareDialog.
func (s *ShareDialog) ShowShareLinks(album api.Album, links api.ShareLinks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, SharedAlbum{Album: album, Links: links})
}

// Shown returns the recorded presentations.
func (s *ShareDialog) Shown() []SharedAlbum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SharedAlbum(nil), s.shown...)
}

// Chrome records the applied role chrome.
type Chrome struct {
	mu      sync.Mutex
	applied []ui.RoleView
}

// ApplyRole implements ui.RoleChrome.
func (c *Chrome) ApplyRole(v ui.RoleView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applied = append(c.applied, v)
}

// Last returns the most recently applied chrome.
func (c *Chrome) Last() (ui.RoleView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.applied) == 0 {
		return ui.RoleView{}, false
	}
	return c.applied[len(c.applied)-1], true
}

// Header records the albums shown in the album detail header.
type Header struct {
	mu     sync.Mutex
	albums []api.Album
}

// SetAlbum implements ui.AlbumHeader.
func (h *Header) SetAlbum(album api.Album) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.albums = append(h.albums, album)
}

// Albums returns the recorded albums.
func (h *Header) Albums() []api.Album {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]api.Album(nil), h.albums...)
}

// Loading records the loading view. It is written from the loading
// animation goroutine.
type Loading struct {
	mu       sync.Mutex
	messages []string
	errors   []string
}

// ShowLoading implements ui.LoadingView.
func (l *Loading) ShowLoading(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, message)
}

// ShowError implements ui.LoadingView.
func (l *Loading) ShowError(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}

// Messages returns the loading messages shown so far.
func (l *Loading) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// Errors returns the errors shown so far.
func (l *Loading) Errors() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.errors...)
}

// Gallery records the event gallery header.
type Gallery struct {
	mu     sync.Mutex
	titles []string
	errors []string
}

// SetTitle implements ui.GalleryView.
func (g *Gallery) SetTitle(title string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.titles = append(g.titles, title)
}

// ShowError implements ui.GalleryView.
func (g *Gallery) ShowError(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors = append(g.errors, message)
}

// Titles returns the titles set so far.
func (g *Gallery) Titles() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.titles...)
}

// Errors returns the errors shown so far.
func (g *Gallery) Errors() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.errors...)
}

// Saver keeps saved downloads in memory.
type Saver struct {
	Err error

	mu    sync.Mutex
	files map[string][]byte
	sizes map[string]int64
}

// Save implements ui.Saver.
func (s *Saver) Save(_ context.Context, filename string, body io.Reader, size int64) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string][]byte)
		s.sizes = make(map[string]int64)
	}
	s.files[filename] = data
	s.sizes[filename] = size
	return "mem://" + filename, nil
}

// File returns the saved content of filename.
func (s *Saver) File(filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[filename]
	return data, ok
}

// Panes records pane visibility for a view.Switcher.
type Panes struct {
	mu      sync.Mutex
	visible map[string]bool
}

// NewPanes returns one pane per name.
func NewPanes() *Panes {
	return &Panes{visible: make(map[string]bool)}
}

// Registry returns Pane implementations for names, ready for view.NewSwitcher.
func (p *Panes) Registry(names ...string) map[string]view.Pane {
	registry := make(map[string]view.Pane, len(names))
	for _, name := range names {
		registry[name] = view.PaneFunc(func(visible bool) {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.visible[name] = visible
		})
	}
	return registry
}

// Visible returns the names of the visible panes in sorted order.
func (p *Panes) Visible() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for name, visible := range p.visible {
		if visible {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Unit is a rendered card or tile.
type Unit struct {
	Item     collection.Item
	Controls collection.Controls

	mu         sync.Mutex
	selectable bool
	selected   bool
}

// SetSelectable implements collection.Unit.
func (u *Unit) SetSelectable(selectable bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.selectable = selectable
}

// SetSelected implements collection.Unit.
func (u *Unit) SetSelected(selected bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.selected = selected
}

// Selectable reports the selection affordance.
func (u *Unit) Selectable() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selectable
}

// Selected reports whether the unit is shown as selected.
func (u *Unit) Selected() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.selected
}

// HasSecondary reports whether the unit carries a secondary control.
func (u *Unit) HasSecondary() bool {
	return u.Controls.OnSecondary != nil
}

// Container records rendered units.
type Container struct {
	mu     sync.Mutex
	units  []*Unit
	empty  string
	clears int
}

// Clear implements collection.Container.
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.units = nil
	c.empty = ""
	c.clears++
}

// ShowEmpty implements collection.Container.
func (c *Container) ShowEmpty(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.empty = message
}

// Append implements collection.Container.
func (c *Container) Append(item collection.Item, controls collection.Controls) collection.Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	unit := &Unit{Item: item, Controls: controls}
	c.units = append(c.units, unit)
	return unit
}

// Units returns the rendered units in order.
func (c *Container) Units() []*Unit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Unit(nil), c.units...)
}

// Empty returns the empty-state message, if shown.
func (c *Container) Empty() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.empty
}

// Renders returns how often the container was cleared.
func (c *Container) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}

// Find returns the unit rendered for id.
func (c *Container) Find(id string) (*Unit, bool) {
	for _, unit := range c.Units() {
		if unit.Item.ID == id {
			return unit, true
		}
	}
	return nil, false
}

// Click activates the primary region of the unit rendered for id.
func (c *Container) Click(ctx context.Context, id string) bool {
	unit, ok := c.Find(id)
	if !ok || unit.Controls.OnPrimary == nil {
		return false
	}
	unit.Controls.OnPrimary(ctx)
	return true
}

// ClickSecondary activates the secondary control of the unit rendered for id.
func (c *Container) ClickSecondary(ctx context.Context, id string) bool {
	unit, ok := c.Find(id)
	if !ok || unit.Controls.OnSecondary == nil {
		return false
	}
	unit.Controls.OnSecondary(ctx)
	return true
}

// Toolbar records the selection toolbar state.
type Toolbar struct {
	mu            sync.Mutex
	mode          selection.Mode
	count         int
	deleteEnabled bool
}

// SetMode implements selection.Toolbar.
func (t *Toolbar) SetMode(mode selection.Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
}

// SetCount implements selection.Toolbar.
func (t *Toolbar) SetCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = count
}

// SetDeleteEnabled implements selection.Toolbar.
func (t *Toolbar) SetDeleteEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deleteEnabled = enabled
}

// State returns mode, count and whether delete is enabled.
func (t *Toolbar) State() (selection.Mode, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode, t.count, t.deleteEnabled
}

// Lightbox records the lightbox display and page scrolling.
type Lightbox struct {
	mu        sync.Mutex
	shown     []lightbox.View
	open      bool
	suspended int
	restored  int
}

// Show implements lightbox.Display.
func (l *Lightbox) Show(v lightbox.View) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shown = append(l.shown, v)
	l.open = true
}

// Hide implements lightbox.Display.
func (l *Lightbox) Hide() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = false
}

// SuspendScroll implements lightbox.Scroller.
func (l *Lightbox) SuspendScroll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suspended++
}

// RestoreScroll implements lightbox.Scroller.
func (l *Lightbox) RestoreScroll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restored++
}

// Last returns the most recently shown view.
func (l *Lightbox) Last() (lightbox.View, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.shown) == 0 {
		return lightbox.View{}, false
	}
	return l.shown[len(l.shown)-1], true
}

// IsOpen reports whether the display is showing.
func (l *Lightbox) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// Scroll returns how often scrolling was suspended and restored.
func (l *Lightbox) Scroll() (suspended, restored int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.suspended, l.restored
}
