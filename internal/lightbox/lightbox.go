// Package lightbox implements the full-screen photo viewer.
package lightbox

import (
	"fmt"
	"math"
	"sync"

	"github.com/example/eventshare/internal/api"
)

// SwipeThreshold is the minimum horizontal travel, in pixels, of a swipe.
const SwipeThreshold = 50

// Keys understood by HandleKey.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// View is what the display shows for the current photo.
type View struct {
	Photo   api.Photo
	Index   int
	Total   int
	HasPrev bool
	HasNext bool
}

// Counter renders the 1-based position, e.g. "3 of 12".
func (v View) Counter() string {
	return fmt.Sprintf("%d of %d", v.Index+1, v.Total)
}

// Display presents the lightbox.
type Display interface {
	Show(view View)
	Hide()
}

// Scroller suspends and restores scrolling of the page behind the lightbox.
type Scroller interface {
	SuspendScroll()
	RestoreScroll()
}

// Navigator steps through a snapshot of photos.
type Navigator struct {
	display  Display
	scroller Scroller

	mu       sync.Mutex
	photos   []api.Photo
	index    int
	open     bool
	touching bool
	startX   float64
	startY   float64
}

// New constructs a Navigator. scroller may be nil.
func New(display Display, scroller Scroller) *Navigator {
	return &Navigator{display: display, scroller: scroller}
}

// Open snapshots photos and shows the one with startID. An unknown startID
// starts at the first photo. Opening an empty collection does nothing.
func (n *Navigator) Open(photos []api.Photo, startID string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(photos) == 0 {
		return false
	}
	n.photos = append([]api.Photo(nil), photos...)
	n.index = 0
	for i, p := range n.photos {
		if p.ID == startID {
			n.index = i
			break
		}
	}
	if !n.open && n.scroller != nil {
		n.scroller.SuspendScroll()
	}
	n.open = true
	n.show()
	return true
}

// Next advances one photo. It does not wrap past the last photo.
func (n *Navigator) Next() bool {
	return n.step(1)
}

// Prev goes back one photo. It does not wrap before the first photo.
func (n *Navigator) Prev() bool {
	return n.step(-1)
}

func (n *Navigator) step(delta int) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	target := n.index + delta
	if !n.open || target < 0 || target >= len(n.photos) {
		return false
	}
	n.index = target
	n.show()
	return true
}

// Close hides the lightbox and restores page scrolling.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.open {
		return
	}
	n.open = false
	n.touching = false
	n.display.Hide()
	if n.scroller != nil {
		n.scroller.RestoreScroll()
	}
}

// IsOpen reports whether the lightbox is shown.
func (n *Navigator) IsOpen() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.open
}

// Current returns the view of the shown photo.
func (n *Navigator) Current() (View, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.open {
		return View{}, false
	}
	return n.view(), true
}

// HandleKey applies a keyboard key and reports whether it was consumed.
// Keys are ignored while the lightbox is closed.
func (n *Navigator) HandleKey(key string) bool {
	if !n.IsOpen() {
		return false
	}
	switch key {
	case KeyEscape:
		n.Close()
		return true
	case KeyArrowLeft:
		n.Prev()
		return true
	case KeyArrowRight:
		n.Next()
		return true
	default:
		return false
	}
}

// TouchStart records where a touch began.
func (n *Navigator) TouchStart(x, y float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.open {
		return
	}
	n.touching = true
	n.startX, n.startY = x, y
}

// TouchEnd finishes a touch. A mostly horizontal travel beyond
// SwipeThreshold navigates: leftwards to the next photo, rightwards to the
// previous one.
func (n *Navigator) TouchEnd(x, y float64) bool {
	n.mu.Lock()
	if !n.open || !n.touching {
		n.mu.Unlock()
		return false
	}
	n.touching = false
	dx, dy := x-n.startX, y-n.startY
	n.mu.Unlock()

	if math.Abs(dx) <= SwipeThreshold || math.Abs(dx) <= math.Abs(dy) {
		return false
	}
	if dx < 0 {
		return n.Next()
	}
	return n.Prev()
}

// show must be called with mu held.
func (n *Navigator) show() {
	n.display.Show(n.view())
}

func (n *Navigator) view() View {
	return View{
		Photo:   n.photos[n.index],
		Index:   n.index,
		Total:   len(n.photos),
		HasPrev: n.index > 0,
		HasNext: n.index < len(n.photos)-1,
	}
}
