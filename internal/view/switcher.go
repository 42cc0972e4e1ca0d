// Package view switches between the mutually exclusive panes of a page.
package view

import (
	"sort"
	"sync"
)

// Pane names shared by the pages.
const (
	Loading      = "loading"
	Guest        = "guest"
	Gallery      = "gallery"
	Login        = "login"
	ManageAlbums = "manage-albums"
	AlbumDetail  = "album-detail"
)

// Pane is one region of a page that can be shown or hidden.
type Pane interface {
	SetVisible(visible bool)
}

// PaneFunc adapts a function to Pane.
type PaneFunc func(visible bool)

// SetVisible implements Pane.
func (f PaneFunc) SetVisible(visible bool) { f(visible) }

// Switcher keeps exactly one pane of a fixed registry visible.
type Switcher struct {
	mu      sync.Mutex
	panes   map[string]Pane
	names   []string
	current string
}

// NewSwitcher registers panes. The registry is fixed after construction.
func NewSwitcher(panes map[string]Pane) *Switcher {
	registry := make(map[string]Pane, len(panes))
	names := make([]string, 0, len(panes))
	for name, pane := range panes {
		if pane == nil {
			continue
		}
		registry[name] = pane
		names = append(names, name)
	}
	sort.Strings(names)
	return &Switcher{panes: registry, names: names}
}

// SwitchTo hides every pane and shows name. Unknown names leave every pane
// untouched and report false.
func (s *Switcher) SwitchTo(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.panes[name]
	if !ok {
		return false
	}
	for _, other := range s.names {
		if other != name {
			s.panes[other].SetVisible(false)
		}
	}
	target.SetVisible(true)
	s.current = name
	return true
}

// Current returns the visible pane, or "" before the first switch.
func (s *Switcher) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Names lists the registered panes in sorted order.
func (s *Switcher) Names() []string {
	return append([]string(nil), s.names...)
}
