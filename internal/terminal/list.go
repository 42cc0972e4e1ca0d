package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/example/eventshare/internal/collection"
)

// List is a numbered collection.Container. Entries can be activated by their
// 1-based position, which is how the CLI stands in for clicks.
type List struct {
	term *Terminal

	mu      sync.Mutex
	entries []*entry
}

type entry struct {
	item     collection.Item
	controls collection.Controls

	mu         sync.Mutex
	selectable bool
	selected   bool
}

func (e *entry) SetSelectable(selectable bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectable = selectable
}

func (e *entry) SetSelected(selected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = selected
}

// NewList returns a List printing to t.
func (t *Terminal) NewList() *List {
	return &List{term: t}
}

// Clear implements collection.Container.
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// ShowEmpty implements collection.Container.
func (l *List) ShowEmpty(message string) {
	l.term.printf("%s\n", message)
}

// Append implements collection.Container. The entry is printed right away.
func (l *List) Append(item collection.Item, controls collection.Controls) collection.Unit {
	e := &entry{item: item, controls: controls}
	l.mu.Lock()
	l.entries = append(l.entries, e)
	n := len(l.entries)
	l.mu.Unlock()

	l.term.printf("%3d. %s\n", n, describe(item))
	return e
}

func describe(item collection.Item) string {
	parts := []string{item.Title}
	if item.Subtitle != "" {
		parts = append(parts, item.Subtitle)
	}
	if item.Byline != "" {
		parts = append(parts, item.Byline)
	}
	if item.ID != item.Title {
		parts = append(parts, "id="+item.ID)
	}
	return strings.Join(parts, " | ")
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// ID returns the identifier of the entry at 1-based position n.
func (l *List) ID(n int) (string, error) {
	e, err := l.at(n)
	if err != nil {
		return "", err
	}
	return e.item.ID, nil
}

// Activate triggers the primary control of the entry at position n.
func (l *List) Activate(ctx context.Context, n int) error {
	e, err := l.at(n)
	if err != nil {
		return err
	}
	if e.controls.OnPrimary == nil {
		return fmt.Errorf("terminal: entry %d is not clickable", n)
	}
	e.controls.OnPrimary(ctx)
	return nil
}

// ActivateSecondary triggers the secondary control of the entry at position n.
func (l *List) ActivateSecondary(ctx context.Context, n int) error {
	e, err := l.at(n)
	if err != nil {
		return err
	}
	if e.controls.OnSecondary == nil {
		return fmt.Errorf("terminal: entry %d has no secondary control", n)
	}
	e.controls.OnSecondary(ctx)
	return nil
}

func (l *List) at(n int) (*entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 1 || n > len(l.entries) {
		return nil, fmt.Errorf("terminal: no entry %d (have %d)", n, len(l.entries))
	}
	return l.entries[n-1], nil
}
