// Package collection renders albums and photos into interactive units.
package collection

import (
	"context"
	"sync"
)

// Item is the presentation of one album or photo.
type Item struct {
	ID       string
	Title    string
	Subtitle string
	Byline   string
	ImageURL string
}

// Controls are the callbacks a Container wires into a rendered unit.
// OnSecondary is nil when the unit has no secondary control.
type Controls struct {
	OnPrimary      func(ctx context.Context)
	OnSecondary    func(ctx context.Context)
	SecondaryLabel string
}

// Unit is a rendered card or tile.
type Unit interface {
	SetSelectable(selectable bool)
	SetSelected(selected bool)
}

// Container is the surface units are rendered into.
type Container interface {
	Clear()
	ShowEmpty(message string)
	Append(item Item, controls Controls) Unit
}

// Actions decide what activating a unit does. The decision is made at
// activation time, so a page that enters selection mode after rendering does
// not need to render again.
type Actions struct {
	Primary        func(ctx context.Context, id string)
	Secondary      func(ctx context.Context, id string)
	SecondaryLabel string
}

// Renderer replaces the content of a Container with a collection.
type Renderer struct {
	container Container

	mu    sync.Mutex
	order []string
	units map[string]Unit
}

// NewRenderer renders into container.
func NewRenderer(container Container) *Renderer {
	return &Renderer{container: container, units: make(map[string]Unit)}
}

// Render fully replaces the container content with items and returns the
// number of units rendered. An empty collection shows emptyMessage instead.
// Items repeating an earlier ID are skipped.
func (r *Renderer) Render(items []Item, emptyMessage string, actions Actions) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.container.Clear()
	r.order = r.order[:0]
	r.units = make(map[string]Unit, len(items))

	if len(items) == 0 {
		r.container.ShowEmpty(emptyMessage)
		return 0
	}

	for _, item := range items {
		if _, seen := r.units[item.ID]; seen {
			continue
		}
		id := item.ID
		controls := Controls{}
		if actions.Primary != nil {
			controls.OnPrimary = func(ctx context.Context) { actions.Primary(ctx, id) }
		}
		if actions.Secondary != nil {
			controls.OnSecondary = func(ctx context.Context) { actions.Secondary(ctx, id) }
			controls.SecondaryLabel = actions.SecondaryLabel
		}
		r.units[id] = r.container.Append(item, controls)
		r.order = append(r.order, id)
	}
	return len(r.order)
}

// IDs returns the rendered IDs in render order.
func (r *Renderer) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Unit returns the rendered unit for id.
func (r *Renderer) Unit(id string) (Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	unit, ok := r.units[id]
	return unit, ok && unit != nil
}

// Len returns the number of rendered units.
func (r *Renderer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
