// Package selection implements the multi-select mode used for batch delete.
package selection

import (
	"context"
	"errors"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/example/eventshare/internal/collection"
	"github.com/example/eventshare/internal/ui"
)

// ErrNothingSelected is returned by BatchDelete when the selection is empty.
var ErrNothingSelected = errors.New("nothing selected")

// Mode is the selection mode state.
type Mode int

// Modes.
const (
	Browse Mode = iota
	Selecting
)

func (m Mode) String() string {
	if m == Selecting {
		return "selecting"
	}
	return "browse"
}

// Toolbar shows the selection state.
type Toolbar interface {
	SetMode(mode Mode)
	SetCount(count int)
	SetDeleteEnabled(enabled bool)
}

// Units resolves rendered units, usually a *collection.Renderer.
type Units interface {
	IDs() []string
	Unit(id string) (collection.Unit, bool)
}

// Controller tracks the selection of one collection.
type Controller struct {
	toolbar Toolbar
	units   Units

	mu       sync.Mutex
	mode     Mode
	selected mapset.Set[string]
}

// NewController wires a controller to its toolbar and rendered units.
func NewController(toolbar Toolbar, units Units) *Controller {
	c := &Controller{
		toolbar:  toolbar,
		units:    units,
		selected: mapset.NewThreadUnsafeSet[string](),
	}
	c.publish()
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Selecting reports whether selection mode is active.
func (c *Controller) Selecting() bool {
	return c.Mode() == Selecting
}

// Enter switches to selection mode with an empty selection.
func (c *Controller) Enter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Selecting
	c.selected.Clear()
	c.markUnits(true)
	c.publish()
}

// Exit returns to browse mode and clears the selection.
func (c *Controller) Exit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = Browse
	c.selected.Clear()
	c.markUnits(false)
	c.publish()
}

// ToggleMode enters or exits selection mode and returns the new mode.
func (c *Controller) ToggleMode() Mode {
	if c.Selecting() {
		c.Exit()
		return Browse
	}
	c.Enter()
	return Selecting
}

// Toggle flips membership of id and reports whether it is now selected.
// Outside selection mode it does nothing.
func (c *Controller) Toggle(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != Selecting {
		return false
	}

	selected := !c.selected.Contains(id)
	if selected {
		c.selected.Add(id)
	} else {
		c.selected.Remove(id)
	}
	if unit, ok := c.units.Unit(id); ok {
		unit.SetSelected(selected)
	}
	c.publish()
	return selected
}

// Selected returns the selected IDs in sorted order.
func (c *Controller) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.selected.ToSlice()
	sort.Strings(ids)
	return ids
}

// Count returns the number of selected IDs.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected.Cardinality()
}

// Refresh reapplies the selection affordances after the units were rendered
// again. Selected IDs that are no longer rendered are dropped.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rendered := mapset.NewThreadUnsafeSet(c.units.IDs()...)
	c.selected = c.selected.Intersect(rendered)
	c.markUnits(c.mode == Selecting)
	c.publish()
}

// BatchDelete confirms and deletes the selection with fn. A declined
// confirmation returns false without calling fn. On success selection mode is
// exited; on failure the selection is left untouched so the user can retry.
func (c *Controller) BatchDelete(ctx context.Context, confirmer ui.Confirmer, prompt func(count int) string, fn func(ctx context.Context, ids []string) error) (bool, error) {
	ids := c.Selected()
	if len(ids) == 0 {
		return false, ErrNothingSelected
	}

	ok, err := confirmer.Confirm(ctx, prompt(len(ids)))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := fn(ctx, ids); err != nil {
		return false, err
	}
	c.Exit()
	return true, nil
}

// markUnits must be called with mu held.
func (c *Controller) markUnits(selectable bool) {
	for _, id := range c.units.IDs() {
		unit, ok := c.units.Unit(id)
		if !ok {
			continue
		}
		unit.SetSelectable(selectable)
		unit.SetSelected(selectable && c.selected.Contains(id))
	}
}

// publish must be called with mu held.
func (c *Controller) publish() {
	if c.toolbar == nil {
		return
	}
	count := c.selected.Cardinality()
	c.toolbar.SetMode(c.mode)
	c.toolbar.SetCount(count)
	c.toolbar.SetDeleteEnabled(c.mode == Selecting && count > 0)
}
