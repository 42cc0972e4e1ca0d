package collection

import (
	"context"
	"testing"
)

type fakeUnit struct {
	item     Item
	controls Controls
}

func (u *fakeUnit) SetSelectable(bool) {}
func (u *fakeUnit) SetSelected(bool)   {}

type fakeContainer struct {
	cleared int
	empty   string
	units   []*fakeUnit
}

func (c *fakeContainer) Clear() {
	c.cleared++
	c.empty = ""
	c.units = nil
}

func (c *fakeContainer) ShowEmpty(message string) { c.empty = message }

func (c *fakeContainer) Append(item Item, controls Controls) Unit {
	unit := &fakeUnit{item: item, controls: controls}
	c.units = append(c.units, unit)
	return unit
}

func TestRenderer_Render(t *testing.T) {
	t.Run("empty collection shows message", func(t *testing.T) {
		container := &fakeContainer{}
		r := NewRenderer(container)

		if n := r.Render(nil, "nothing here", Actions{}); n != 0 {
			t.Fatalf("expected zero units, got %d", n)
		}
		if container.empty != "nothing here" || len(container.units) != 0 {
			t.Fatalf("unexpected container state: %#v", container)
		}
	})

	t.Run("renders one unit per distinct id", func(t *testing.T) {
		container := &fakeContainer{}
		r := NewRenderer(container)
		items := []Item{{ID: "a"}, {ID: "b"}, {ID: "a"}, {ID: "c"}}

		if n := r.Render(items, "empty", Actions{}); n != 3 {
			t.Fatalf("expected 3 units, got %d", n)
		}
		if got := r.IDs(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
			t.Fatalf("unexpected ids %v", got)
		}
		if container.empty != "" {
			t.Fatalf("empty message must not be shown for a non-empty collection")
		}
	})

	t.Run("render replaces previous content", func(t *testing.T) {
		container := &fakeContainer{}
		r := NewRenderer(container)
		r.Render([]Item{{ID: "a"}, {ID: "b"}}, "empty", Actions{})
		r.Render([]Item{{ID: "z"}}, "empty", Actions{})

		if container.cleared != 2 || len(container.units) != 1 || r.Len() != 1 {
			t.Fatalf("expected a full replacement, got %d units", len(container.units))
		}
		if _, ok := r.Unit("a"); ok {
			t.Fatalf("stale unit must be forgotten")
		}
	})
}

func TestRenderer_Actions(t *testing.T) {
	container := &fakeContainer{}
	r := NewRenderer(container)

	var primary, secondary []string
	r.Render([]Item{{ID: "a"}, {ID: "b"}}, "", Actions{
		Primary:        func(_ context.Context, id string) { primary = append(primary, id) },
		Secondary:      func(_ context.Context, id string) { secondary = append(secondary, id) },
		SecondaryLabel: "Share",
	})

	ctx := context.Background()
	container.units[1].controls.OnPrimary(ctx)
	container.units[0].controls.OnSecondary(ctx)

	if len(primary) != 1 || primary[0] != "b" {
		t.Fatalf("unexpected primary activations %v", primary)
	}
	if len(secondary) != 1 || secondary[0] != "a" {
		t.Fatalf("secondary control must not trigger primary: %v", secondary)
	}
	if container.units[0].controls.SecondaryLabel != "Share" {
		t.Fatalf("expected secondary label")
	}

	r.Render([]Item{{ID: "c"}}, "", Actions{Primary: func(context.Context, string) {}})
	if container.units[0].controls.OnSecondary != nil {
		t.Fatalf("expected no secondary control without a Secondary action")
	}
}
