package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/example/eventshare/internal/collection"
)

type fakeUnit struct {
	selectable bool
	selected   bool
}

func (u *fakeUnit) SetSelectable(v bool) { u.selectable = v }
func (u *fakeUnit) SetSelected(v bool)   { u.selected = v }

type fakeUnits struct {
	ids   []string
	units map[string]*fakeUnit
}

func newUnits(ids ...string) *fakeUnits {
	u := &fakeUnits{ids: ids, units: make(map[string]*fakeUnit)}
	for _, id := range ids {
		u.units[id] = &fakeUnit{}
	}
	return u
}

func (u *fakeUnits) IDs() []string { return u.ids }

func (u *fakeUnits) Unit(id string) (collection.Unit, bool) {
	unit, ok := u.units[id]
	return unit, ok
}

type fakeToolbar struct {
	mode    Mode
	count   int
	enabled bool
}

func (t *fakeToolbar) SetMode(m Mode)          { t.mode = m }
func (t *fakeToolbar) SetCount(n int)          { t.count = n }
func (t *fakeToolbar) SetDeleteEnabled(v bool) { t.enabled = v }

type answer struct {
	ok      bool
	err     error
	prompts []string
}

func (a *answer) Confirm(_ context.Context, prompt string) (bool, error) {
	a.prompts = append(a.prompts, prompt)
	return a.ok, a.err
}

func prompt(n int) string { return "delete?" }

func TestController_Toggle(t *testing.T) {
	toolbar := &fakeToolbar{}
	units := newUnits("a", "b")
	c := NewController(toolbar, units)

	if c.Toggle("a") || c.Count() != 0 {
		t.Fatalf("toggle must be a no-op in browse mode")
	}

	c.Enter()
	if !units.units["a"].selectable || toolbar.mode != Selecting || toolbar.enabled {
		t.Fatalf("unexpected state after enter: %#v %#v", units.units["a"], toolbar)
	}

	if !c.Toggle("a") || !units.units["a"].selected || toolbar.count != 1 || !toolbar.enabled {
		t.Fatalf("expected a selected")
	}
	if c.Toggle("a") || units.units["a"].selected || c.Count() != 0 {
		t.Fatalf("toggle must be self-inverse")
	}

	c.Toggle("b")
	c.Exit()
	if c.Count() != 0 || toolbar.count != 0 || toolbar.mode != Browse {
		t.Fatalf("exit must clear the selection")
	}
	if units.units["b"].selectable || units.units["b"].selected {
		t.Fatalf("exit must clear unit affordances")
	}
}

func TestController_ToggleModeAndRefresh(t *testing.T) {
	units := newUnits("a", "b", "c")
	c := NewController(nil, units)

	if c.ToggleMode() != Selecting {
		t.Fatalf("expected selecting")
	}
	c.Toggle("a")
	c.Toggle("c")

	units.ids = []string{"c", "d"}
	units.units["d"] = &fakeUnit{}
	c.Refresh()

	if got := c.Selected(); len(got) != 1 || got[0] != "c" {
		t.Fatalf("expected only rendered ids to stay selected, got %v", got)
	}
	if !units.units["d"].selectable || !units.units["c"].selected {
		t.Fatalf("refresh must reapply affordances")
	}
	if c.ToggleMode() != Browse || c.Count() != 0 {
		t.Fatalf("expected browse mode with empty selection")
	}
}

func TestController_BatchDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("empty selection warns", func(t *testing.T) {
		c := NewController(nil, newUnits("a"))
		c.Enter()
		called := false
		_, err := c.BatchDelete(ctx, &answer{ok: true}, prompt, func(context.Context, []string) error {
			called = true
			return nil
		})
		if !errors.Is(err, ErrNothingSelected) || called {
			t.Fatalf("expected ErrNothingSelected without a call, got %v", err)
		}
	})

	t.Run("declined confirmation skips the call", func(t *testing.T) {
		c := NewController(nil, newUnits("a"))
		c.Enter()
		c.Toggle("a")
		called := false
		deleted, err := c.BatchDelete(ctx, &answer{ok: false}, prompt, func(context.Context, []string) error {
			called = true
			return nil
		})
		if deleted || err != nil || called {
			t.Fatalf("expected no deletion, got %v %v %v", deleted, err, called)
		}
		if c.Count() != 1 || !c.Selecting() {
			t.Fatalf("selection must survive a declined confirmation")
		}
	})

	t.Run("success exits selection mode", func(t *testing.T) {
		c := NewController(nil, newUnits("a", "b"))
		c.Enter()
		c.Toggle("b")
		c.Toggle("a")
		confirm := &answer{ok: true}
		var got []string
		deleted, err := c.BatchDelete(ctx, confirm, func(n int) string {
			if n != 2 {
				t.Fatalf("expected count 2 in prompt, got %d", n)
			}
			return "delete 2?"
		}, func(_ context.Context, ids []string) error {
			got = ids
			return nil
		})
		if !deleted || err != nil {
			t.Fatalf("expected deletion, got %v %v", deleted, err)
		}
		if len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Fatalf("unexpected ids %v", got)
		}
		if c.Selecting() || c.Count() != 0 {
			t.Fatalf("expected selection mode exited")
		}
		if len(confirm.prompts) != 1 || confirm.prompts[0] != "delete 2?" {
			t.Fatalf("unexpected prompts %v", confirm.prompts)
		}
	})

	t.Run("failure keeps the selection", func(t *testing.T) {
		c := NewController(nil, newUnits("a"))
		c.Enter()
		c.Toggle("a")
		boom := errors.New("boom")
		deleted, err := c.BatchDelete(ctx, &answer{ok: true}, prompt, func(context.Context, []string) error { return boom })
		if deleted || !errors.Is(err, boom) {
			t.Fatalf("expected failure, got %v %v", deleted, err)
		}
		if !c.Selecting() || c.Count() != 1 {
			t.Fatalf("selection must be untouched after a failure")
		}
	})
}
