package wm

import (
	"math"
	"testing"

	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/google/go-cmp/cmp"
)

func TestToggleTag_TwiceRestoresMask(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	id := fx.add(1, "a")

	fx.m.ToggleTag(1 << 4)
	if got := fx.client(id).Tags; got != 1|1<<4 {
		t.Fatalf("tags = %#x", got)
	}
	fx.m.ToggleTag(1 << 4)
	if got := fx.client(id).Tags; got != 1 {
		t.Fatalf("tags after second toggle = %#x, want 0x1", got)
	}

	fx.m.ToggleTag(1)
	if got := fx.client(id).Tags; got != 1 {
		t.Fatalf("removing the last tag must be refused, got %#x", got)
	}
}

func TestTag_MovesClientOutOfView(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")

	fx.m.Tag(1 << 1)
	if got := fx.client(b).Tags; got != 1<<1 {
		t.Fatalf("tags = %#x", got)
	}
	if diff := cmp.Diff([]ClientID{a}, fx.visibleIDs(0)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	if fx.m.Selected() != a {
		t.Fatalf("selection should fall back to %d", a)
	}
	if fx.b.configured[2].X >= 0 {
		t.Fatalf("hidden window should be moved off screen, got %+v", fx.b.configured[2])
	}

	fx.m.Tag(0)
	if got := fx.client(a).Tags; got != 1 {
		t.Fatalf("empty mask must be ignored, tags = %#x", got)
	}
}

func TestView_AllThenBack(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	fx.m.SetTags(b, 1<<1)

	before := fx.visibleIDs(0)
	if diff := cmp.Diff([]ClientID{a}, before); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	fx.m.View(fx.m.Settings().TagMask())
	if diff := cmp.Diff([]ClientID{b, a}, fx.visibleIDs(0)); diff != "" {
		t.Fatalf("view all mismatch (-want +got):\n%s", diff)
	}

	fx.m.View(1)
	if diff := cmp.Diff(before, fx.visibleIDs(0)); diff != "" {
		t.Fatalf("visible set not restored (-want +got):\n%s", diff)
	}
}

func TestView_ZeroReturnsToPrevious(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.View(1 << 3)
	fx.m.View(0)
	if got := fx.m.Snapshot().Monitors[0].SelectedTags; got != 1 {
		t.Fatalf("view = %#x, want 0x1", got)
	}
	fx.m.View(0)
	if got := fx.m.Snapshot().Monitors[0].SelectedTags; got != 1<<3 {
		t.Fatalf("view = %#x, want %#x", got, 1<<3)
	}
}

func TestToggleView(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	fx.m.SetTags(b, 1<<1)

	fx.m.ToggleView(1 << 1)
	if diff := cmp.Diff([]ClientID{b, a}, fx.visibleIDs(0)); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}

	fx.m.ToggleView(1)
	fx.m.ToggleView(1 << 1)
	if got := fx.m.Snapshot().Monitors[0].SelectedTags; got != 1<<1 {
		t.Fatalf("empty view must be refused, view = %#x", got)
	}
}

func TestPertag_LayoutAndMasterCount(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.SetLayout(2)
	fx.m.IncNMaster(1)
	fx.m.SetMFact(0.7, false)

	fx.m.View(1 << 1)
	ms := fx.m.Snapshot().Monitors[0]
	if ms.LayoutIndex != 0 || ms.NMaster != 1 || ms.MFact != 0.55 {
		t.Fatalf("tag 2 state = layout %d nmaster %d mfact %v", ms.LayoutIndex, ms.NMaster, ms.MFact)
	}

	fx.m.View(1)
	ms = fx.m.Snapshot().Monitors[0]
	if ms.LayoutIndex != 2 || ms.NMaster != 2 || ms.MFact != 0.7 {
		t.Fatalf("tag 1 state = layout %d nmaster %d mfact %v", ms.LayoutIndex, ms.NMaster, ms.MFact)
	}

	fx.m.View(fx.m.Settings().TagMask())
	if got := fx.m.Snapshot().Monitors[0].LayoutIndex; got != 0 {
		t.Fatalf("all-tags view has its own layout, got %d", got)
	}
}

func TestPertag_BarVisibility(t *testing.T) {
	s := testSettings()
	s.BarHeight = 20
	fx := newFixture(t, s, nil)
	id := fx.add(1, "a")

	if got := fx.client(id).Geom; got != (tiling.Rect{Y: 20, Width: 1918, Height: 1058}) {
		t.Fatalf("geometry with bar = %+v", got)
	}
	fx.m.ToggleBar()
	if got := fx.client(id).Geom; got != (tiling.Rect{Width: 1918, Height: 1078}) {
		t.Fatalf("geometry without bar = %+v", got)
	}

	fx.m.View(1 << 1)
	if !fx.m.Snapshot().Monitors[0].ShowBar {
		t.Fatalf("bar state should be per tag")
	}
	fx.m.View(1)
	if fx.m.Snapshot().Monitors[0].ShowBar {
		t.Fatalf("tag 1 bar should stay hidden")
	}
}

func TestSetMFact(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.add(1, "a")
	fx.add(2, "b")

	fx.m.SetMFact(0.05, true)
	if got := fx.m.Snapshot().Monitors[0].MFact; math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("mfact = %v, want 0.6", got)
	}
	fx.m.SetMFact(0.9, true)
	if got := fx.m.Snapshot().Monitors[0].MFact; got != tiling.MaxMFact {
		t.Fatalf("mfact = %v, want clamped %v", got, tiling.MaxMFact)
	}
	fx.m.SetMFact(0.01, false)
	if got := fx.m.Snapshot().Monitors[0].MFact; got != tiling.MinMFact {
		t.Fatalf("mfact = %v, want clamped %v", got, tiling.MinMFact)
	}

	fx.m.SetLayout(1)
	fx.m.SetMFact(0.5, false)
	if got := fx.m.Snapshot().Monitors[0].MFact; got != tiling.MinMFact {
		t.Fatalf("floating layout must ignore setmfact, got %v", got)
	}
}

func TestIncNMaster_FloorsAtZero(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	a := fx.add(1, "a")
	fx.m.IncNMaster(-5)
	if got := fx.m.Snapshot().Monitors[0].NMaster; got != 0 {
		t.Fatalf("nmaster = %d, want 0", got)
	}
	// With no master area the single client fills the stack column.
	if got := fx.client(a).Geom; got != (tiling.Rect{Width: 1918, Height: 1078}) {
		t.Fatalf("geometry = %+v", got)
	}
}

func TestSetLayout_Toggle(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	idx := func() int { return fx.m.Snapshot().Monitors[0].LayoutIndex }

	fx.m.SetLayout(2)
	if idx() != 2 {
		t.Fatalf("layout = %d, want 2", idx())
	}
	fx.m.SetLayout(-1)
	if idx() != 0 {
		t.Fatalf("toggle back = %d, want 0", idx())
	}
	fx.m.SetLayout(-1)
	if idx() != 2 {
		t.Fatalf("toggle again = %d, want 2", idx())
	}
	fx.m.SetLayout(2)
	if idx() != 2 {
		t.Fatalf("selecting the current layout must keep it, got %d", idx())
	}
	fx.m.SetLayout(99)
	if idx() != 2 {
		t.Fatalf("out of range index must be ignored, got %d", idx())
	}
}

func TestLayoutSymbol_MonocleCount(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.SetLayout(2)
	if got := fx.m.Snapshot().Monitors[0].LayoutSymbol; got != "[M]" {
		t.Fatalf("symbol = %q", got)
	}
	a := fx.add(1, "a")
	b := fx.add(2, "b")
	if got := fx.m.Snapshot().Monitors[0].LayoutSymbol; got != "[2]" {
		t.Fatalf("symbol = %q, want [2]", got)
	}
	for _, id := range []ClientID{a, b} {
		if got := fx.client(id).Geom; got != (tiling.Rect{Width: 1918, Height: 1078}) {
			t.Fatalf("monocle geometry of %d = %+v", id, got)
		}
	}
}

func TestFloatingLayout_LeavesGeometry(t *testing.T) {
	fx := newFixture(t, testSettings(), nil)
	fx.m.SetLayout(1)
	a := fx.add(1, "a")
	if got := fx.client(a).Geom; got != (tiling.Rect{X: 10, Y: 10, Width: 400, Height: 300}) {
		t.Fatalf("geometry = %+v", got)
	}
}
