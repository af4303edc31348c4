package tiling

import (
	"testing"
)

func assertExactCover(t *testing.T, area Rect, rects []Rect) {
	t.Helper()
	total := 0
	for i, r := range rects {
		if r.Intersect(area) != r {
			t.Fatalf("rect %d %+v escapes area %+v", i, r, area)
		}
		total += r.Area()
		for j := i + 1; j < len(rects); j++ {
			if ov := r.Intersect(rects[j]); ov.Area() > 0 {
				t.Fatalf("rects %d %+v and %d %+v overlap by %+v", i, r, j, rects[j], ov)
			}
		}
	}
	if total != area.Area() {
		t.Fatalf("covered area %d, want %d (rects %+v)", total, area.Area(), rects)
	}
}

func TestTile_ExactCoverForAllCounts(t *testing.T) {
	areas := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 24, Width: 1280, Height: 1000},
		{X: 7, Y: 3, Width: 101, Height: 37},
	}
	for _, area := range areas {
		for nmaster := 0; nmaster <= 4; nmaster++ {
			for k := 1; k <= 12; k++ {
				for _, f := range []float64{0.05, 0.33, 0.55, 0.95} {
					rects := Tile(area, k, nmaster, f)
					if len(rects) != k {
						t.Fatalf("Tile(%d) returned %d rects", k, len(rects))
					}
					assertExactCover(t, area, rects)
				}
			}
		}
	}
}

func TestTile_SingleClientTakesFullArea(t *testing.T) {
	area := Rect{X: 10, Y: 20, Width: 800, Height: 600}
	for _, nmaster := range []int{0, 1, 3} {
		rects := Tile(area, 1, nmaster, 0.3)
		if len(rects) != 1 || rects[0] != area {
			t.Fatalf("nmaster=%d: expected full area, got %+v", nmaster, rects)
		}
	}
}

func TestTile_MasterColumnWidth(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 900}
	rects := Tile(area, 4, 1, 0.55)

	if rects[0] != (Rect{X: 0, Y: 0, Width: 550, Height: 900}) {
		t.Fatalf("unexpected master rect %+v", rects[0])
	}
	for i, r := range rects[1:] {
		if r.X != 550 || r.Width != 450 {
			t.Fatalf("stack rect %d: expected x=550 w=450, got %+v", i+1, r)
		}
		if r.Height != 300 {
			t.Fatalf("stack rect %d: expected height 300, got %d", i+1, r.Height)
		}
	}
}

func TestTile_NMasterLargerThanCountSplitsFullWidth(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1000, Height: 900}
	rects := Tile(area, 3, 5, 0.55)
	for i, r := range rects {
		if r.X != 0 || r.Width != 1000 {
			t.Fatalf("rect %d: expected full width column, got %+v", i, r)
		}
	}
	assertExactCover(t, area, rects)
}

func TestTile_ClampsOutOfRangeMFact(t *testing.T) {
	area := Rect{Width: 1000, Height: 100}
	lo := Tile(area, 2, 1, -3)
	if lo[0].Width != 50 {
		t.Fatalf("expected clamp to 0.05 (50px), got %d", lo[0].Width)
	}
	hi := Tile(area, 2, 1, 7)
	if hi[0].Width != 950 {
		t.Fatalf("expected clamp to 0.95 (950px), got %d", hi[0].Width)
	}
}

func TestMonocle_EveryClientGetsArea(t *testing.T) {
	area := Rect{X: 5, Y: 5, Width: 640, Height: 480}
	if got := Monocle(area, 0); len(got) != 0 {
		t.Fatalf("expected no rects for zero clients, got %+v", got)
	}
	for k := 1; k <= 6; k++ {
		for i, r := range Monocle(area, k) {
			if r != area {
				t.Fatalf("k=%d rect %d: expected %+v, got %+v", k, i, area, r)
			}
		}
	}
}

func TestFibonacci_PositiveSizesAndCover(t *testing.T) {
	areas := []Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 0, Y: 0, Width: 3, Height: 2},
		{X: 100, Y: 50, Width: 1, Height: 1},
		{X: 0, Y: 0, Width: 37, Height: 1000},
	}
	for _, spiral := range []bool{true, false} {
		for _, area := range areas {
			for k := 1; k <= 40; k++ {
				rects := Fibonacci(area, k, 0.55, spiral)
				if len(rects) != k {
					t.Fatalf("spiral=%v k=%d: got %d rects", spiral, k, len(rects))
				}
				for i, r := range rects {
					if r.Width <= 0 || r.Height <= 0 {
						t.Fatalf("spiral=%v area=%+v k=%d rect %d non-positive: %+v", spiral, area, k, i, r)
					}
					if r.Intersect(area) != r {
						t.Fatalf("spiral=%v rect %d %+v escapes %+v", spiral, i, r, area)
					}
				}
			}
		}
	}
}

func TestFibonacci_SplitsTileWhileRoomRemains(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1600, Height: 1200}
	for _, spiral := range []bool{true, false} {
		for k := 1; k <= 6; k++ {
			assertExactCover(t, area, Fibonacci(area, k, 0.5, spiral))
		}
	}
}

func TestFibonacci_SpiralVersusDwindle(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 1600, Height: 1200}

	dwindle := Fibonacci(area, 4, 0.5, false)
	want := []Rect{
		{X: 0, Y: 0, Width: 800, Height: 1200},
		{X: 800, Y: 0, Width: 800, Height: 600},
		{X: 800, Y: 600, Width: 400, Height: 600},
		{X: 1200, Y: 600, Width: 400, Height: 600},
	}
	for i := range want {
		if dwindle[i] != want[i] {
			t.Fatalf("dwindle[%d] = %+v, want %+v", i, dwindle[i], want[i])
		}
	}

	spiral := Fibonacci(area, 4, 0.5, true)
	want = []Rect{
		{X: 0, Y: 0, Width: 800, Height: 1200},
		{X: 800, Y: 0, Width: 800, Height: 600},
		{X: 1200, Y: 600, Width: 400, Height: 600},
		{X: 800, Y: 600, Width: 400, Height: 600},
	}
	for i := range want {
		if spiral[i] != want[i] {
			t.Fatalf("spiral[%d] = %+v, want %+v", i, spiral[i], want[i])
		}
	}
}

func TestArrange_FloatingAndEmpty(t *testing.T) {
	area := Rect{Width: 100, Height: 100}
	if got := Arrange(KindFloating, Params{Area: area, Count: 3, NMaster: 1, MFact: 0.5}); got != nil {
		t.Fatalf("floating layout should produce nil, got %+v", got)
	}
	for _, k := range []Kind{KindTile, KindMonocle, KindSpiral, KindDwindle} {
		if got := Arrange(k, Params{Area: area, Count: 0}); got != nil {
			t.Fatalf("%s with zero clients should be a no-op, got %+v", k, got)
		}
	}
}

func TestClampMFact_RepeatedAdjustStaysInBounds(t *testing.T) {
	f := 0.95
	for i := 0; i < 10; i++ {
		f = ClampMFact(f + 0.05)
	}
	if f != MaxMFact {
		t.Fatalf("expected %v after increments, got %v", MaxMFact, f)
	}
	f = 0.05
	for i := 0; i < 10; i++ {
		f = ClampMFact(f - 0.05)
	}
	if f != MinMFact {
		t.Fatalf("expected %v after decrements, got %v", MinMFact, f)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"tile", KindTile},
		{"Floating", KindFloating},
		{"monocle", KindMonocle},
		{" spiral ", KindSpiral},
		{"dwindle", KindDwindle},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseKind("grid"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
