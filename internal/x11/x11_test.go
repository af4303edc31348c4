package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/google/go-cmp/cmp"
)

func TestDesktopFor(t *testing.T) {
	tests := []struct {
		mask  uint32
		count int
		want  int
	}{
		{0b0001, 9, 0},
		{0b0100, 9, 2},
		{0b0110, 9, 1},
		{1<<9 - 1, 9, -1},
		{1, 1, 0},
		{0, 9, 0},
	}
	for _, tt := range tests {
		if got := DesktopFor(tt.mask, tt.count); got != tt.want {
			t.Errorf("DesktopFor(%b, %d) = %d, want %d", tt.mask, tt.count, got, tt.want)
		}
	}
}

func TestAreaIntersect(t *testing.T) {
	a := Area{X: 0, Y: 0, Width: 100, Height: 100}
	if got := a.intersect(Area{X: 50, Y: 80, Width: 100, Height: 100}); got != (Area{X: 50, Y: 80, Width: 50, Height: 20}) {
		t.Fatalf("intersect = %+v", got)
	}
	if got := a.intersect(Area{X: 100, Width: 10, Height: 10}); got != (Area{}) {
		t.Fatalf("disjoint intersect = %+v", got)
	}
}

func TestUpdateStrutsForMonitor(t *testing.T) {
	// Two 1920x1080 monitors side by side; a 24px bar on top of the left one.
	left := &Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := &Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	sp := &ewmh.WmStrutPartial{Top: 24, TopStartX: 0, TopEndX: 1919}

	var accLeft, accRight dockStruts
	updateStrutsForMonitor(left, 3840, 1080, sp, &accLeft)
	updateStrutsForMonitor(right, 3840, 1080, sp, &accRight)

	if diff := cmp.Diff(dockStruts{top: 24}, accLeft, cmp.AllowUnexported(dockStruts{})); diff != "" {
		t.Fatalf("left struts (-want +got):\n%s", diff)
	}
	if accRight != (dockStruts{}) {
		t.Fatalf("right monitor should have no struts, got %+v", accRight)
	}
}
