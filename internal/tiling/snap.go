package tiling

// SnapMove returns win shifted so that a left/right (top/bottom) edge lying
// within threshold pixels of a bounds edge or of another window's edge lands
// on that edge exactly. The size of win is unchanged.
func SnapMove(win Rect, bounds Rect, others []Rect, threshold int) Rect {
	if threshold <= 0 {
		return win
	}
	xs, ys := snapEdges(bounds, others)
	win.X += snapcalc(win.X, win.X+win.Width, xs, threshold)
	win.Y += snapcalc(win.Y, win.Y+win.Height, ys, threshold)
	return win
}

// SnapResize adjusts the right and bottom edges of win the same way SnapMove
// adjusts position. The origin is unchanged and the size never drops below 1.
func SnapResize(win Rect, bounds Rect, others []Rect, threshold int) Rect {
	if threshold <= 0 {
		return win
	}
	xs, ys := snapEdges(bounds, others)
	if d, ok := nearest(win.X+win.Width, xs, threshold); ok {
		win.Width = max(1, win.Width+d)
	}
	if d, ok := nearest(win.Y+win.Height, ys, threshold); ok {
		win.Height = max(1, win.Height+d)
	}
	return win
}

func snapEdges(bounds Rect, others []Rect) (xs, ys []int) {
	xs = append(xs, bounds.X, bounds.X+bounds.Width)
	ys = append(ys, bounds.Y, bounds.Y+bounds.Height)
	for _, o := range others {
		xs = append(xs, o.X, o.X+o.Width)
		ys = append(ys, o.Y, o.Y+o.Height)
	}
	return xs, ys
}

// snapcalc picks the smaller of the offsets that would align n0 or n1 with
// one of the edges.
func snapcalc(n0, n1 int, edges []int, threshold int) int {
	d0, ok0 := nearest(n0, edges, threshold)
	d1, ok1 := nearest(n1, edges, threshold)
	switch {
	case ok0 && ok1:
		if abs(d1) < abs(d0) {
			return d1
		}
		return d0
	case ok0:
		return d0
	case ok1:
		return d1
	}
	return 0
}

func nearest(v int, edges []int, threshold int) (int, bool) {
	best, found := 0, false
	for _, e := range edges {
		d := e - v
		if abs(d) > threshold {
			continue
		}
		if !found || abs(d) < abs(best) {
			best, found = d, true
		}
	}
	return best, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
