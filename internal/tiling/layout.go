package tiling

import (
	"fmt"
	"strings"
)

const (
	MinMFact = 0.05
	MaxMFact = 0.95
)

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the overlapping area of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Area returns width*height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Kind identifies an arrangement strategy from the layout palette.
type Kind int

const (
	KindTile Kind = iota
	KindFloating
	KindMonocle
	KindSpiral
	KindDwindle
)

var kindNames = map[Kind]string{
	KindTile:     "tile",
	KindFloating: "floating",
	KindMonocle:  "monocle",
	KindSpiral:   "spiral",
	KindDwindle:  "dwindle",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a config name into a layout Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tile", "tiled", "master-stack":
		return KindTile, nil
	case "floating", "float", "none":
		return KindFloating, nil
	case "monocle":
		return KindMonocle, nil
	case "spiral":
		return KindSpiral, nil
	case "dwindle":
		return KindDwindle, nil
	}
	return 0, fmt.Errorf("unknown layout kind %q", name)
}

// Arranges reports whether the layout positions tiled clients at all.
// The floating layout leaves every client where it is.
func (k Kind) Arranges() bool {
	return k != KindFloating
}

// Params holds the inputs to a single arrangement pass.
type Params struct {
	Area    Rect
	Count   int
	NMaster int
	MFact   float64
}

// ClampMFact limits a master fraction to [MinMFact, MaxMFact].
func ClampMFact(f float64) float64 {
	if f != f { // NaN
		return MinMFact
	}
	if f < MinMFact {
		return MinMFact
	}
	if f > MaxMFact {
		return MaxMFact
	}
	return f
}

// Arrange computes one outer rectangle per tiled client, in client order.
// It returns nil for the floating layout and for zero clients.
func Arrange(kind Kind, p Params) []Rect {
	if p.Count <= 0 {
		return nil
	}
	switch kind {
	case KindTile:
		return Tile(p.Area, p.Count, p.NMaster, p.MFact)
	case KindMonocle:
		return Monocle(p.Area, p.Count)
	case KindSpiral:
		return Fibonacci(p.Area, p.Count, p.MFact, true)
	case KindDwindle:
		return Fibonacci(p.Area, p.Count, p.MFact, false)
	case KindFloating:
		return nil
	}
	return nil
}

// Tile is the master-stack layout. The first nmaster clients share a master
// column of width mfact*area.Width; the rest share the stack column. Heights
// are divided so the last client in each column absorbs the remainder.
func Tile(area Rect, n, nmaster int, mfact float64) []Rect {
	if n <= 0 {
		return nil
	}
	if nmaster < 0 {
		nmaster = 0
	}
	mfact = ClampMFact(mfact)

	mw := area.Width
	if n > nmaster {
		if nmaster > 0 {
			mw = int(float64(area.Width) * mfact)
		} else {
			mw = 0
		}
	}
	masters := min(n, nmaster)

	out := make([]Rect, n)
	my, ty := 0, 0
	for i := 0; i < n; i++ {
		if i < masters {
			h := (area.Height - my) / (masters - i)
			out[i] = Rect{X: area.X, Y: area.Y + my, Width: mw, Height: h}
			my += h
			continue
		}
		h := (area.Height - ty) / (n - i)
		out[i] = Rect{X: area.X + mw, Y: area.Y + ty, Width: area.Width - mw, Height: h}
		ty += h
	}
	return out
}

// Monocle gives every client the full area.
func Monocle(area Rect, n int) []Rect {
	if n <= 0 {
		return nil
	}
	out := make([]Rect, n)
	for i := range out {
		out[i] = area
	}
	return out
}

// Fibonacci recursively splits the remaining area for each client, alternating
// between vertical and horizontal cuts. The first cut uses mfact when there is
// more than one client; later cuts halve.
//
// With spiral set, the client's half rotates clockwise (left, top, right,
// bottom) so the remainder spirals inward. Without it (dwindle) the client
// always takes the left or top half and the remainder shrinks toward the
// bottom-right corner.
//
// A region too small to split is shared by all remaining clients.
func Fibonacci(area Rect, n int, mfact float64, spiral bool) []Rect {
	if n <= 0 {
		return nil
	}
	mfact = ClampMFact(mfact)

	out := make([]Rect, 0, n)
	rem := area
	for i := 0; i < n; i++ {
		if i == n-1 {
			out = append(out, rem)
			break
		}

		vertical := i%2 == 0
		size := rem.Height
		if vertical {
			size = rem.Width
		}
		if size < 2 {
			for len(out) < n {
				out = append(out, rem)
			}
			break
		}

		part := size / 2
		if i == 0 {
			part = int(float64(size) * mfact)
		}
		part = max(1, min(part, size-1))

		// Position of the client's piece within rem: the leading edge, or the
		// trailing edge on the third and fourth step of a spiral turn.
		trailing := spiral && i%4 >= 2

		var cur, next Rect
		if vertical {
			cur = Rect{X: rem.X, Y: rem.Y, Width: part, Height: rem.Height}
			next = Rect{X: rem.X + part, Y: rem.Y, Width: rem.Width - part, Height: rem.Height}
			if trailing {
				cur.X = rem.X + rem.Width - part
				next.X = rem.X
			}
		} else {
			cur = Rect{X: rem.X, Y: rem.Y, Width: rem.Width, Height: part}
			next = Rect{X: rem.X, Y: rem.Y + part, Width: rem.Width, Height: rem.Height - part}
			if trailing {
				cur.Y = rem.Y + rem.Height - part
				next.Y = rem.Y
			}
		}
		out = append(out, cur)
		rem = next
	}
	return out
}
