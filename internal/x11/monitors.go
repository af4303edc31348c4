package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	xgbxinerama "github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xinerama"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int

	// Work is the monitor area left after dock struts.
	Work Area
}

// Area is a rectangle in root coordinates.
type Area struct {
	X, Y, Width, Height int
}

// Monitors lists active outputs, trying RandR, then Xinerama, then the root
// window geometry. Struts of the given dock windows are subtracted from each
// work area.
func (c *Connection) Monitors(docks []xproto.Window) ([]Monitor, error) {
	monitors, err := c.randrMonitors()
	if err != nil || len(monitors) == 0 {
		monitors = c.xineramaMonitors()
	}
	if len(monitors) == 0 {
		geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
		if err != nil {
			return nil, fmt.Errorf("failed to get root geometry: %w", err)
		}
		monitors = []Monitor{{Name: "root", Width: int(geom.Width), Height: int(geom.Height)}}
	}

	for i := range monitors {
		mon := &monitors[i]
		mon.Work = Area{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}
		applyDockStruts(c, mon, docks)
	}
	return monitors, nil
}

// WatchScreens asks RandR to report screen changes on the root window.
func (c *Connection) WatchScreens() error {
	if err := c.initRandr(); err != nil {
		return err
	}
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root,
		randr.NotifyMaskScreenChange|randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange).Check()
}

func (c *Connection) initRandr() error {
	c.randrOnce.Do(func() {
		c.randrErr = randr.Init(c.XUtil.Conn())
	})
	return c.randrErr
}

func (c *Connection) randrMonitors() ([]Monitor, error) {
	if err := c.initRandr(); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}
	return monitors, nil
}

func (c *Connection) xineramaMonitors() []Monitor {
	if err := xgbxinerama.Init(c.XUtil.Conn()); err != nil {
		return nil
	}
	heads, err := xinerama.PhysicalHeads(c.XUtil)
	if err != nil {
		return nil
	}
	monitors := make([]Monitor, 0, len(heads))
	for i, h := range heads {
		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   fmt.Sprintf("xinerama-%d", i),
			X:      h.X(),
			Y:      h.Y(),
			Width:  h.Width(),
			Height: h.Height(),
		})
	}
	return monitors
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor, docks []xproto.Window) bool {
	if len(docks) == 0 {
		return false
	}
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	var struts dockStruts
	for _, windowID := range docks {
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			}
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	work := &monitor.Work
	work.X += struts.left
	work.Y += struts.top
	work.Width = max(work.Width-(struts.left+struts.right), 1)
	work.Height = max(work.Height-(struts.top+struts.bottom), 1)
	return true
}

func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	mon := Area{X: monitor.X, Y: monitor.Y, Width: monitor.Width, Height: monitor.Height}

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := Area{X: int(sp.TopStartX), Width: int(sp.TopEndX) + 1 - int(sp.TopStartX), Height: int(sp.Top)}
		acc.top = max(acc.top, mon.intersect(r).Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := Area{
			X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom),
			Width: int(sp.BottomEndX) + 1 - int(sp.BottomStartX), Height: int(sp.Bottom),
		}
		acc.bottom = max(acc.bottom, mon.intersect(r).Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := Area{Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY) + 1 - int(sp.LeftStartY)}
		acc.left = max(acc.left, mon.intersect(r).Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := Area{
			X: rootWidth - int(sp.Right), Y: int(sp.RightStartY),
			Width: int(sp.Right), Height: int(sp.RightEndY) + 1 - int(sp.RightStartY),
		}
		acc.right = max(acc.right, mon.intersect(r).Width)
	}
}

// intersect returns the overlap of a and b, zero sized when they are disjoint.
func (a Area) intersect(b Area) Area {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)

	if x2 <= x1 || y2 <= y1 {
		return Area{}
	}
	return Area{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
