package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Tags are exported to pagers as EWMH desktops. A window with several tags
// is reported on its lowest one.

// SetDesktops publishes _NET_NUMBER_OF_DESKTOPS and _NET_DESKTOP_NAMES.
func (c *Connection) SetDesktops(names []string) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set desktop names: %w", err)
	}
	return nil
}

// SetCurrentDesktop publishes _NET_CURRENT_DESKTOP.
func (c *Connection) SetCurrentDesktop(desktop int) error {
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(desktop)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// SetWindowDesktop writes _NET_WM_DESKTOP on a managed window. A negative
// desktop marks the window sticky.
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) error {
	d := uint(desktop)
	if desktop < 0 {
		d = 0xFFFFFFFF
	}
	return ewmh.WmDesktopSet(c.XUtil, win, d)
}

// DesktopFor maps a tag mask to the desktop index reported for it: the
// lowest set bit, or -1 when every one of count tags is set.
func DesktopFor(mask uint32, count int) int {
	all := uint32(1)<<count - 1
	if count > 0 && mask&all == all && count > 1 {
		return -1
	}
	for i := 0; i < count; i++ {
		if mask&(1<<i) != 0 {
			return i
		}
	}
	return 0
}
