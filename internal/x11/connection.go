package x11

import (
	"errors"
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ErrOtherWM is returned by BecomeWM when another client already selected
// SubstructureRedirect on the root window.
var ErrOtherWM = errors.New("another window manager is already running")

// RootEventMask is the set of root window events a window manager needs.
const RootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskPropertyChange

// supportedAtoms is advertised through _NET_SUPPORTED.
var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_WM_NAME",
	"_NET_WM_STATE",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
}

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// Check is the _NET_SUPPORTING_WM_CHECK window, created by Announce.
	Check xproto.Window

	randrOnce sync.Once
	randrErr  error
}

// NewConnection connects to the display named by $DISPLAY.
func NewConnection() (*Connection, error) {
	return NewConnectionDisplay("")
}

// NewConnectionDisplay connects to the named display and initializes the
// key and mouse binding modules.
func NewConnectionDisplay(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// BecomeWM selects the window manager event mask on the root window. Only
// one client may hold SubstructureRedirect at a time.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwEventMask,
		[]uint32{RootEventMask}).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrOtherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}
	return nil
}

// Announce publishes the EWMH properties that identify the window manager
// and sets the root cursor.
func (c *Connection) Announce(name string) error {
	win, err := xwindow.Create(c.XUtil, c.Root)
	if err != nil {
		return fmt.Errorf("create check window: %w", err)
	}
	c.Check = win.Id

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, win.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, win.Id, win.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, win.Id, name); err != nil {
		return err
	}
	if err := ewmh.SupportedSet(c.XUtil, supportedAtoms); err != nil {
		return err
	}
	if err := ewmh.ClientListSet(c.XUtil, nil); err != nil {
		return err
	}

	cursor, err := xcursor.CreateCursor(c.XUtil, xcursor.LeftPtr)
	if err != nil {
		return fmt.Errorf("create cursor: %w", err)
	}
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root, xproto.CwCursor,
		[]uint32{uint32(cursor)}).Check()
}

// Cursor creates one of the standard X cursor font glyphs.
func (c *Connection) Cursor(glyph uint16) xproto.Cursor {
	cursor, err := xcursor.CreateCursor(c.XUtil, glyph)
	if err != nil {
		return 0
	}
	return cursor
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops EventLoop. A client message is sent to the check window so a
// loop blocked waiting for events wakes up.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
	if c.Check == 0 {
		return
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.Check,
		Type:   xproto.AtomWmName,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	xproto.SendEvent(c.XUtil.Conn(), false, c.Check, xproto.EventMaskNoEvent, string(ev.Bytes()))
	c.XUtil.Sync()
}

// Release drops the EWMH properties published by Announce.
func (c *Connection) Release() {
	if c.Check != 0 {
		xproto.DestroyWindow(c.XUtil.Conn(), c.Check)
		xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.atom("_NET_SUPPORTING_WM_CHECK"))
		c.Check = 0
	}
	xproto.DeleteProperty(c.XUtil.Conn(), c.Root, c.atom("_NET_ACTIVE_WINDOW"))
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
