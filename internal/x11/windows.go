package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ClientEventMask is selected on every managed window.
const ClientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskFocusChange |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskStructureNotify

// Props holds what the window manager reads from a window before managing it.
type Props struct {
	PID      int
	Class    string
	Instance string
	Title    string

	X, Y          int
	Width, Height int
	Border        int

	TransientFor xproto.Window
	Fixed        bool
	Urgent       bool
	NeverFocus   bool
	Fullscreen   bool
	Dialog       bool
	Dock         bool

	OverrideRedirect bool
	// Viewable is set for mapped windows and for iconified ones.
	Viewable bool
}

// IsGone reports whether err is an X error caused by a destroyed window.
func IsGone(err error) bool {
	switch err.(type) {
	case xproto.WindowError, xproto.DrawableError, xproto.MatchError:
		return true
	}
	return false
}

func (c *Connection) atom(name string) xproto.Atom {
	a, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0
	}
	return a
}

// ReadProps collects attributes, geometry and ICCCM/EWMH properties of win.
// Only the attribute and geometry requests can fail; missing properties keep
// their zero values.
func (c *Connection) ReadProps(win xproto.Window) (Props, error) {
	var p Props
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return p, err
	}
	p.OverrideRedirect = attrs.OverrideRedirect
	p.Viewable = attrs.MapState == xproto.MapStateViewable || c.WMState(win) == icccm.StateIconic

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return p, err
	}
	p.X, p.Y = int(geom.X), int(geom.Y)
	p.Width, p.Height = int(geom.Width), int(geom.Height)
	p.Border = int(geom.BorderWidth)

	if class, err := icccm.WmClassGet(c.XUtil, win); err == nil {
		p.Class, p.Instance = class.Class, class.Instance
	}
	p.Title = c.Title(win)
	if pid, err := ewmh.WmPidGet(c.XUtil, win); err == nil {
		p.PID = int(pid)
	}
	if parent, err := icccm.WmTransientForGet(c.XUtil, win); err == nil && parent != win {
		p.TransientFor = parent
	}
	p.Fixed = c.Fixed(win)
	p.Urgent, p.NeverFocus = c.Hints(win)

	if states, err := ewmh.WmStateGet(c.XUtil, win); err == nil {
		p.Fullscreen = slices.Contains(states, "_NET_WM_STATE_FULLSCREEN")
	}
	p.Dialog, p.Dock = c.WindowType(win)
	return p, nil
}

// Title returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

// Hints reads the urgency flag and input model from WM_HINTS.
func (c *Connection) Hints(win xproto.Window) (urgent, neverFocus bool) {
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return false, false
	}
	urgent = hints.Flags&icccm.HintUrgency != 0
	neverFocus = hints.Flags&icccm.HintInput != 0 && hints.Input == 0
	return urgent, neverFocus
}

// ClearUrgent drops the urgency flag from WM_HINTS.
func (c *Connection) ClearUrgent(win xproto.Window) {
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil || hints.Flags&icccm.HintUrgency == 0 {
		return
	}
	hints.Flags &^= icccm.HintUrgency
	icccm.WmHintsSet(c.XUtil, win, hints)
}

// Fixed reports whether WM_NORMAL_HINTS pins the window to a single size.
func (c *Connection) Fixed(win xproto.Window) bool {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	const both = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	return nh.Flags&both == both && nh.MaxWidth > 0 && nh.MaxHeight > 0 &&
		nh.MinWidth == nh.MaxWidth && nh.MinHeight == nh.MaxHeight
}

// WindowType reports whether win is a dialog or a dock.
func (c *Connection) WindowType(win xproto.Window) (dialog, dock bool) {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false, false
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DIALOG":
			dialog = true
		case "_NET_WM_WINDOW_TYPE_DOCK":
			dock = true
		}
	}
	return dialog, dock
}

// TopLevel lists the children of the root window in stacking order.
func (c *Connection) TopLevel() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	return tree.Children, nil
}

// WMState returns the ICCCM WM_STATE of win, or StateWithdrawn when unset.
func (c *Connection) WMState(win xproto.Window) uint {
	st, err := icccm.WmStateGet(c.XUtil, win)
	if err != nil {
		return icccm.StateWithdrawn
	}
	return st.State
}

// SetWMState writes WM_STATE.
func (c *Connection) SetWMState(win xproto.Window, state uint) error {
	return icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: state})
}

// SelectEvents replaces the event mask selected on win.
func (c *Connection) SelectEvents(win xproto.Window, mask uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win, xproto.CwEventMask,
		[]uint32{mask}).Check()
}

// Map maps win.
func (c *Connection) Map(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// MoveResize sets the geometry and border width of win and tells the client
// about it with a synthetic ConfigureNotify, which clients rely on when the
// server would not send one.
func (c *Connection) MoveResize(win xproto.Window, x, y, width, height, border int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight |
		xproto.ConfigWindowBorderWidth)
	values := []uint32{
		uint32(int32(x)), uint32(int32(y)),
		uint32(max(width, 1)), uint32(max(height, 1)),
		uint32(border),
	}
	if err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check(); err != nil {
		return err
	}

	cne := xproto.ConfigureNotifyEvent{
		Event:       win,
		Window:      win,
		X:           int16(x),
		Y:           int16(y),
		Width:       uint16(max(width, 1)),
		Height:      uint16(max(height, 1)),
		BorderWidth: uint16(border),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(cne.Bytes())).Check()
}

// ConfigureRaw issues a ConfigureWindow with a caller-built value list.
func (c *Connection) ConfigureRaw(win xproto.Window, mask uint16, values []uint32) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), win, mask, values).Check()
}

// SetBorderColor sets the border pixel of win.
func (c *Connection) SetBorderColor(win xproto.Window, pixel uint32) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), win, xproto.CwBorderPixel,
		[]uint32{pixel}).Check()
}

// Restack orders wins top to bottom: the first is raised and each following
// window is stacked directly below its predecessor.
func (c *Connection) Restack(wins []xproto.Window) error {
	if len(wins) == 0 {
		return nil
	}
	err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), wins[0], xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
	if err != nil && !IsGone(err) {
		return err
	}
	for i := 1; i < len(wins); i++ {
		err := xproto.ConfigureWindowChecked(c.XUtil.Conn(), wins[i],
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(wins[i-1]), xproto.StackModeBelow}).Check()
		if err != nil && !IsGone(err) {
			return err
		}
	}
	return nil
}

// Protocols returns the WM_PROTOCOLS atoms win supports.
func (c *Connection) Protocols(win xproto.Window) []string {
	protos, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil {
		return nil
	}
	return protos
}

// SendProtocol delivers a WM_PROTOCOLS client message such as
// WM_DELETE_WINDOW or WM_TAKE_FOCUS.
func (c *Connection) SendProtocol(win xproto.Window, protocol string) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.atom("WM_PROTOCOLS"),
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(c.atom(protocol)),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent,
		string(ev.Bytes())).Check()
}

// Focus gives input focus to win and publishes it as _NET_ACTIVE_WINDOW.
// A zero win returns focus to the root window.
func (c *Connection) Focus(win xproto.Window, input bool) error {
	if win == 0 {
		xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime)
		return xproto.DeletePropertyChecked(c.XUtil.Conn(), c.Root, c.atom("_NET_ACTIVE_WINDOW")).Check()
	}
	if input {
		err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win,
			xproto.TimeCurrentTime).Check()
		if err != nil {
			return err
		}
	}
	if slices.Contains(c.Protocols(win), "WM_TAKE_FOCUS") {
		if err := c.SendProtocol(win, "WM_TAKE_FOCUS"); err != nil {
			return err
		}
	}
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// CloseWindow asks win to close politely, or kills its client when it does
// not take part in WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(win xproto.Window) error {
	if slices.Contains(c.Protocols(win), "WM_DELETE_WINDOW") {
		return c.SendProtocol(win, "WM_DELETE_WINDOW")
	}
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(win)).Check()
}

// SetFullscreenState updates _NET_WM_STATE to match on.
func (c *Connection) SetFullscreenState(win xproto.Window, on bool) error {
	states, _ := ewmh.WmStateGet(c.XUtil, win)
	states = slices.DeleteFunc(states, func(s string) bool { return s == "_NET_WM_STATE_FULLSCREEN" })
	if on {
		states = append(states, "_NET_WM_STATE_FULLSCREEN")
	}
	return ewmh.WmStateSet(c.XUtil, win, states)
}

// SetClientList publishes _NET_CLIENT_LIST.
func (c *Connection) SetClientList(wins []xproto.Window) error {
	return ewmh.ClientListSet(c.XUtil, wins)
}

// Pointer returns the pointer position relative to the root window.
func (c *Connection) Pointer() (x, y int, err error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

// RootName returns WM_NAME of the root window, used by status setters.
func (c *Connection) RootName() string {
	name, err := icccm.WmNameGet(c.XUtil, c.Root)
	if err != nil {
		return ""
	}
	return name
}

// SetRootName writes WM_NAME on the root window.
func (c *Connection) SetRootName(name string) error {
	return icccm.WmNameSet(c.XUtil, c.Root, name)
}
