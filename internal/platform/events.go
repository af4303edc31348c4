package platform

// Event is a notification delivered from the window system to the control
// loop. The set of implementations is closed.
type Event interface {
	isEvent()
}

// MapRequest is sent when a top-level window asks to be shown.
type MapRequest struct{ Window WindowID }

// Destroyed is sent when a window is destroyed.
type Destroyed struct{ Window WindowID }

// Unmapped is sent when a client withdraws its window.
type Unmapped struct{ Window WindowID }

// ConfigureRequest is a client's request to change its geometry.
type ConfigureRequest struct {
	Window WindowID
	Rect   Rect
	Border int
	// Sibling and StackMode are passed through for unmanaged windows.
	Sibling   WindowID
	StackMode uint8
	Fields    ConfigFields
}

// Property identifies which client property changed.
type Property int

const (
	PropTitle Property = iota
	PropHints
	PropNormalHints
	PropTransient
	PropWindowType
)

// PropertyChanged is sent when a managed window's property changes.
type PropertyChanged struct {
	Window   WindowID
	Property Property
}

// StateAction is the _NET_WM_STATE request action.
type StateAction int

const (
	StateRemove StateAction = iota
	StateAdd
	StateToggle
)

// FullscreenRequest is a client request to change its fullscreen state.
type FullscreenRequest struct {
	Window WindowID
	Action StateAction
}

// ActivateRequest is a _NET_ACTIVE_WINDOW request from a client or pager.
type ActivateRequest struct{ Window WindowID }

// Enter is sent when the pointer enters a managed window.
type Enter struct {
	Window WindowID
	X, Y   int
}

// PointerMoved is sent for pointer motion over the root window.
type PointerMoved struct{ X, Y int }

// ScreensChanged is sent when outputs are added, removed or resized.
type ScreensChanged struct{}

// KeyPressed carries a grabbed key chord. Mods has lock modifiers cleared.
type KeyPressed struct {
	Mods uint16
	Key  string
}

// ButtonPressed carries a grabbed pointer button. Window is the client under
// the pointer, 0 for the root window.
type ButtonPressed struct {
	Window WindowID
	Mods   uint16
	Button int
	X, Y   int
}

// DragMotion reports pointer motion while a button drag is active.
type DragMotion struct{ X, Y int }

// DragEnd reports the release of a drag.
type DragEnd struct{ X, Y int }

// RootName carries the root window name, used as status text.
type RootName struct{ Text string }

func (MapRequest) isEvent()        {}
func (Destroyed) isEvent()         {}
func (Unmapped) isEvent()          {}
func (ConfigureRequest) isEvent()  {}
func (PropertyChanged) isEvent()   {}
func (FullscreenRequest) isEvent() {}
func (ActivateRequest) isEvent()   {}
func (Enter) isEvent()             {}
func (PointerMoved) isEvent()      {}
func (ScreensChanged) isEvent()    {}
func (KeyPressed) isEvent()        {}
func (ButtonPressed) isEvent()     {}
func (DragMotion) isEvent()        {}
func (DragEnd) isEvent()           {}
func (RootName) isEvent()          {}
