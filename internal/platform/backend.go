package platform

import (
	"errors"

	"github.com/1broseidon/tagtile/internal/tiling"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect = tiling.Rect

// ErrWindowGone is returned (possibly wrapped) when an operation targets a
// window that no longer exists.
var ErrWindowGone = errors.New("window no longer exists")

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	// Usable excludes space reserved by external docks and bars.
	Usable Rect
}

// WindowInfo contains the properties read from a window when it is first
// managed.
type WindowInfo struct {
	ID       WindowID
	PID      int
	Class    string
	Instance string
	Title    string
	Bounds   Rect
	Border   int

	// TransientFor is the parent window of a dialog, 0 when none.
	TransientFor WindowID
	// Fixed is set when the minimum and maximum size hints are equal.
	Fixed      bool
	Urgent     bool
	NeverFocus bool
	Fullscreen bool
	// Dialog is set for _NET_WM_WINDOW_TYPE_DIALOG windows.
	Dialog bool
	// OverrideRedirect windows are never managed.
	OverrideRedirect bool
}

// ConfigFields marks which fields of a configure request were set.
type ConfigFields uint16

const (
	ConfigX ConfigFields = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
	ConfigBorder
	ConfigSibling
	ConfigStackMode
)

// Backend abstracts the window-system operations the core issues.
// Implementations must be safe to call from the control loop goroutine
// while events are being delivered on another goroutine.
type Backend interface {
	Displays() ([]Display, error)
	// Windows lists existing top-level windows that should be adopted at startup.
	Windows() ([]WindowID, error)
	WindowInfo(id WindowID) (WindowInfo, error)
	Pointer() (x, y int, err error)

	// Manage subscribes to per-window events and maps the window.
	Manage(id WindowID) error
	// Unmanage drops per-window subscriptions; the window may already be gone.
	Unmanage(id WindowID)
	Configure(id WindowID, r Rect, border int) error
	// Forward applies a configure request for a window that is not managed.
	Forward(req ConfigureRequest) error
	SetBorderColor(id WindowID, color uint32) error
	// Restack orders windows top to bottom.
	Restack(ids []WindowID) error
	// Focus gives input focus to id; 0 returns focus to the root window.
	Focus(id WindowID) error
	// Close asks the client to close and kills it if it does not support
	// WM_DELETE_WINDOW.
	Close(id WindowID) error
	SetFullscreen(id WindowID, on bool) error
	SetClientList(ids []WindowID) error
}
