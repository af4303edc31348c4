package platform

// ClientInput installs the pointer bindings that act on managed windows.
// Backends call Grab when a window becomes managed and Ungrab when it is
// released.
type ClientInput interface {
	Grab(id WindowID)
	Ungrab(id WindowID)
}

// Publisher is implemented by backends that export the tag view to pagers
// and taskbars.
type Publisher interface {
	// Publish reports the tag names, the selected tag mask of the selected
	// monitor, the focused window and the tag mask of every managed window.
	Publish(tags []string, selected uint32, focused WindowID, windows map[WindowID]uint32) error
	// SetStatus writes status text where external bars read it.
	SetStatus(text string) error
}
