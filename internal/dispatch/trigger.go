package dispatch

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifiers is a modifier set using the X11 core mask bit values.
type Modifiers uint16

const (
	ModShift   Modifiers = 1 << 0
	ModLock    Modifiers = 1 << 1
	ModControl Modifiers = 1 << 2
	Mod1       Modifiers = 1 << 3
	Mod2       Modifiers = 1 << 4
	Mod3       Modifiers = 1 << 5
	Mod4       Modifiers = 1 << 6
	Mod5       Modifiers = 1 << 7
)

var modOrder = []struct {
	mod  Modifiers
	name string
}{
	{ModShift, "Shift"},
	{ModLock, "Lock"},
	{ModControl, "Control"},
	{Mod1, "Mod1"},
	{Mod2, "Mod2"},
	{Mod3, "Mod3"},
	{Mod4, "Mod4"},
	{Mod5, "Mod5"},
}

// ParseModifier resolves a single modifier name. "Alt" and "Super" are
// accepted as Mod1 and Mod4.
func ParseModifier(name string) (Modifiers, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "shift":
		return ModShift, nil
	case "lock":
		return ModLock, nil
	case "control", "ctrl":
		return ModControl, nil
	case "mod1", "alt":
		return Mod1, nil
	case "mod2":
		return Mod2, nil
	case "mod3":
		return Mod3, nil
	case "mod4", "super":
		return Mod4, nil
	case "mod5":
		return Mod5, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// String renders the set in canonical order joined by "-", e.g. "Shift-Mod1".
func (m Modifiers) String() string {
	var parts []string
	for _, mo := range modOrder {
		if m&mo.mod != 0 {
			parts = append(parts, mo.name)
		}
	}
	return strings.Join(parts, "-")
}

// Clean drops lock-style modifiers so a chord matches regardless of
// CapsLock/NumLock state.
func (m Modifiers) Clean(numLock Modifiers) Modifiers {
	return m &^ (ModLock | numLock) & (ModShift | ModControl | Mod1 | Mod2 | Mod3 | Mod4 | Mod5)
}

// parseChord splits "Mod1-Shift-Return" into modifiers and the final token.
// "MODKEY" expands to modkey.
func parseChord(s string, modkey Modifiers) (Modifiers, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", fmt.Errorf("empty trigger")
	}
	parts := strings.Split(s, "-")
	last := parts[len(parts)-1]
	// "Mod1--" binds the minus key.
	if last == "" && len(parts) >= 2 && strings.HasSuffix(s, "--") {
		parts = parts[:len(parts)-1]
		last = "minus"
	}
	if strings.TrimSpace(last) == "" {
		return 0, "", fmt.Errorf("trigger %q has no key", s)
	}

	var mods Modifiers
	for _, p := range parts[:len(parts)-1] {
		if strings.EqualFold(p, "MODKEY") {
			if modkey == 0 {
				return 0, "", fmt.Errorf("trigger %q uses MODKEY but no modkey is configured", s)
			}
			mods |= modkey
			continue
		}
		mod, err := ParseModifier(p)
		if err != nil {
			return 0, "", fmt.Errorf("trigger %q: %w", s, err)
		}
		mods |= mod
	}
	return mods, strings.TrimSpace(last), nil
}

// KeyTrigger is a modifier set plus a keysym name.
type KeyTrigger struct {
	Mods Modifiers
	Key  string
}

// ParseKeyTrigger parses "Mod1-Shift-Return" style chords.
func ParseKeyTrigger(s string, modkey Modifiers) (KeyTrigger, error) {
	mods, key, err := parseChord(s, modkey)
	if err != nil {
		return KeyTrigger{}, err
	}
	return KeyTrigger{Mods: mods, Key: key}, nil
}

// String renders the chord in the form xgbutil's keybind package parses.
func (t KeyTrigger) String() string {
	if t.Mods == 0 {
		return t.Key
	}
	return t.Mods.String() + "-" + t.Key
}

// Region is the UI area a pointer button was pressed in.
type Region int

const (
	RegionTagBar Region = iota
	RegionLtSymbol
	RegionStatusText
	RegionWinTitle
	RegionClientWin
	RegionRootWin
)

var regionNames = []string{
	RegionTagBar:     "tagbar",
	RegionLtSymbol:   "ltsymbol",
	RegionStatusText: "statustext",
	RegionWinTitle:   "wintitle",
	RegionClientWin:  "clientwin",
	RegionRootWin:    "rootwin",
}

func (r Region) String() string {
	if r >= 0 && int(r) < len(regionNames) {
		return regionNames[r]
	}
	return fmt.Sprintf("Region(%d)", int(r))
}

// ParseRegion resolves a region name.
func ParseRegion(name string) (Region, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range regionNames {
		if n == name {
			return Region(i), nil
		}
	}
	return 0, fmt.Errorf("unknown click region %q", name)
}

// ButtonTrigger is a click region, modifier set and pointer button number.
type ButtonTrigger struct {
	Region Region
	Mods   Modifiers
	Button int
}

// ParseButtonTrigger parses the modifier/button part ("Mod1-1", "3") for
// the given region.
func ParseButtonTrigger(region Region, s string, modkey Modifiers) (ButtonTrigger, error) {
	mods, last, err := parseChord(s, modkey)
	if err != nil {
		return ButtonTrigger{}, err
	}
	last = strings.TrimPrefix(strings.ToLower(last), "button")
	n, err := strconv.Atoi(last)
	if err != nil || n < 1 || n > 5 {
		return ButtonTrigger{}, fmt.Errorf("trigger %q: button must be 1-5", s)
	}
	return ButtonTrigger{Region: region, Mods: mods, Button: n}, nil
}

// Chord renders the modifier/button part in xgbutil mousebind form.
func (t ButtonTrigger) Chord() string {
	if t.Mods == 0 {
		return strconv.Itoa(t.Button)
	}
	return t.Mods.String() + "-" + strconv.Itoa(t.Button)
}

func (t ButtonTrigger) String() string {
	return t.Region.String() + ":" + t.Chord()
}
