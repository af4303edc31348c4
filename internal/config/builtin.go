package config

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/status"
)

// DefaultConfig returns the built-in configuration. Loaded files are merged
// over it.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		ModKey:   "Mod1",
		Tags:     []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},

		BorderPx:  1,
		Snap:      32,
		ShowBar:   true,
		TopBar:    true,
		BarHeight: 0,

		MFact:   0.55,
		NMaster: 1,

		LockFullscreen:  true,
		SwallowFloating: false,

		Colors: Colors{
			NormBorder:   "#444444",
			SelBorder:    "#005577",
			UrgentBorder: "#ff0000",
		},

		// The first entry is the default layout.
		Layouts: []LayoutSpec{
			{Symbol: "[]=", Kind: "tile"},
			{Symbol: "><>", Kind: "floating"},
			{Symbol: "[M]", Kind: "monocle"},
			{Symbol: "[@]", Kind: "spiral"},
			{Symbol: "[\\]", Kind: "dwindle"},
		},

		Rules: []RuleSpec{
			{Class: "Gimp", Floating: boolPtr(true)},
			{Class: "Firefox", Tags: "9", NoSwallow: boolPtr(true)},
			{Class: "st", Terminal: boolPtr(true), NoSwallow: boolPtr(true)},
			{Title: "Event Tester", Floating: boolPtr(true), NoSwallow: boolPtr(true)},
		},

		Commands: map[string]string{
			"term":        "st",
			"dmenu":       "dmenu_run -p Run: -m {monitor}",
			"clipboard":   "clipmenu",
			"lock":        "slock",
			"volume-down": "pulseaudio-ctl down",
			"volume-mute": "pulseaudio-ctl mute",
			"volume-up":   "pulseaudio-ctl up",
			"bright-up":   "xbacklight -inc 10",
			"bright-down": "xbacklight -dec 10",
			"screenshot":  "scrot",
			"menu":        "tagtile menu",
		},

		Keys:    defaultKeys(),
		Buttons: defaultButtons(),

		Status: StatusConfig{
			Enabled:  false,
			Interval: status.DefaultInterval,
			Unknown:  status.DefaultUnknown,
			Components: []status.Component{
				{Func: "battery_state", Format: "[%s]", Arg: "BAT0"},
				{Func: "battery_perc", Format: " %s%%", Arg: "BAT0"},
				{Func: "wifi_perc", Format: " W:%s%%", Arg: "wlan0"},
				{Func: "datetime", Format: "%s", Arg: status.DefaultDateFormat},
			},
		},
	}
}

func defaultKeys() []KeySpec {
	keys := []KeySpec{
		{Key: "MODKEY-p", Command: "spawn", Arg: "dmenu"},
		{Key: "MODKEY-o", Command: "spawn", Arg: "clipboard"},
		{Key: "MODKEY-Shift-p", Command: "spawn", Arg: "menu"},
		{Key: "MODKEY-Shift-Return", Command: "spawn", Arg: "term"},
		{Key: "MODKEY-Control-l", Command: "spawn", Arg: "lock"},
		{Key: "Print", Command: "spawn", Arg: "screenshot"},
		{Key: "XF86AudioLowerVolume", Command: "spawn", Arg: "volume-down"},
		{Key: "XF86AudioMute", Command: "spawn", Arg: "volume-mute"},
		{Key: "XF86AudioRaiseVolume", Command: "spawn", Arg: "volume-up"},
		{Key: "XF86MonBrightnessUp", Command: "spawn", Arg: "bright-up"},
		{Key: "XF86MonBrightnessDown", Command: "spawn", Arg: "bright-down"},
		{Key: "MODKEY-Shift-c", Command: "killclient"},
		{Key: "MODKEY-b", Command: "togglebar"},
	}

	for _, stack := range []struct{ mods, cmd string }{
		{"MODKEY", "focusstack"},
		{"MODKEY-Shift", "pushstack"},
	} {
		for _, k := range []struct{ key, arg string }{
			{"j", "+1"},
			{"k", "-1"},
			{"grave", "prevsel"},
			{"q", "0"},
			{"a", "1"},
			{"z", "2"},
			{"x", "last"},
		} {
			keys = append(keys, KeySpec{Key: stack.mods + "-" + k.key, Command: stack.cmd, Arg: k.arg})
		}
	}

	keys = append(keys,
		KeySpec{Key: "MODKEY-i", Command: "incnmaster", Arg: "+1"},
		KeySpec{Key: "MODKEY-d", Command: "incnmaster", Arg: "-1"},
		KeySpec{Key: "MODKEY-h", Command: "setmfact", Arg: "-0.05"},
		KeySpec{Key: "MODKEY-l", Command: "setmfact", Arg: "+0.05"},
		KeySpec{Key: "MODKEY-Return", Command: "zoom"},
		KeySpec{Key: "MODKEY-Tab", Command: "view"},
		KeySpec{Key: "MODKEY-t", Command: "setlayout", Arg: "tile"},
		KeySpec{Key: "MODKEY-f", Command: "setlayout", Arg: "floating"},
		KeySpec{Key: "MODKEY-m", Command: "setlayout", Arg: "monocle"},
		KeySpec{Key: "MODKEY-r", Command: "setlayout", Arg: "spiral"},
		KeySpec{Key: "MODKEY-Shift-r", Command: "setlayout", Arg: "dwindle"},
		KeySpec{Key: "MODKEY-space", Command: "setlayout"},
		KeySpec{Key: "MODKEY-0", Command: "view", Arg: "all"},
		KeySpec{Key: "MODKEY-Shift-0", Command: "tag", Arg: "all"},
		KeySpec{Key: "MODKEY-comma", Command: "focusmon", Arg: "-1"},
		KeySpec{Key: "MODKEY-period", Command: "focusmon", Arg: "+1"},
		KeySpec{Key: "MODKEY-Shift-comma", Command: "tagmon", Arg: "-1"},
		KeySpec{Key: "MODKEY-Shift-period", Command: "tagmon", Arg: "+1"},
	)

	for i := 1; i <= 9; i++ {
		tag := fmt.Sprint(i)
		keys = append(keys,
			KeySpec{Key: "MODKEY-" + tag, Command: "view", Arg: tag},
			KeySpec{Key: "MODKEY-Control-" + tag, Command: "toggleview", Arg: tag},
			KeySpec{Key: "MODKEY-Shift-" + tag, Command: "tag", Arg: tag},
			KeySpec{Key: "MODKEY-Control-Shift-" + tag, Command: "toggletag", Arg: tag},
		)
	}

	return append(keys, KeySpec{Key: "MODKEY-Shift-BackSpace", Command: "quit"})
}

func defaultButtons() []ButtonSpec {
	return []ButtonSpec{
		{Region: "ltsymbol", Button: "1", Command: "setlayout"},
		{Region: "ltsymbol", Button: "3", Command: "setlayout", Arg: "monocle"},
		{Region: "wintitle", Button: "2", Command: "zoom"},
		{Region: "statustext", Button: "2", Command: "spawn", Arg: "term"},
		{Region: "clientwin", Button: "MODKEY-1", Command: "movemouse"},
		{Region: "clientwin", Button: "MODKEY-2", Command: "togglefloating"},
		{Region: "clientwin", Button: "MODKEY-3", Command: "resizemouse"},
		{Region: "tagbar", Button: "1", Command: "view"},
		{Region: "tagbar", Button: "3", Command: "toggleview"},
		{Region: "tagbar", Button: "MODKEY-1", Command: "tag"},
		{Region: "tagbar", Button: "MODKEY-3", Command: "toggletag"},
	}
}
