package config

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Settings converts the configuration into the window manager's settings.
func (c *Config) Settings() (wm.Settings, error) {
	matcher, err := c.Matcher()
	if err != nil {
		return wm.Settings{}, err
	}

	layouts := make([]wm.Layout, len(c.Layouts))
	for i, l := range c.Layouts {
		kind, err := tiling.ParseKind(l.Kind)
		if err != nil {
			return wm.Settings{}, &ValidationError{Path: fmt.Sprintf("layouts.%d.kind", i), Err: err}
		}
		layouts[i] = wm.Layout{Symbol: l.Symbol, Kind: kind}
	}

	var borders [3]uint32
	for i, col := range []struct{ path, value string }{
		{"colors.norm_border", c.Colors.NormBorder},
		{"colors.sel_border", c.Colors.SelBorder},
		{"colors.urgent_border", c.Colors.UrgentBorder},
	} {
		v, err := ParseColor(col.value)
		if err != nil {
			return wm.Settings{}, &ValidationError{Path: col.path, Err: err}
		}
		borders[i] = v
	}

	return wm.Settings{
		Tags:            append([]string(nil), c.Tags...),
		Layouts:         layouts,
		MFact:           c.MFact,
		NMaster:         c.NMaster,
		BorderPx:        c.BorderPx,
		Snap:            c.Snap,
		ShowBar:         c.ShowBar,
		TopBar:          c.TopBar,
		BarHeight:       c.BarHeight,
		LockFullscreen:  c.LockFullscreen,
		SwallowFloating: c.SwallowFloating,
		NormBorder:      borders[0],
		SelBorder:       borders[1],
		UrgentBorder:    borders[2],
		Rules:           matcher,
	}, nil
}

// Matcher compiles the rule list.
func (c *Config) Matcher() (*rules.Matcher, error) {
	out := make([]rules.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		mask, err := dispatch.ParseMask(r.Tags, len(c.Tags))
		if err != nil {
			return nil, &ValidationError{Path: fmt.Sprintf("rules.%d.tags", i), Err: err}
		}
		if r.Monitor != nil && *r.Monitor < -1 {
			return nil, &ValidationError{Path: fmt.Sprintf("rules.%d.monitor", i), Err: fmt.Errorf("monitor must be >= -1")}
		}
		out = append(out, rules.Rule{
			Class:     r.Class,
			Instance:  r.Instance,
			Title:     r.Title,
			Tags:      mask,
			Floating:  r.Floating,
			Terminal:  r.Terminal,
			NoSwallow: r.NoSwallow,
			Monitor:   r.Monitor,
		})
	}
	return rules.NewMatcher(out), nil
}

// Table compiles the key and button bindings.
func (c *Config) Table() (*dispatch.Table, error) {
	modkey, err := c.modKey()
	if err != nil {
		return nil, &ValidationError{Path: "modkey", Err: err}
	}
	p := c.Parser()

	keys := make([]dispatch.KeyBinding, 0, len(c.Keys))
	seenKeys := make(map[dispatch.KeyTrigger]int, len(c.Keys))
	for i, k := range c.Keys {
		path := fmt.Sprintf("keys.%d", i)
		trig, err := dispatch.ParseKeyTrigger(k.Key, modkey)
		if err != nil {
			return nil, &ValidationError{Path: path + ".key", Err: err}
		}
		if prev, ok := seenKeys[trig]; ok {
			return nil, &ValidationError{Path: path + ".key", Err: fmt.Errorf("trigger %s duplicates keys.%d", trig, prev)}
		}
		seenKeys[trig] = i

		action, err := c.action(p, path, k.Command, k.Arg, k.Argv)
		if err != nil {
			return nil, err
		}
		keys = append(keys, dispatch.KeyBinding{Trigger: trig, Action: action})
	}

	buttons := make([]dispatch.ButtonBinding, 0, len(c.Buttons))
	seenButtons := make(map[dispatch.ButtonTrigger]int, len(c.Buttons))
	for i, b := range c.Buttons {
		path := fmt.Sprintf("buttons.%d", i)
		region, err := dispatch.ParseRegion(b.Region)
		if err != nil {
			return nil, &ValidationError{Path: path + ".region", Err: err}
		}
		trig, err := dispatch.ParseButtonTrigger(region, b.Button, modkey)
		if err != nil {
			return nil, &ValidationError{Path: path + ".button", Err: err}
		}
		if prev, ok := seenButtons[trig]; ok {
			return nil, &ValidationError{Path: path + ".button", Err: fmt.Errorf("trigger %s duplicates buttons.%d", trig, prev)}
		}
		seenButtons[trig] = i

		action, err := c.action(p, path, b.Command, b.Arg, b.Argv)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, dispatch.ButtonBinding{Trigger: trig, Action: action})
	}

	t, err := dispatch.NewTable(keys, buttons)
	if err != nil {
		return nil, &ValidationError{Path: "keys", Err: err}
	}
	return t, nil
}

// Action parses a command the way bindings are parsed, resolving spawn
// arguments against the named commands.
func (c *Config) Action(cmd, arg string, argv []string) (dispatch.Action, error) {
	return c.action(c.Parser(), "", cmd, arg, argv)
}

func (c *Config) action(p dispatch.Parser, path, cmd, arg string, argv []string) (dispatch.Action, error) {
	wrap := func(field string, err error) error {
		if path == "" {
			return err
		}
		return &ValidationError{Path: path + "." + field, Err: err}
	}

	if strings.EqualFold(strings.TrimSpace(cmd), "spawn") && len(argv) == 0 {
		resolved, err := c.spawnArgv(arg)
		if err != nil {
			return dispatch.Action{}, wrap("arg", err)
		}
		argv, arg = resolved, ""
	}
	action, err := p.Parse(cmd, arg, argv)
	if err != nil {
		return dispatch.Action{}, wrap("command", err)
	}
	return action, nil
}

// spawnArgv resolves a spawn argument: the name of an entry in commands, or
// an inline command line.
func (c *Config) spawnArgv(arg string) ([]string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("spawn needs argv or a command name")
	}
	if tmpl, ok := c.Commands[arg]; ok {
		return splitCommand(tmpl)
	}
	return splitCommand(arg)
}
