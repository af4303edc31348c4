package config

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/tagtile/internal/dispatch"
	"github.com/1broseidon/tagtile/internal/status"
	"github.com/1broseidon/tagtile/internal/tiling"
)

// Config is the effective configuration: defaults with every loaded file
// merged over them.
type Config struct {
	LogLevel string `yaml:"log_level"`
	ModKey   string `yaml:"modkey"`

	Tags []string `yaml:"tags"`

	BorderPx  int  `yaml:"borderpx"`
	Snap      int  `yaml:"snap"`
	ShowBar   bool `yaml:"show_bar"`
	TopBar    bool `yaml:"top_bar"`
	BarHeight int  `yaml:"bar_height"`

	MFact   float64 `yaml:"mfact"`
	NMaster int     `yaml:"nmaster"`

	LockFullscreen  bool `yaml:"lock_fullscreen"`
	SwallowFloating bool `yaml:"swallow_floating"`

	Colors  Colors       `yaml:"colors"`
	Layouts []LayoutSpec `yaml:"layouts"`
	Rules   []RuleSpec   `yaml:"rules"`

	// Commands names argv templates that spawn bindings can refer to.
	Commands map[string]string `yaml:"commands"`
	Keys     []KeySpec         `yaml:"keys"`
	Buttons  []ButtonSpec      `yaml:"buttons"`

	Status StatusConfig `yaml:"status"`
}

// Colors holds window border colors as "#rrggbb".
type Colors struct {
	NormBorder   string `yaml:"norm_border"`
	SelBorder    string `yaml:"sel_border"`
	UrgentBorder string `yaml:"urgent_border"`
}

// LayoutSpec is one layout palette entry.
type LayoutSpec struct {
	Symbol string `yaml:"symbol"`
	Kind   string `yaml:"kind"`
}

// RuleSpec is a window rule as written in YAML. Tags uses the mask syntax
// of dispatch.ParseMask ("9", "1,3", "0x100").
type RuleSpec struct {
	Class     string `yaml:"class,omitempty"`
	Instance  string `yaml:"instance,omitempty"`
	Title     string `yaml:"title,omitempty"`
	Tags      string `yaml:"tags,omitempty"`
	Floating  *bool  `yaml:"floating,omitempty"`
	Terminal  *bool  `yaml:"terminal,omitempty"`
	NoSwallow *bool  `yaml:"noswallow,omitempty"`
	Monitor   *int   `yaml:"monitor,omitempty"`
}

// KeySpec binds a key chord such as "MODKEY-Shift-Return".
type KeySpec struct {
	Key     string   `yaml:"key"`
	Command string   `yaml:"command"`
	Arg     string   `yaml:"arg,omitempty"`
	Argv    []string `yaml:"argv,omitempty"`
}

// ButtonSpec binds a pointer button in a click region.
type ButtonSpec struct {
	Region  string   `yaml:"region"`
	Button  string   `yaml:"button"`
	Command string   `yaml:"command"`
	Arg     string   `yaml:"arg,omitempty"`
	Argv    []string `yaml:"argv,omitempty"`
}

// StatusConfig configures the built-in status generator. When disabled the
// root window name is used as status text.
type StatusConfig struct {
	Enabled    bool               `yaml:"enabled"`
	Interval   time.Duration      `yaml:"interval"`
	Unknown    string             `yaml:"unknown"`
	Components []status.Component `yaml:"components"`
}

var stringVerb = regexp.MustCompile(`%[-+# 0-9.]*s`)

// Validate checks every field and that the bindings and rules compile.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if _, err := c.modKey(); err != nil {
		return &ValidationError{Path: "modkey", Err: err}
	}
	if len(c.Tags) == 0 || len(c.Tags) > 31 {
		return &ValidationError{Path: "tags", Err: fmt.Errorf("tags must list 1 to 31 names, got %d", len(c.Tags))}
	}
	for i, name := range c.Tags {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("tags.%d", i), Err: fmt.Errorf("tag name must not be empty")}
		}
	}
	if c.BorderPx < 0 {
		return &ValidationError{Path: "borderpx", Err: fmt.Errorf("borderpx must be >= 0")}
	}
	if c.Snap < 0 {
		return &ValidationError{Path: "snap", Err: fmt.Errorf("snap must be >= 0")}
	}
	if c.BarHeight < 0 {
		return &ValidationError{Path: "bar_height", Err: fmt.Errorf("bar_height must be >= 0")}
	}
	if c.MFact < tiling.MinMFact || c.MFact > tiling.MaxMFact {
		return &ValidationError{Path: "mfact", Err: fmt.Errorf("mfact must be within [%.2f, %.2f]", tiling.MinMFact, tiling.MaxMFact)}
	}
	if c.NMaster < 0 {
		return &ValidationError{Path: "nmaster", Err: fmt.Errorf("nmaster must be >= 0")}
	}

	for _, col := range []struct{ path, value string }{
		{"colors.norm_border", c.Colors.NormBorder},
		{"colors.sel_border", c.Colors.SelBorder},
		{"colors.urgent_border", c.Colors.UrgentBorder},
	} {
		if _, err := ParseColor(col.value); err != nil {
			return &ValidationError{Path: col.path, Err: err}
		}
	}

	if len(c.Layouts) == 0 {
		return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts must not be empty")}
	}
	symbols := make(map[string]int, len(c.Layouts))
	for i, l := range c.Layouts {
		if _, err := tiling.ParseKind(l.Kind); err != nil {
			return &ValidationError{Path: fmt.Sprintf("layouts.%d.kind", i), Err: err}
		}
		if prev, ok := symbols[l.Symbol]; ok {
			return &ValidationError{Path: fmt.Sprintf("layouts.%d.symbol", i), Err: fmt.Errorf("symbol %q duplicates layouts.%d", l.Symbol, prev)}
		}
		symbols[l.Symbol] = i
	}

	for _, name := range sortedKeys(c.Commands) {
		argv, err := splitCommand(c.Commands[name])
		if err != nil {
			return &ValidationError{Path: "commands." + name, Err: err}
		}
		if len(argv) == 0 {
			return &ValidationError{Path: "commands." + name, Err: fmt.Errorf("command must not be empty")}
		}
	}

	if _, err := c.Matcher(); err != nil {
		return err
	}
	if _, err := c.Table(); err != nil {
		return err
	}

	if c.Status.Interval <= 0 {
		return &ValidationError{Path: "status.interval", Err: fmt.Errorf("interval must be > 0")}
	}
	for i, comp := range c.Status.Components {
		if !status.Known(comp.Func) {
			return &ValidationError{
				Path: fmt.Sprintf("status.components.%d.func", i),
				Err:  fmt.Errorf("unknown function %q (known: %s)", comp.Func, strings.Join(status.Names(), ", ")),
			}
		}
		if !stringVerb.MatchString(comp.Format) {
			return &ValidationError{Path: fmt.Sprintf("status.components.%d.format", i), Err: fmt.Errorf("format must contain a %%s verb")}
		}
	}
	return nil
}

// SlogLevel maps log_level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// LayoutNames returns the palette kinds in order; setlayout arguments
// resolve against them.
func (c *Config) LayoutNames() []string {
	names := make([]string, len(c.Layouts))
	for i, l := range c.Layouts {
		if kind, err := tiling.ParseKind(l.Kind); err == nil {
			names[i] = kind.String()
			continue
		}
		names[i] = strings.ToLower(strings.TrimSpace(l.Kind))
	}
	return names
}

// Parser returns the argument parser for this configuration's tags and
// layouts.
func (c *Config) Parser() dispatch.Parser {
	return dispatch.Parser{NumTags: len(c.Tags), Layouts: c.LayoutNames()}
}

func (c *Config) modKey() (dispatch.Modifiers, error) {
	if strings.TrimSpace(c.ModKey) == "" {
		return 0, fmt.Errorf("modkey is required")
	}
	return dispatch.ParseModifier(c.ModKey)
}

// ParseColor parses "#rrggbb" into a 0xRRGGBB pixel value.
func ParseColor(s string) (uint32, error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("color %q must have the form #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must have the form #rrggbb", s)
	}
	return uint32(v), nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Tags = slices.Clone(c.Tags)
	out.Layouts = slices.Clone(c.Layouts)
	out.Rules = make([]RuleSpec, len(c.Rules))
	for i, r := range c.Rules {
		out.Rules[i] = r
		if r.Floating != nil {
			out.Rules[i].Floating = boolPtr(*r.Floating)
		}
		if r.Terminal != nil {
			out.Rules[i].Terminal = boolPtr(*r.Terminal)
		}
		if r.NoSwallow != nil {
			out.Rules[i].NoSwallow = boolPtr(*r.NoSwallow)
		}
		if r.Monitor != nil {
			out.Rules[i].Monitor = intPtr(*r.Monitor)
		}
	}
	if c.Commands != nil {
		out.Commands = make(map[string]string, len(c.Commands))
		for k, v := range c.Commands {
			out.Commands[k] = v
		}
	}
	out.Keys = make([]KeySpec, len(c.Keys))
	for i, k := range c.Keys {
		k.Argv = slices.Clone(k.Argv)
		out.Keys[i] = k
	}
	out.Buttons = make([]ButtonSpec, len(c.Buttons))
	for i, b := range c.Buttons {
		b.Argv = slices.Clone(b.Argv)
		out.Buttons[i] = b
	}
	out.Status.Components = slices.Clone(c.Status.Components)
	return &out
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }
