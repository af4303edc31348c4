package config

import (
	"fmt"
	"time"

	"github.com/1broseidon/tagtile/internal/status"
	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColors struct {
	NormBorder   *string `yaml:"norm_border"`
	SelBorder    *string `yaml:"sel_border"`
	UrgentBorder *string `yaml:"urgent_border"`
}

type RawStatus struct {
	Enabled    *bool              `yaml:"enabled"`
	Interval   *time.Duration     `yaml:"interval"`
	Unknown    *string            `yaml:"unknown"`
	Components []status.Component `yaml:"components"`
}

// RawConfig is one file as written. Nil fields were not set; lists replace
// the lists of earlier files wholesale.
type RawConfig struct {
	Include  IncludeList `yaml:"include"`
	LogLevel *string     `yaml:"log_level"`
	ModKey   *string     `yaml:"modkey"`

	Tags []string `yaml:"tags"`

	BorderPx  *int  `yaml:"borderpx"`
	Snap      *int  `yaml:"snap"`
	ShowBar   *bool `yaml:"show_bar"`
	TopBar    *bool `yaml:"top_bar"`
	BarHeight *int  `yaml:"bar_height"`

	MFact   *float64 `yaml:"mfact"`
	NMaster *int     `yaml:"nmaster"`

	LockFullscreen  *bool `yaml:"lock_fullscreen"`
	SwallowFloating *bool `yaml:"swallow_floating"`

	Colors  *RawColors   `yaml:"colors"`
	Layouts []LayoutSpec `yaml:"layouts"`
	Rules   []RuleSpec   `yaml:"rules"`

	Commands map[string]string `yaml:"commands"`
	Keys     []KeySpec         `yaml:"keys"`
	Buttons  []ButtonSpec      `yaml:"buttons"`

	Status *RawStatus `yaml:"status"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.ModKey != nil {
		out.ModKey = overlay.ModKey
	}
	if overlay.Tags != nil {
		out.Tags = overlay.Tags
	}
	if overlay.BorderPx != nil {
		out.BorderPx = overlay.BorderPx
	}
	if overlay.Snap != nil {
		out.Snap = overlay.Snap
	}
	if overlay.ShowBar != nil {
		out.ShowBar = overlay.ShowBar
	}
	if overlay.TopBar != nil {
		out.TopBar = overlay.TopBar
	}
	if overlay.BarHeight != nil {
		out.BarHeight = overlay.BarHeight
	}
	if overlay.MFact != nil {
		out.MFact = overlay.MFact
	}
	if overlay.NMaster != nil {
		out.NMaster = overlay.NMaster
	}
	if overlay.LockFullscreen != nil {
		out.LockFullscreen = overlay.LockFullscreen
	}
	if overlay.SwallowFloating != nil {
		out.SwallowFloating = overlay.SwallowFloating
	}
	if overlay.Colors != nil {
		merged := RawColors{}
		if out.Colors != nil {
			merged = *out.Colors
		}
		merged = mergeRawColors(merged, *overlay.Colors)
		out.Colors = &merged
	}
	if overlay.Layouts != nil {
		out.Layouts = overlay.Layouts
	}
	if overlay.Rules != nil {
		out.Rules = overlay.Rules
	}
	if overlay.Commands != nil {
		commands := make(map[string]string, len(out.Commands)+len(overlay.Commands))
		for name, cmd := range out.Commands {
			commands[name] = cmd
		}
		for name, cmd := range overlay.Commands {
			commands[name] = cmd
		}
		out.Commands = commands
	}
	if overlay.Keys != nil {
		out.Keys = overlay.Keys
	}
	if overlay.Buttons != nil {
		out.Buttons = overlay.Buttons
	}
	if overlay.Status != nil {
		merged := RawStatus{}
		if out.Status != nil {
			merged = *out.Status
		}
		merged = mergeRawStatus(merged, *overlay.Status)
		out.Status = &merged
	}
	return out
}

func mergeRawColors(base RawColors, overlay RawColors) RawColors {
	out := base
	if overlay.NormBorder != nil {
		out.NormBorder = overlay.NormBorder
	}
	if overlay.SelBorder != nil {
		out.SelBorder = overlay.SelBorder
	}
	if overlay.UrgentBorder != nil {
		out.UrgentBorder = overlay.UrgentBorder
	}
	return out
}

func mergeRawStatus(base RawStatus, overlay RawStatus) RawStatus {
	out := base
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Interval != nil {
		out.Interval = overlay.Interval
	}
	if overlay.Unknown != nil {
		out.Unknown = overlay.Unknown
	}
	if overlay.Components != nil {
		out.Components = overlay.Components
	}
	return out
}
