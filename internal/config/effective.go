package config

import (
	"fmt"
	"sort"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig. The result is not
// validated.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.ModKey != nil {
		cfg.ModKey = *raw.ModKey
	}
	if raw.Tags != nil {
		cfg.Tags = append([]string(nil), raw.Tags...)
	}
	if raw.BorderPx != nil {
		cfg.BorderPx = *raw.BorderPx
	}
	if raw.Snap != nil {
		cfg.Snap = *raw.Snap
	}
	if raw.ShowBar != nil {
		cfg.ShowBar = *raw.ShowBar
	}
	if raw.TopBar != nil {
		cfg.TopBar = *raw.TopBar
	}
	if raw.BarHeight != nil {
		cfg.BarHeight = *raw.BarHeight
	}
	if raw.MFact != nil {
		cfg.MFact = *raw.MFact
	}
	if raw.NMaster != nil {
		cfg.NMaster = *raw.NMaster
	}
	if raw.LockFullscreen != nil {
		cfg.LockFullscreen = *raw.LockFullscreen
	}
	if raw.SwallowFloating != nil {
		cfg.SwallowFloating = *raw.SwallowFloating
	}

	if raw.Colors != nil {
		if raw.Colors.NormBorder != nil {
			cfg.Colors.NormBorder = *raw.Colors.NormBorder
		}
		if raw.Colors.SelBorder != nil {
			cfg.Colors.SelBorder = *raw.Colors.SelBorder
		}
		if raw.Colors.UrgentBorder != nil {
			cfg.Colors.UrgentBorder = *raw.Colors.UrgentBorder
		}
	}

	if raw.Layouts != nil {
		cfg.Layouts = append([]LayoutSpec(nil), raw.Layouts...)
	}
	if raw.Rules != nil {
		cfg.Rules = append([]RuleSpec(nil), raw.Rules...)
	}
	// Named commands extend the defaults so custom keys can still use them.
	cfg.Commands = mergeStringMap(cfg.Commands, raw.Commands)
	if raw.Keys != nil {
		cfg.Keys = append([]KeySpec(nil), raw.Keys...)
	}
	if raw.Buttons != nil {
		cfg.Buttons = append([]ButtonSpec(nil), raw.Buttons...)
	}

	if raw.Status != nil {
		if raw.Status.Enabled != nil {
			cfg.Status.Enabled = *raw.Status.Enabled
		}
		if raw.Status.Interval != nil {
			cfg.Status.Interval = *raw.Status.Interval
		}
		if raw.Status.Unknown != nil {
			cfg.Status.Unknown = *raw.Status.Unknown
		}
		if raw.Status.Components != nil {
			cfg.Status.Components = raw.Status.Components
		}
	}

	return cfg
}

func mergeStringMap(base map[string]string, overlay map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
