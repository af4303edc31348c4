package config

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Diff returns a human-readable report of what changed between two
// configurations, or "" when they are equal.
func Diff(previous, current *Config) string {
	return cmp.Diff(previous, current, cmpopts.EquateEmpty())
}
