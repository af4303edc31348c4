package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/wm"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTagBar(t *testing.T) {
	tags := []string{"1", "2", "3", "4"}
	m := wm.MonitorState{SelectedTags: 0b0001, OccupiedTags: 0b0111, UrgentTags: 0b0100}
	if got, want := tagBar(tags, m), "[1] 2* 3! 4"; got != want {
		t.Fatalf("tagBar=%q, want %q", got, want)
	}
}

func TestClientFlags(t *testing.T) {
	c := wm.ClientState{Visible: true, Fullscreen: true, Swallowing: 3}
	if got, want := clientFlags(c), "v-F--s"; got != want {
		t.Fatalf("clientFlags=%q, want %q", got, want)
	}
}

func TestWatchFiles(t *testing.T) {
	got := watchFiles("/cfg/config.yaml", []string{"/cfg/config.yaml", "/cfg/keys.yaml", "/cfg/keys.yaml"})
	want := []string{"/cfg/config.yaml", "/cfg/keys.yaml"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("watchFiles (-want +got):\n%s", diff)
	}

	// A missing file is still watched so that creating it reloads.
	if diff := cmp.Diff([]string{"/cfg/config.yaml"}, watchFiles("/cfg/config.yaml", nil)); diff != "" {
		t.Fatalf("watchFiles (-want +got):\n%s", diff)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v)=%q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestRunConfigValidate(t *testing.T) {
	good := writeConfig(t, "mfact: 0.6\n")
	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate rc=%d, want 0", rc)
	}

	bad := writeConfig(t, "mfact: 2\n")
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate rc=%d, want 1", rc)
	}

	if rc := runConfig([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestRunConfigExplainRequiresPath(t *testing.T) {
	if rc := runConfig([]string{"explain"}); rc != 2 {
		t.Fatalf("explain rc=%d, want 2", rc)
	}
}
