package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// MonitorInfo describes one monitor in get_status output.
type MonitorInfo struct {
	Index        int      `json:"index"`
	Name         string   `json:"name"`
	Selected     bool     `json:"selected"`
	ViewedTags   []string `json:"viewed_tags"`
	OccupiedTags []string `json:"occupied_tags"`
	UrgentTags   []string `json:"urgent_tags,omitempty"`
	Layout       string   `json:"layout"`
	MFact        float64  `json:"mfact"`
	NMaster      int      `json:"nmaster"`
	FocusedTitle string   `json:"focused_title,omitempty"`
	ClientCount  int      `json:"client_count"`
}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Tags            []string      `json:"tags"`
	SelectedMonitor int           `json:"selected_monitor"`
	Monitors        []MonitorInfo `json:"monitors"`
	Status          string        `json:"status"`
	Version         string        `json:"version"`
	UptimeSeconds   int64         `json:"uptime_seconds"`
}

// ListClientsInput is the input for the list_clients tool.
type ListClientsInput struct {
	Monitor     *int   `json:"monitor,omitempty" jsonschema:"Only list clients on this monitor index"`
	Tag         string `json:"tag,omitempty" jsonschema:"Only list clients carrying this tag name"`
	VisibleOnly bool   `json:"visible_only,omitempty" jsonschema:"Only list clients on a viewed tag"`
}

// ClientInfo describes one managed window.
type ClientInfo struct {
	ID         int      `json:"id"`
	Window     string   `json:"window"`
	Monitor    int      `json:"monitor"`
	Title      string   `json:"title"`
	Class      string   `json:"class"`
	Instance   string   `json:"instance"`
	Tags       []string `json:"tags"`
	Floating   bool     `json:"floating"`
	Fullscreen bool     `json:"fullscreen"`
	Urgent     bool     `json:"urgent"`
	Visible    bool     `json:"visible"`
}

// ListClientsOutput is the output for the list_clients tool.
type ListClientsOutput struct {
	Clients []ClientInfo `json:"clients"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string   `json:"command" jsonschema:"Command name, e.g. view, tag, setlayout, focusstack, spawn, killclient"`
	Arg     string   `json:"arg,omitempty" jsonschema:"Argument in key binding syntax, e.g. 2, all, +1, -0.05, monocle, or a named command for spawn"`
	Argv    []string `json:"argv,omitempty" jsonschema:"Explicit argument vector for spawn"`
}

// RunCommandOutput is the output for the run_command tool.
type RunCommandOutput struct {
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
}
