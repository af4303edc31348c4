// Package mcp exposes the running window manager to MCP clients over stdio.
// Every tool is a thin wrapper around an IPC request to the daemon.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/build"
	"github.com/1broseidon/tagtile/internal/ipc"
)

const ServerName = "tagtile"

// Daemon is the part of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetClients() (*ipc.ClientsData, error)
	RunCommand(p ipc.CommandPayload) error
}

// Server is the MCP server for tagtile.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server whose tools talk to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{daemon: daemon, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: build.Current.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session on t.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Get the window manager state: tag names, the viewed and occupied tags, layout and focused window of every monitor, and the status text.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_clients",
		Description: "List managed windows with their tags, monitor and floating, fullscreen, urgent and visible state. Optionally filter by monitor, tag name or visibility.",
	}, s.handleListClients)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Run a window manager command the way a key binding would, e.g. view 2, tag 3, setlayout monocle, focusstack +1, togglefloating, spawn term.",
	}, s.handleRunCommand)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}

	out := GetStatusOutput{
		Tags:            nonNil(st.Tags),
		SelectedMonitor: st.SelectedMonitor,
		Monitors:        make([]MonitorInfo, 0, len(st.Monitors)),
		Status:          st.Status,
		Version:         st.Version,
		UptimeSeconds:   st.UptimeSeconds,
	}
	for _, mon := range st.Monitors {
		out.Monitors = append(out.Monitors, MonitorInfo{
			Index:        mon.Index,
			Name:         mon.Name,
			Selected:     mon.Index == st.SelectedMonitor,
			ViewedTags:   tagNames(st.Tags, mon.SelectedTags),
			OccupiedTags: tagNames(st.Tags, mon.OccupiedTags),
			UrgentTags:   optional(tagNames(st.Tags, mon.UrgentTags)),
			Layout:       mon.LayoutSymbol,
			MFact:        mon.MFact,
			NMaster:      mon.NMaster,
			FocusedTitle: mon.SelectedTitle,
			ClientCount:  len(mon.Clients),
		})
	}
	return nil, out, nil
}

func (s *Server) handleListClients(_ context.Context, _ *mcpsdk.CallToolRequest, args ListClientsInput) (*mcpsdk.CallToolResult, ListClientsOutput, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ListClientsOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}
	data, err := s.daemon.GetClients()
	if err != nil {
		return nil, ListClientsOutput{}, fmt.Errorf("daemon not reachable: %w", err)
	}

	var tagMask uint32
	if args.Tag != "" {
		idx := slices.Index(st.Tags, args.Tag)
		if idx < 0 || idx >= 32 {
			return nil, ListClientsOutput{}, fmt.Errorf("unknown tag %q; available: %v", args.Tag, st.Tags)
		}
		tagMask = 1 << uint(idx)
	}
	return nil, filterClients(data, args, tagMask, st.Tags), nil
}

func filterClients(data *ipc.ClientsData, args ListClientsInput, tagMask uint32, tags []string) ListClientsOutput {
	out := ListClientsOutput{Clients: make([]ClientInfo, 0, len(data.Clients))}
	for _, c := range data.Clients {
		if args.Monitor != nil && c.Monitor != *args.Monitor {
			continue
		}
		if tagMask != 0 && c.Tags&tagMask == 0 {
			continue
		}
		if args.VisibleOnly && !c.Visible {
			continue
		}
		out.Clients = append(out.Clients, ClientInfo{
			ID:         int(c.ID),
			Window:     fmt.Sprintf("%#x", uint32(c.Window)),
			Monitor:    c.Monitor,
			Title:      c.Title,
			Class:      c.Class,
			Instance:   c.Instance,
			Tags:       tagNames(tags, c.Tags),
			Floating:   c.Floating,
			Fullscreen: c.Fullscreen,
			Urgent:     c.Urgent,
			Visible:    c.Visible,
		})
	}
	return out
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, RunCommandOutput, error) {
	if args.Command == "" {
		return nil, RunCommandOutput{}, fmt.Errorf("command is required")
	}
	err := s.daemon.RunCommand(ipc.CommandPayload{Command: args.Command, Arg: args.Arg, Argv: args.Argv})
	if err != nil {
		s.logger.Debug("run_command failed", "command", args.Command, "arg", args.Arg, "error", err)
		return nil, RunCommandOutput{}, err
	}
	s.logger.Debug("run_command", "command", args.Command, "arg", args.Arg)

	text := args.Command
	if args.Arg != "" {
		text += " " + args.Arg
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Executed %s", text)},
		},
	}, RunCommandOutput{Command: args.Command, Arg: args.Arg}, nil
}

// tagNames lists the names of the tags set in mask.
func tagNames(tags []string, mask uint32) []string {
	names := []string{}
	for i, name := range tags {
		if i < 32 && mask&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func optional(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
