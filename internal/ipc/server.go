package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tagtile/internal/build"
	"github.com/1broseidon/tagtile/internal/runtimepath"
	"github.com/1broseidon/tagtile/internal/wm"
	"github.com/google/uuid"
)

// Handler answers the requests the server cannot serve from a snapshot.
// All methods are called from connection goroutines.
type Handler interface {
	// Snapshot returns the most recently published state.
	Snapshot() wm.Snapshot
	// RunCommand executes a command on the control loop.
	RunCommand(ctx context.Context, p CommandPayload) error
	// Click resolves a bar click through the button table.
	Click(ctx context.Context, p ClickPayload) error
	// Reload re-reads the configuration.
	Reload(ctx context.Context) error
	// Subscribe streams every published snapshot until the returned cancel
	// function is called.
	Subscribe(ctx context.Context) (<-chan wm.Snapshot, func())
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	startTime  time.Time

	mu       sync.Mutex
	listener net.Listener
	conns    sync.WaitGroup
}

// NewServer creates a server on the default socket path.
func NewServer(handler Handler, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		startTime:  time.Now(),
	}
}

func (s *Server) String() string { return "ipc" }

// Serve listens until ctx ends. Open connections are closed with it.
func (s *Server) Serve(ctx context.Context) error {
	// Remove a stale socket left by a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.conns.Wait()
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandSubscribe {
		s.handleSubscribe(ctx, conn, reader)
		return
	}

	s.send(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		snap := s.handler.Snapshot()
		return okResponse(MonitorsData{SelectedMonitor: snap.SelectedMonitor, Monitors: snap.Monitors})
	case CommandGetClients:
		return okResponse(ClientsData{Clients: s.handler.Snapshot().Clients})
	case CommandGetLayouts:
		return s.handleGetLayouts()
	case CommandRunCommand:
		return s.handleRunCommand(ctx, req.Payload)
	case CommandClick:
		return s.handleClick(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("IPC: received RELOAD command")
	if err := s.handler.Reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return okResponse(nil)
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	snap := s.handler.Snapshot()
	return okResponse(StatusData{
		SelectedMonitor: snap.SelectedMonitor,
		Tags:            snap.Tags,
		Monitors:        snap.Monitors,
		Status:          snap.Status,
		UptimeSeconds:   int64(time.Since(s.startTime).Seconds()),
		Version:         build.Current.Version,
	})
}

func (s *Server) handleGetLayouts() *Response {
	snap := s.handler.Snapshot()
	data := LayoutsData{Layouts: snap.Layouts}
	for _, mon := range snap.Monitors {
		data.Active = append(data.Active, mon.LayoutSymbol)
	}
	return okResponse(data)
}

func (s *Server) handleRunCommand(ctx context.Context, payload json.RawMessage) *Response {
	var p CommandPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid command payload: %v", err))
	}
	if p.Command == "" {
		return NewErrorResponse("command is required")
	}
	if err := s.handler.RunCommand(ctx, p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(nil)
}

func (s *Server) handleClick(ctx context.Context, payload json.RawMessage) *Response {
	var p ClickPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid click payload: %v", err))
	}
	if err := s.handler.Click(ctx, p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return okResponse(nil)
}

// handleSubscribe answers with a subscription id, then writes one snapshot
// per line until the client goes away or the server stops.
func (s *Server) handleSubscribe(ctx context.Context, conn net.Conn, reader *bufio.Reader) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := uuid.NewString()
	updates, unsubscribe := s.handler.Subscribe(ctx)
	defer unsubscribe()

	if !s.send(conn, okResponse(SubscribeData{ID: id})) {
		return
	}
	s.logger.Debug("IPC subscriber attached", "id", id)
	defer s.logger.Debug("IPC subscriber detached", "id", id)

	// A subscriber never sends more requests; EOF means it left.
	go func() {
		io.Copy(io.Discard, reader)
		cancel()
	}()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(s.handler.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			if err := enc.Encode(snap); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send response", "error", err)
		return false
	}
	return true
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}
