package wsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"deskctl/aitools"
	"deskctl/registry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	requestTimeout = 30 * time.Second
	maxMessageSize = 1 << 20

	// maxInFlight bounds concurrent calls per connection
	maxInFlight = 16
)

// Server hosts a registry over WebSocket at /ws. Each connection may have
// many requests in flight; responses are written by a single writer.
type Server struct {
	reg      *registry.Registry
	logger   hclog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a server for reg
func NewServer(reg *registry.Registry, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		reg:    reg,
		logger: logger.Named("wsbridge"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP handler serving /ws
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// Connections inherit ctx so open sessions close on shutdown
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	logger := s.logger.With("remote", r.RemoteAddr)
	logger.Debug("client connected")
	if err := s.serveConn(r.Context(), ws, logger); err != nil {
		logger.Warn("connection closed with error", "error", err)
		return
	}
	logger.Debug("client disconnected")
}

// serveConn runs the read and write pumps for one connection
func (s *Server) serveConn(parent context.Context, ws *websocket.Conn, logger hclog.Logger) error {
	defer ws.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	send := make(chan []byte, 64)
	var inflight sync.WaitGroup

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.readPump(ctx, ws, send, &inflight, logger)
	})
	g.Go(func() error {
		// closing the socket unblocks the reader
		defer ws.Close()
		return writePump(ctx, ws, send)
	})

	err := g.Wait()
	inflight.Wait()
	return err
}

func (s *Server) readPump(ctx context.Context, ws *websocket.Conn, send chan<- []byte, inflight *sync.WaitGroup, logger hclog.Logger) error {
	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	sem := make(chan struct{}, maxInFlight)
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read: %w", err)
			}
			return nil
		}

		req, err := decodeRequest(message)
		if err != nil {
			logger.Debug("invalid request", "error", err)
			s.reply(ctx, send, errorResponse("", fmt.Sprintf("invalid request: %v", err)))
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil
		}
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			defer func() { <-sem }()
			s.reply(ctx, send, s.handle(req))
		}()
	}
}

func (s *Server) handle(req *Request) *Response {
	switch req.Type {
	case TypeList:
		return &Response{ID: req.ID, Type: TypeTools, Tools: s.reg.List()}

	case TypeCall:
		if req.Tool == "" {
			return errorResponse(req.ID, "call request has no tool")
		}
		result, err := s.reg.Call(req.Tool, req.Payload)
		if err != nil {
			return errorResponse(req.ID, err.Error())
		}
		return &Response{ID: req.ID, Type: TypeResult, Result: &result}

	default:
		return errorResponse(req.ID, fmt.Sprintf("unknown request type: %q", req.Type))
	}
}

func (s *Server) reply(ctx context.Context, send chan<- []byte, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		failed := aitools.Failedf("encode result: %v", err)
		data, _ = json.Marshal(&Response{ID: resp.ID, Type: TypeResult, Result: &failed})
	}
	select {
	case send <- data:
	case <-ctx.Done():
	}
}

// writePump is the only goroutine that writes to ws
func writePump(ctx context.Context, ws *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-send:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		case <-ctx.Done():
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		}
	}
}
