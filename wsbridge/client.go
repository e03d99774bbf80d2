package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"deskctl/aitools"
	"deskctl/registry"
)

// Client calls tools on a remote deskctl over WebSocket. It is safe for
// concurrent use.
type Client struct {
	ws   *websocket.Conn
	send chan []byte

	mu      sync.Mutex
	pending map[string]chan *Response // request ID → response channel

	// Lifecycle
	done chan struct{}
	ctx  context.Context
	stop context.CancelFunc
}

// Dial connects to a deskctl WebSocket endpoint such as ws://127.0.0.1:8765/ws
func Dial(ctx context.Context, url string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	cctx, stop := context.WithCancel(context.Background())
	c := &Client{
		ws:      ws,
		send:    make(chan []byte, 64),
		pending: make(map[string]chan *Response),
		done:    make(chan struct{}),
		ctx:     cctx,
		stop:    stop,
	}
	go c.readPump()
	go c.writePump()
	return c, nil
}

// Call executes a tool remotely. Tool failures are in the Result; the error
// covers transport problems and unknown tools.
func (c *Client) Call(ctx context.Context, tool string, payload aitools.Payload) (aitools.Result, error) {
	resp, err := c.roundTrip(ctx, &Request{Type: TypeCall, Tool: tool, Payload: payload})
	if err != nil {
		return aitools.Result{}, err
	}
	if resp.Result == nil {
		return aitools.Result{}, fmt.Errorf("response to call has no result")
	}
	return resp.Result.Normalize(), nil
}

// List returns the remote tool catalog
func (c *Client) List(ctx context.Context) ([]registry.ToolInfo, error) {
	resp, err := c.roundTrip(ctx, &Request{Type: TypeList})
	if err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// Close shuts down the client
func (c *Client) Close() error {
	c.stop()
	return c.ws.Close()
}

func (c *Client) roundTrip(ctx context.Context, req *Request) (*Response, error) {
	req.ID = uuid.NewString()
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	select {
	case c.send <- data:
	case <-c.done:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	timer := time.NewTimer(requestTimeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		if resp.Type == TypeError {
			return nil, fmt.Errorf("remote: %s", resp.Error)
		}
		return resp, nil
	case <-c.done:
		return nil, fmt.Errorf("connection closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("request timed out")
	}
}

func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize * 32)
	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var resp Response
		if err := json.Unmarshal(message, &resp); err != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		c.mu.Unlock()
		if ok {
			ch <- &resp
		}
	}
}

func (c *Client) writePump() {
	for {
		select {
		case message := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				c.ws.Close()
				return
			}
		case <-c.ctx.Done():
			return
		case <-c.done:
			return
		}
	}
}
