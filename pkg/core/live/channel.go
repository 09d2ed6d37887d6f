package live

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Channel is the transport under a Session: an ordered, bidirectional
// stream of frames. Implementations must allow one concurrent sender
// and one concurrent receiver.
type Channel interface {
	// Send writes one frame. It must not be called after Close.
	Send(ctx context.Context, frame []byte) error

	// Receive blocks for the next frame.
	Receive(ctx context.Context) ([]byte, error)

	// Close tears down the transport. Safe to call more than once.
	Close() error
}

// wsChannel is a Channel over a gorilla websocket connection.
type wsChannel struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
}

// Dial opens a websocket Channel to the given endpoint.
func Dial(ctx context.Context, url string, header http.Header) (Channel, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &wsChannel{conn: conn}, nil
}

func (c *wsChannel) Send(ctx context.Context, frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *wsChannel) Receive(ctx context.Context) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetReadDeadline(deadline)
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *wsChannel) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.conn.Close()
}
