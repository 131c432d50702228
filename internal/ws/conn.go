package ws

import (
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Socket is the write side of a live websocket connection. *websocket.Conn
// satisfies it; tests substitute their own.
type Socket interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn serializes writes to one websocket connection. The underlying
// connection supports a single concurrent writer, but error replies from the
// read loop and match broadcasts arrive from different goroutines.
type Conn struct {
	mu   sync.Mutex
	sock Socket
}

func NewConn(sock Socket) *Conn {
	return &Conn{sock: sock}
}

// Send writes one message, holding the write lock for the duration.
func (c *Conn) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteJSON(msg)
}

// SendClose writes a normal-closure control frame carrying the reason.
func (c *Conn) SendClose(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	)
}

func (c *Conn) Close() error {
	return c.sock.Close()
}
