package broadcast

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// sendQueueSize bounds the per-connection outbound queue.  A
	// client that cannot drain this many events is considered dead.
	sendQueueSize = 64
	writeWait     = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Sender is the minimal connection surface the registry writes to.
// *websocket.Conn satisfies it; tests use an in-memory fake.
type Sender interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live station subscription.  Events are queued on a
// bounded channel and drained by a dedicated writer goroutine, so one
// slow display can never block delivery to the others.
type Client struct {
	Station string

	conn      Sender
	send      chan Event
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient wraps an upgraded connection for the given station key.
func NewClient(station string, conn Sender) *Client {
	return &Client{
		Station: station,
		conn:    conn,
		send:    make(chan Event, sendQueueSize),
		done:    make(chan struct{}),
	}
}

// enqueue offers an event without blocking.  It reports false when the
// queue is full, which the registry treats as a dead client.
func (c *Client) enqueue(ev Event) bool {
	select {
	case c.send <- ev:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Send offers an event to this client only, without blocking.  Used
// for per-connection replies such as command errors.
func (c *Client) Send(ev Event) bool { return c.enqueue(ev) }

// Close terminates the client exactly once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Done is closed when the client has been shut down.
func (c *Client) Done() <-chan struct{} { return c.done }

// WritePump drains the outbound queue onto the connection and sends
// periodic pings.  It returns when the client closes or a write fails;
// the caller is responsible for unregistering afterwards.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				log.Printf("broadcast: write to %s client failed: %v", c.Station, err)
				c.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
