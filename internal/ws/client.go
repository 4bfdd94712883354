package ws

import (
	"sync"

	"golang.org/x/net/websocket"
)

// Client is one subscriber connection. Its outbound channel is closed exactly
// once, by shutdown; publishes racing a disconnect are dropped instead of
// reaching a closed channel.
type Client struct {
	conn *websocket.Conn

	mu       sync.Mutex
	out      chan []byte
	closed   bool
	channels map[string]struct{}
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:     conn,
		out:      make(chan []byte, 64),
		channels: map[string]struct{}{},
	}
}

// send queues a transition payload. A subscriber that cannot keep up with the
// stream is cut off rather than allowed to block the publisher.
func (c *Client) send(payload []byte) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	select {
	case c.out <- payload:
		c.mu.Unlock()
		return
	default:
	}
	c.closed = true
	close(c.out)
	c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// shutdown ends the outbound stream. Safe to call more than once and
// concurrently with send.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *Client) addChannel(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[channel] = struct{}{}
}

func (c *Client) listChannels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.channels))
	for ch := range c.channels {
		out = append(out, ch)
	}
	return out
}
