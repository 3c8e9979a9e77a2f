package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 5 * time.Second
)

// Client is one feed subscriber. A non-zero quest scopes it to a single
// quest's events, as a detail page wants.
type Client struct {
	hub   *Hub
	conn  *ws.Conn
	send  chan []byte
	quest int64
}

func NewClient(hub *Hub, conn *ws.Conn, quest int64) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, sendBufferSize),
		quest: quest,
	}
}

// wants reports whether the event for quest id belongs on this feed.
func (c *Client) wants(id int64) bool {
	return c.quest == 0 || c.quest == id
}

// Run subscribes until the peer goes away or ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	// The feed is one-way; CloseRead drains control frames and cancels
	// ctx when the peer closes.
	ctx = c.conn.CloseRead(ctx)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, msg); err != nil {
				c.hub.logger.Debug("subscriber write failed", "quest", c.quest, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
