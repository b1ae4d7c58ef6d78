package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Limits bounds one stream connection.
type Limits struct {
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration // must be shorter than PongWait
	MaxMessageSize int64
	SendBuffer     int
}

// DefaultLimits suits browser clients. The read limit is small since the
// stream never expects payloads from the peer.
func DefaultLimits() Limits {
	return Limits{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 512,
		SendBuffer:     256,
	}
}

// Client is one subscriber connection registered with the hub.
type Client struct {
	Hub *Hub

	// Username whose activity this client follows, or AllTopics.
	Topic string

	Conn *websocket.Conn

	// Outbound events. Closed by the hub.
	Send chan []byte

	limits Limits
}

func NewClient(hub *Hub, topic string, conn *websocket.Conn) *Client {
	return NewClientWithLimits(hub, topic, conn, DefaultLimits())
}

func NewClientWithLimits(hub *Hub, topic string, conn *websocket.Conn, limits Limits) *Client {
	if limits.PingPeriod <= 0 || limits.PingPeriod >= limits.PongWait {
		limits.PingPeriod = limits.PongWait * 9 / 10
	}
	return &Client{
		Hub:    hub,
		Topic:  topic,
		Conn:   conn,
		Send:   make(chan []byte, limits.SendBuffer),
		limits: limits,
	}
}

// ReadPump drains the connection so pongs and close frames are handled.
// Incoming messages are ignored; the stream is one way.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.quit:
		}
		c.Conn.Close()
	}()
	pongWait := c.limits.PongWait
	c.Conn.SetReadLimit(c.limits.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("topic", c.Topic).Msg("WebSocket read error")
			}
			return
		}
	}
}

// WritePump writes each event as its own text frame and keeps the
// connection alive with pings until the hub closes Send.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.limits.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.limits.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug().Err(err).Str("topic", c.Topic).Msg("WebSocket write error")
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.limits.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
