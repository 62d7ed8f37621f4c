package signaling

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP descriptions are the
	// largest frames and stay well under this.
	maxMessageSize = 64 * 1024

	// Outbound queue depth per connection.
	sendQueueSize = 256
)

// Client wraps a single websocket connection to the signaling server. The ID
// is server-assigned and valid only for the connection's lifetime; a
// reconnect is a brand-new client.
type Client struct {
	ID   string
	Name string

	// Room and Role are owned by the Registry and mutated only from the
	// hub's event loop.
	Room string
	Role string

	// Media flags mirrored from the most recent toggle the client
	// broadcast. Display hints only.
	Camera bool
	Mic    bool
	Screen bool

	Hub  *Hub
	Conn *websocket.Conn
	Send chan *Message
}

// NewClient builds a client for an accepted websocket connection. Media flags
// start enabled; the first toggle event overwrites them.
func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		ID:     id,
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan *Message, sendQueueSize),
		Camera: true,
		Mic:    true,
	}
}

// enqueue hands a message to the connection's write pump. Delivery is
// best-effort: a full queue drops the message rather than stalling the hub's
// event loop behind one slow connection.
func (c *Client) enqueue(msg *Message) {
	select {
	case c.Send <- msg:
	default:
		slog.Warn("send queue full, dropping message", "conn", c.ID, "kind", msg.Kind)
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("read error", "conn", c.ID, "err", err)
			}
			break
		}
		c.Hub.Dispatch(c, &msg)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				slog.Warn("write error", "conn", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
