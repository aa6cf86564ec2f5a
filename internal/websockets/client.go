package websockets

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vendfleet/dashboard/internal/screen"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024

	sendBuffer = 16
)

type MessageType string

const (
	TypeMachines MessageType = "machines"
	TypeError    MessageType = "error"
	TypePing     MessageType = "ping"
	TypePong     MessageType = "pong"
)

type Message struct {
	Type  MessageType     `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Feed is the data pushed to one live view
type Feed struct {
	Type     MessageType
	Interval time.Duration
	Fetch    screen.FetchFunc[any]
	// Message turns a fetch error into the line shown to the user
	Message func(error) string
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	sessionID string
	poller    *screen.Poller

	// mu guards closed; send is only written or closed while holding it
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}
}

// start binds the feed's poller to the connection
func (c *Client) start(feed Feed) {
	c.poller = screen.StartPoller(c.hub.ctx, feed.Interval, feed.Fetch, func(v any, err error) {
		msg := Message{Type: feed.Type}
		if err != nil {
			msg.Type = TypeError
			msg.Error = feed.Message(err)
		} else {
			data, mErr := json.Marshal(v)
			if mErr != nil {
				log.Printf("Error marshaling %s feed: %v", feed.Type, mErr)
				return
			}
			msg.Data = data
		}
		c.push(msg)
	})
}

// stop ends polling; the feed sends nothing afterwards
func (c *Client) stop() {
	if c.poller != nil {
		c.poller.Stop()
	}
}

// push queues a message, dropping it when the client is too slow
func (c *Client) push(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		log.Printf("Dropping %s message for slow client %s", msg.Type, c.sessionID)
	}
}

// closeSend closes the send channel once; later pushes are dropped
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.stop()
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}

		var wsMessage Message
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		if wsMessage.Type == TypePing {
			c.push(Message{Type: TypePong})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs registers the connection and starts pushing the feed to it
func ServeWs(hub *Hub, conn *websocket.Conn, sessionID string, feed Feed) {
	client := NewClient(hub, conn, sessionID)
	client.start(feed)
	if !hub.add(client) {
		client.stop()
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
