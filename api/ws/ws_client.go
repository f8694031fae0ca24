package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/websocket"
	"github.com/zlnvch/stylussphere/service"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024 * 16

	// Rate limiting: 20 messages per second with a burst of 30
	messagesPerSecond = 20
	burstLimit        = 30
)

type MessageHandler func(client *Client, messageType int, messageBytes []byte)

func NewClient(hub *Hub, conn *websocket.Conn, handler MessageHandler) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		id:      uuid.Must(uuid.NewV4()).String(),
		handler: handler,
		Send:    make(chan []byte, 128),
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burstLimit),
	}
}

// Client is a middleman between the websocket connection and the hub.
// A Client starts unauthenticated; binding a principal authenticates it
// and unbinding (logout or session revocation) returns it to the
// unauthenticated state without dropping the connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	id      string
	handler MessageHandler
	Send    chan []byte // Buffered channel of outbound messages.
	limiter *rate.Limiter

	mu        sync.RWMutex
	principal *service.Principal
	closed    bool
}

func (c *Client) Principal() (service.Principal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.principal == nil {
		return service.Principal{}, false
	}
	return *c.principal, true
}

func (c *Client) bindPrincipal(principal service.Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principal = &principal
}

func (c *Client) unbindPrincipal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.principal = nil
}

// revokeSession demotes the client to unauthenticated if it is bound to
// the given session. Called from the hub loop when a logout lands on
// another node.
func (c *Client) revokeSession(sessionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal != nil && c.principal.SessionId == sessionId {
		log.Printf("Session revoked, unbinding connection %s from user %s", c.id, c.principal.Username)
		c.principal = nil
	}
}

// enqueue hands a message to the write pump without blocking. Returns
// false when the buffer is full or the client has been shut down. The
// read lock keeps the send from racing closeSend: only closeSend ever
// closes Send, and it cannot run while an enqueue is in flight.
func (c *Client) enqueue(message []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound channel so the write pump sends a close
// frame and exits. Later enqueues become no-ops; the read pump may
// still be dispatching and must not be able to panic the process.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *Client) sendMessage(message any) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal outbound message: %v", err)
		return
	}
	if !c.enqueue(messageBytes) {
		log.Printf("Dropping message for connection %s", c.id)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.CloseCh <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		messageType, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WS close error: %v", err)
			}
			break
		}

		if !c.limiter.Allow() {
			log.Printf("Closing connection %s: message rate limit exceeded", c.id)
			break
		}

		c.handler(c, messageType, messageBytes)
	}
}

func (c *Client) WritePump(shutdownCtx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WS send error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-shutdownCtx.Done():
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Websocket service shutting down"),
			)
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
