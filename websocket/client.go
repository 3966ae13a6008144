package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"zonetrack/models"
	"zonetrack/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for client send channel
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// In production, implement proper origin checking
		return true
	},
}

// Client is one WebSocket connection. An empty subscription set means the
// client receives every zone event; otherwise events are filtered to the
// subscribed device and zone ids.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	connectionID string
	userID       string
	connectedAt  time.Time
	lastActivity time.Time

	send chan Message

	subMutex    sync.RWMutex
	deviceIDs   map[string]bool
	zoneIDs     map[string]bool

	pingFailCount int

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(conn *websocket.Conn, hub *Hub, userID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		conn:         conn,
		hub:          hub,
		connectionID: utils.GenerateUUID(),
		userID:       userID,
		connectedAt:  time.Now(),
		lastActivity: time.Now(),
		send:         make(chan Message, sendBufferSize),
		deviceIDs:    make(map[string]bool),
		zoneIDs:      make(map[string]bool),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// ServeWS upgrades the request, registers the client with the hub, and
// starts both pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) (*Client, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	client := NewClient(conn, hub, userID)
	hub.register <- client

	client.Send(Message{
		Type: MessageTypeWelcome,
		Data: WelcomeData{
			ConnectionID: client.connectionID,
			ServerTime:   time.Now(),
		},
		Timestamp: time.Now(),
	})

	go client.WritePump()
	go client.ReadPump()

	return client, nil
}

func (c *Client) ReadPump() {
	defer func() {
		c.close()
		c.hub.unregister <- c
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.pingFailCount = 0
		return nil
	})

	for {
		_, messageData, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("WebSocket error on %s: %v", c.connectionID, err)
			}
			return
		}

		c.lastActivity = time.Now()
		c.handleRequest(messageData)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logrus.Errorf("Write error on %s: %v", c.connectionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.pingFailCount++
				if c.pingFailCount > 3 {
					logrus.Warnf("Ping failed on %s, disconnecting", c.connectionID)
					return
				}
			}
		}
	}
}

func (c *Client) handleRequest(messageData []byte) {
	var request Request
	if err := json.Unmarshal(messageData, &request); err != nil {
		c.sendError("INVALID_MESSAGE", "Invalid message format")
		return
	}

	switch request.Type {
	case RequestTypeSubscribe:
		c.subscribe(request.DeviceIDs, request.ZoneIDs)
	case RequestTypeUnsubscribe:
		c.unsubscribe(request.DeviceIDs, request.ZoneIDs)
	case RequestTypePing:
		c.Send(Message{Type: MessageTypePong, Timestamp: time.Now()})
	default:
		c.sendError("INVALID_MESSAGE", "Unknown message type")
	}
}

func (c *Client) subscribe(deviceIDs, zoneIDs []string) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()

	for _, id := range deviceIDs {
		c.deviceIDs[id] = true
	}
	for _, id := range zoneIDs {
		c.zoneIDs[id] = true
	}
}

func (c *Client) unsubscribe(deviceIDs, zoneIDs []string) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()

	for _, id := range deviceIDs {
		delete(c.deviceIDs, id)
	}
	for _, id := range zoneIDs {
		delete(c.zoneIDs, id)
	}
}

// wantsEvent applies the client's subscription filter.
func (c *Client) wantsEvent(event models.ZoneEvent) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()

	if len(c.deviceIDs) == 0 && len(c.zoneIDs) == 0 {
		return true
	}
	return c.deviceIDs[event.DeviceID] || c.zoneIDs[event.ZoneID]
}

// Send queues a message for the client, dropping it when the buffer is full.
func (c *Client) Send(message Message) {
	select {
	case c.send <- message:
	default:
		logrus.Warnf("Send channel full on %s", c.connectionID)
	}
}

func (c *Client) sendError(code, message string) {
	c.Send(Message{
		Type:      MessageTypeError,
		Data:      ErrorData{Code: code, Message: message},
		Timestamp: time.Now(),
	})
}

func (c *Client) close() {
	c.cancel()
	c.conn.Close()
}
