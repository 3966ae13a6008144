package websocket

import (
	"context"
	"sync"
	"time"

	"zonetrack/models"

	"github.com/sirupsen/logrus"
)

// Hub fans zone events out to every connected WebSocket client. It registers
// itself as an event listener on the engine, so each derived enter, exit,
// and dwell event is pushed live to subscribers.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan models.ZoneEvent

	stats HubStats

	mutex sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
}

type HubStats struct {
	TotalConnections  int64     `json:"totalConnections"`
	ActiveConnections int       `json:"activeConnections"`
	EventsPushed      int64     `json:"eventsPushed"`
	StartTime         time.Time `json:"startTime"`

	mutex sync.RWMutex
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.ZoneEvent, 256),
		stats: HubStats{
			StartTime: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (h *Hub) Run() {
	logrus.Info("WebSocket hub starting")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.pushEvent(event)

		case <-h.ctx.Done():
			logrus.Info("WebSocket hub shutting down")
			return
		}
	}
}

// BroadcastZoneEvent queues an event for delivery to connected clients. It
// is safe to call from the engine's dispatch path; a full queue drops the
// event rather than blocking the engine.
func (h *Hub) BroadcastZoneEvent(event models.ZoneEvent) {
	select {
	case h.broadcast <- event:
	default:
		logrus.Warn("Broadcast channel full, dropping zone event")
	}
}

func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) GetStats() HubStats {
	h.stats.mutex.RLock()
	defer h.stats.mutex.RUnlock()

	return HubStats{
		TotalConnections:  h.stats.TotalConnections,
		ActiveConnections: h.ConnectedClients(),
		EventsPushed:      h.stats.EventsPushed,
		StartTime:         h.stats.StartTime,
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	h.mutex.Unlock()

	h.stats.mutex.Lock()
	h.stats.TotalConnections++
	h.stats.mutex.Unlock()

	logrus.Infof("WebSocket client connected: %s (total: %d)", client.connectionID, h.ConnectedClients())
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mutex.Unlock()

	logrus.Infof("WebSocket client disconnected: %s (total: %d)", client.connectionID, h.ConnectedClients())
}

func (h *Hub) pushEvent(event models.ZoneEvent) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	message := newZoneEventMessage(event)
	for client := range h.clients {
		if !client.wantsEvent(event) {
			continue
		}
		client.Send(message)
	}

	h.stats.mutex.Lock()
	h.stats.EventsPushed++
	h.stats.mutex.Unlock()
}

func (h *Hub) Shutdown() {
	h.cancel()

	h.mutex.Lock()
	for client := range h.clients {
		client.close()
		delete(h.clients, client)
	}
	h.mutex.Unlock()

	logrus.Info("WebSocket hub shutdown complete")
}
