package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/stageplot/internal/logger"
	"github.com/abrezinsky/stageplot/internal/models"
	"github.com/abrezinsky/stageplot/internal/services"
)

// Message types
const (
	TypePlotStatus  = "plot_status"
	TypePlotSaved   = "plot_saved"
	TypeSaveFailed  = "save_failed"
	TypePlotChanged = "plot_changed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Editors on the LAN connect by IP
	},
}

// PlotStatusSource reports the state of an open plot
type PlotStatusSource interface {
	Get(ctx context.Context, id string) (*services.PlotView, error)
}

// Hub maintains the set of active clients and broadcasts plot events to them
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	plots      PlotStatusSource
}

// Client is a middleman between the websocket connection and the hub.
// A client with a plot id only receives that plot's events.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.WSMessage
	plotID string
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, plots PlotStatusSource) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		plots:      plots,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "plot_id", client.plotID, "total_clients", total)

			if client.plotID != "" && h.plots != nil {
				go h.sendStatus(client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				if client.plotID != "" && message.PlotID != "" && client.plotID != message.PlotID {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// sendStatus tells a new client where its plot stands
func (h *Hub) sendStatus(client *Client) {
	view, err := h.plots.Get(context.Background(), client.plotID)
	if err != nil {
		h.log.Debug("No status for plot", "plot_id", client.plotID, "error", err)
		return
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- models.WSMessage{
		Type:    TypePlotStatus,
		PlotID:  client.plotID,
		Payload: statusPayload(view),
	}:
	default:
	}
}

func statusPayload(v *services.PlotView) map[string]interface{} {
	return map[string]interface{}{
		"pending":  v.Pending,
		"can_undo": v.CanUndo,
		"can_redo": v.CanRedo,
	}
}

// BroadcastMessage sends a message to every client subscribed to the plot,
// or to all clients for an empty plot id
func (h *Hub) BroadcastMessage(msgType, plotID string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		PlotID:  plotID,
		Payload: payload,
	}
}

// BroadcastPlotSaved implements services.Broadcaster
func (h *Hub) BroadcastPlotSaved(plotID string) {
	h.BroadcastMessage(TypePlotSaved, plotID, map[string]interface{}{
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// BroadcastSaveFailed implements services.Broadcaster
func (h *Hub) BroadcastSaveFailed(plotID string, err error) {
	h.BroadcastMessage(TypeSaveFailed, plotID, map[string]interface{}{
		"error": err.Error(),
	})
}

// BroadcastPlotChanged implements services.Broadcaster
func (h *Hub) BroadcastPlotChanged(plotID string) {
	payload := map[string]interface{}{}
	if h.plots != nil {
		if view, err := h.plots.Get(context.Background(), plotID); err == nil {
			payload = statusPayload(view)
		}
	}
	h.BroadcastMessage(TypePlotChanged, plotID, payload)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		// Clients only listen; anything they send is logged and dropped
		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type, "plot_id", c.plotID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades the request. The optional plot query parameter
// subscribes the client to one plot.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan models.WSMessage, 256),
		plotID: r.URL.Query().Get("plot"),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

var _ services.Broadcaster = (*Hub)(nil)
