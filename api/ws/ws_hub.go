package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/zlnvch/stylussphere/cache"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/service"
)

type roomStateData struct {
	SurfaceCount int `json:"surfaceCount"`
}

type roomStateMessage struct {
	Type string        `json:"type"`
	Data roomStateData `json:"data"`
}

// Hub owns the Room: the set of active connections and the ordered
// canvas surface list. All mutation happens on the Run goroutine, so a
// broadcast can never race a connection joining or leaving.
type Hub struct {
	stylusCache      cache.StylusCache
	OpenCh           chan *Client
	CloseCh          chan *Client
	BroadcastCh      chan service.RoomEnvelope
	SessionRevokedCh chan string
	clients          map[*Client]struct{}
	surfaces         []models.CanvasSurface
}

func NewHub(stylusCache cache.StylusCache) *Hub {
	return &Hub{
		stylusCache:      stylusCache,
		OpenCh:           make(chan *Client, 256),
		CloseCh:          make(chan *Client, 256),
		BroadcastCh:      make(chan service.RoomEnvelope, 1024),
		SessionRevokedCh: make(chan string, 64),
		clients:          make(map[*Client]struct{}),
	}
}

// Fan-out is O(clients) per stroke, which bounds the practical room
// size; the cap keeps a pathological client count from drowning the
// loop.
const maxRoomClients = 256

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.OpenCh:
			if len(h.clients) >= maxRoomClients {
				log.Printf("Room full (%d clients), rejecting connection %s", maxRoomClients, client.id)
				client.closeSend()
				continue
			}
			h.clients[client] = struct{}{}

			// Tell the joiner how many surfaces already exist so it can
			// create its local layers.
			stateMsg := roomStateMessage{Type: "room_state", Data: roomStateData{SurfaceCount: len(h.surfaces)}}
			if stateBytes, err := json.Marshal(stateMsg); err == nil {
				h.deliver(client, stateBytes)
			}

		case client := <-h.CloseCh:
			delete(h.clients, client)

		case env := <-h.BroadcastCh:
			if env.Type == service.MessageTypeSurfaceAdded {
				h.surfaces = append(h.surfaces, models.CanvasSurface{
					Ordinal: len(h.surfaces) + 1,
					Created: time.Now().Unix(),
				})
			}

			for client := range h.clients {
				if client.id == env.SenderId {
					continue
				}
				h.deliver(client, env.Payload)
			}

		case sessionId := <-h.SessionRevokedCh:
			for client := range h.clients {
				client.revokeSession(sessionId)
			}
		}
	}
}

// deliver is at-most-once, best-effort: a peer whose send buffer is
// full misses the message rather than stalling the whole Room.
func (h *Hub) deliver(client *Client, message []byte) {
	if !client.enqueue(message) {
		log.Printf("Send buffer full, dropping message for connection %s", client.id)
	}
}

func (h *Hub) InitSubscriptions(shutdownCtx context.Context) error {
	err := h.stylusCache.Subscribe(shutdownCtx, service.RoomEventsChannel, func(message []byte) {
		var env service.RoomEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("Failed to unmarshal room envelope: %v", err)
			return
		}
		h.BroadcastCh <- env
	})
	if err != nil {
		log.Printf("WS hub failed to subscribe to %s: %v", service.RoomEventsChannel, err)
		return err
	}

	err = h.stylusCache.Subscribe(shutdownCtx, service.SessionRevokedChannel, func(message []byte) {
		var revokedMsg service.SessionRevokedMessage
		if err := json.Unmarshal(message, &revokedMsg); err != nil {
			log.Printf("Failed to unmarshal session revocation: %v", err)
			return
		}
		h.SessionRevokedCh <- revokedMsg.SessionId
	})
	if err != nil {
		log.Printf("WS hub failed to subscribe to %s: %v", service.SessionRevokedChannel, err)
		return err
	}

	return nil
}
