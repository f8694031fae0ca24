package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/service"
)

type Handler struct {
	Service *service.Service
	Hub     *Hub
}

func NewHandler(svc *service.Service, hub *Hub) *Handler {
	return &Handler{
		Service: svc,
		Hub:     hub,
	}
}

func (h *Handler) NewWsUpgrader(requiredOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if requiredOrigin == "" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == requiredOrigin
		},
		Subprotocols: []string{"stylussphere-v1"},
	}
}

// ServeWS handles websocket requests from the peer. A session token may
// be carried as the second subprotocol item; connections without one
// join the Room unauthenticated.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	protocols := r.Header.Get("Sec-WebSocket-Protocol")
	protocolsSplit := strings.Split(protocols, ",")

	if len(protocolsSplit) > 2 {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	token := ""
	if len(protocolsSplit) == 2 {
		token = strings.TrimSpace(protocolsSplit[1])
	}

	var principal service.Principal
	var authErr error
	if token != "" {
		principal, authErr = h.Service.AuthenticateToken(r.Context(), token)
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade ws connection: %v", err)
		return
	}

	// Must upgrade the connection in order to be able to send custom close message
	if authErr != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Unauthenticated"),
		)
		conn.Close()
		return
	}

	client := NewClient(h.Hub, conn, h.HandleWsMessage)
	if token != "" {
		client.bindPrincipal(principal)
	}

	h.Hub.OpenCh <- client

	// Start pumps
	go client.ReadPump()
	go client.WritePump(shutdownCtx)
}

// Websocket message structs
type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type authMessage struct {
	Token string `json:"token"`
}

type responseMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *Handler) HandleWsMessage(client *Client, messageType int, messageBytes []byte) {
	var msg message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Printf("Invalid JSON: %v", err)
		return
	}

	var resp responseMessage

	switch msg.Type {
	case service.MessageTypeStroke:
		var segment models.StrokeSegment
		if err := json.Unmarshal(msg.Data, &segment); err != nil {
			log.Printf("Invalid stroke data: %v", err)
			return
		}
		h.handleStroke(client, segment)

	case service.MessageTypeSurfaceAdded:
		h.handleSurfaceAdded(client)

	case "auth":
		var authMsg authMessage
		if err := json.Unmarshal(msg.Data, &authMsg); err != nil {
			log.Printf("Invalid auth data: %v", err)
			return
		}
		resp = h.handleAuth(client, authMsg)

	case "logout":
		resp = h.handleLogout(client)

	default:
		log.Printf("Unknown message type: %v", msg.Type)
	}

	if resp.Type != "" {
		client.sendMessage(resp)
	}
}

// handleStroke relays the segment to every other connection. A segment
// that fails validation is dropped without a response; the sender's own
// canvas already shows the stroke.
func (h *Handler) handleStroke(client *Client, segment models.StrokeSegment) {
	if err := h.Service.RelayStroke(context.Background(), client.id, segment); err != nil {
		log.Printf("RelayStroke failed for connection %s: %v", client.id, err)
	}
}

func (h *Handler) handleSurfaceAdded(client *Client) {
	if err := h.Service.CreateSurface(context.Background(), client.id); err != nil {
		log.Printf("CreateSurface failed for connection %s: %v", client.id, err)
	}
}

func (h *Handler) handleAuth(client *Client, authMsg authMessage) responseMessage {
	resp := responseMessage{
		Type: "auth_response",
	}

	principal, err := h.Service.AuthenticateToken(context.Background(), authMsg.Token)
	if err != nil {
		log.Printf("WS auth failed for connection %s: %v", client.id, err)
		resp.Data = map[string]any{"success": false}
		return resp
	}

	client.bindPrincipal(principal)
	resp.Data = map[string]any{"success": true, "username": principal.Username}

	return resp
}

// handleLogout unbinds this connection only. Revoking the session
// itself happens over the REST logout endpoint.
func (h *Handler) handleLogout(client *Client) responseMessage {
	client.unbindPrincipal()
	return responseMessage{
		Type: "logout_response",
		Data: map[string]any{"success": true},
	}
}
