package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zlnvch/stylussphere/models"
)

// RoomEnvelope wraps a client-facing message for the room pub/sub
// channel. SenderId is the originating connection id; every hub
// instance skips that connection during fan-out so a sender never
// receives its own event back.
type RoomEnvelope struct {
	SenderId string          `json:"senderId"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
}

type strokeMessage struct {
	Type string               `json:"type"`
	Data models.StrokeSegment `json:"data"`
}

type surfaceAddedMessage struct {
	Type string `json:"type"`
}

const (
	MessageTypeStroke       = "stroke"
	MessageTypeSurfaceAdded = "surfaceAdded"
)

// RelayStroke is the hot path: one inbound segment, one publish, fan-out
// to O(connected peers) on the subscribing hubs. The segment is relayed
// as-is; only its structural shape is checked.
func (s *Service) RelayStroke(ctx context.Context, originId string, segment models.StrokeSegment) error {
	if err := ValidateStroke(segment); err != nil {
		return err
	}

	msg := strokeMessage{Type: MessageTypeStroke, Data: segment}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal stroke failed: %w", err)
	}

	return s.publishRoomEvent(ctx, originId, MessageTypeStroke, msgBytes)
}

// CreateSurface broadcasts a "create yours too" notification to every
// other connection. The originator already created its surface
// optimistically, so it is skipped. Succeeds with zero connections.
func (s *Service) CreateSurface(ctx context.Context, originId string) error {
	msg := surfaceAddedMessage{Type: MessageTypeSurfaceAdded}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal surface message failed: %w", err)
	}

	return s.publishRoomEvent(ctx, originId, MessageTypeSurfaceAdded, msgBytes)
}

func (s *Service) publishRoomEvent(ctx context.Context, originId string, messageType string, payload []byte) error {
	env := RoomEnvelope{
		SenderId: originId,
		Type:     messageType,
		Payload:  payload,
	}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal room envelope failed: %w", err)
	}

	if err := s.Cache.Publish(ctx, RoomEventsChannel, envBytes); err != nil {
		return fmt.Errorf("publish room event failed: %w", err)
	}
	return nil
}
