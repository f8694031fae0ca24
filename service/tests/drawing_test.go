package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	cachemocks "github.com/zlnvch/stylussphere/cache/mocks"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/service"
	storemocks "github.com/zlnvch/stylussphere/store/mocks"
)

func setupService(t *testing.T) (*service.Service, *storemocks.MockStore, *cachemocks.MockCache) {
	mockStore := new(storemocks.MockStore)
	mockCache := new(cachemocks.MockCache)

	svc, err := service.NewService(mockStore, mockCache, []byte("secret"))
	assert.NoError(t, err)

	return svc, mockStore, mockCache
}

func testSegment() models.StrokeSegment {
	return models.StrokeSegment{
		FromX: 10,
		FromY: 20,
		ToX:   30,
		ToY:   40,
		Mode:  models.ModeDraw,
		Color: "#ff0000",
	}
}

// decodeEnvelope pulls the published room envelope out of a Publish
// mock argument.
func decodeEnvelope(t *testing.T, raw []byte) service.RoomEnvelope {
	var env service.RoomEnvelope
	assert.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestRelayStroke_PublishesEnvelope(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	segment := testSegment()

	var published []byte
	mockCache.On("Publish", mock.Anything, service.RoomEventsChannel, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(2).([]byte)
		}).
		Return(nil)

	err := svc.RelayStroke(ctx, "conn1", segment)
	assert.NoError(t, err)

	env := decodeEnvelope(t, published)
	assert.Equal(t, "conn1", env.SenderId)
	assert.Equal(t, service.MessageTypeStroke, env.Type)

	// The relayed segment must be byte-for-byte what the sender drew.
	var msg struct {
		Type string               `json:"type"`
		Data models.StrokeSegment `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, service.MessageTypeStroke, msg.Type)
	assert.Equal(t, segment, msg.Data)

	mockCache.AssertExpectations(t)
}

func TestRelayStroke_EraseMode(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	segment := testSegment()
	segment.Mode = models.ModeErase

	mockCache.On("Publish", mock.Anything, service.RoomEventsChannel, mock.Anything).Return(nil)

	err := svc.RelayStroke(ctx, "conn1", segment)
	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestRelayStroke_InvalidMode(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	segment := testSegment()
	segment.Mode = "scribble"

	err := svc.RelayStroke(ctx, "conn1", segment)
	assert.Error(t, err)
	mockCache.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayStroke_MissingColor(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	segment := testSegment()
	segment.Color = ""

	err := svc.RelayStroke(ctx, "conn1", segment)
	assert.Error(t, err)
	mockCache.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayStroke_PublishError(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	mockCache.On("Publish", mock.Anything, service.RoomEventsChannel, mock.Anything).Return(assert.AnError)

	err := svc.RelayStroke(ctx, "conn1", testSegment())
	assert.Error(t, err)
}

func TestCreateSurface_PublishesEnvelope(t *testing.T) {
	svc, _, mockCache := setupService(t)
	ctx := context.Background()

	var published []byte
	mockCache.On("Publish", mock.Anything, service.RoomEventsChannel, mock.Anything).
		Run(func(args mock.Arguments) {
			published = args.Get(2).([]byte)
		}).
		Return(nil)

	err := svc.CreateSurface(ctx, "conn2")
	assert.NoError(t, err)

	env := decodeEnvelope(t, published)
	assert.Equal(t, "conn2", env.SenderId)
	assert.Equal(t, service.MessageTypeSurfaceAdded, env.Type)

	// The notification carries no data beyond its type.
	var msg map[string]any
	assert.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, map[string]any{"type": service.MessageTypeSurfaceAdded}, msg)

	mockCache.AssertExpectations(t)
}
