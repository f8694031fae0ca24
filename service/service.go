package service

import (
	"github.com/zlnvch/stylussphere/cache"
	"github.com/zlnvch/stylussphere/store"
)

type Service struct {
	Store     store.StylusStore
	Cache     cache.StylusCache
	JWTSecret []byte
}

func NewService(
	store store.StylusStore,
	cache cache.StylusCache,
	jwtSecret []byte,
) (*Service, error) {
	return &Service{
		Store:     store,
		Cache:     cache,
		JWTSecret: jwtSecret,
	}, nil
}

// Pub/sub channel names. There is exactly one Room process-wide, so the
// room channel is a fixed key; a multi-room variant would parameterize
// it.
const (
	RoomEventsChannel     = "room:events"
	SessionRevokedChannel = "session-revoked"
)
