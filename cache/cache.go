package cache

import (
	"context"
	"errors"
	"time"
)

// StylusCache backs the session registry (revocable session ids with a
// TTL) and carries the pub/sub bus the room fan-out runs on.
type StylusCache interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Subscribe(ctx context.Context, channel string, handler func(message []byte)) error

	SetSession(ctx context.Context, sessionId string, username string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionId string) (string, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

var ErrSessionNotFound = errors.New("session does not exist")
