package store

import (
	"context"
	"errors"

	"github.com/zlnvch/stylussphere/models"
)

type StylusStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, username string) (models.User, error)

	CreateSnapshot(ctx context.Context, snapshot models.Snapshot) error
	GetSnapshot(ctx context.Context, owner string, id string) (models.Snapshot, error)
}

// Custom error types for clarity
var (
	ErrItemNotFound = errors.New("item does not exist")
	ErrItemExists   = errors.New("item already exists")
)
