package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/store"
)

const (
	snapshotIdLength = 8
	maxSaveAttempts  = 5
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SaveSnapshot stores the payload under a fresh short id scoped to the
// owner. Collisions within the owner's namespace are vanishingly rare
// at 8 hex characters but the conditional create catches them, in which
// case a new id is generated.
func (s *Service) SaveSnapshot(ctx context.Context, owner string, payload []byte) (string, error) {
	if err := ValidateSnapshotPayload(payload); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		id, err := newSnapshotId()
		if err != nil {
			return "", err
		}

		err = s.Store.CreateSnapshot(ctx, models.Snapshot{
			Id:      id,
			Owner:   owner,
			Payload: payload,
		})
		if err != nil {
			if errors.Is(err, store.ErrItemExists) {
				continue
			}
			return "", fmt.Errorf("create snapshot failed: %w", err)
		}

		return id, nil
	}

	return "", errors.New("snapshot id generation exhausted retries")
}

// LoadSnapshot returns the payload only when the id lives in the
// owner's namespace. A foreign id and a nonexistent id are deliberately
// the same error so ids cannot be probed across principals.
func (s *Service) LoadSnapshot(ctx context.Context, owner string, id string) ([]byte, error) {
	snapshot, err := s.Store.GetSnapshot(ctx, owner, id)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("get snapshot failed: %w", err)
	}

	return snapshot.Payload, nil
}

func newSnapshotId() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String()[:snapshotIdLength], nil
}
