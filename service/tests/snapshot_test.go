package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/service"
	"github.com/zlnvch/stylussphere/store"
)

func TestSaveSnapshot_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	var created models.Snapshot
	mockStore.On("CreateSnapshot", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(models.Snapshot)
		}).
		Return(nil)

	id, err := svc.SaveSnapshot(ctx, "alice", []byte("canvas-data"))
	assert.NoError(t, err)
	assert.Len(t, id, 8)
	assert.Equal(t, id, created.Id)
	assert.Equal(t, "alice", created.Owner)
	assert.Equal(t, []byte("canvas-data"), created.Payload)
}

func TestSaveSnapshot_DistinctIds(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("CreateSnapshot", mock.Anything, mock.Anything).Return(nil)

	first, err := svc.SaveSnapshot(ctx, "alice", []byte("v1"))
	assert.NoError(t, err)
	second, err := svc.SaveSnapshot(ctx, "alice", []byte("v2"))
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSaveSnapshot_IdCollisionRetries(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	var attempted []string
	mockStore.On("CreateSnapshot", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			attempted = append(attempted, args.Get(1).(models.Snapshot).Id)
		}).
		Return(store.ErrItemExists).Once()
	mockStore.On("CreateSnapshot", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			attempted = append(attempted, args.Get(1).(models.Snapshot).Id)
		}).
		Return(nil)

	id, err := svc.SaveSnapshot(ctx, "alice", []byte("canvas-data"))
	assert.NoError(t, err)
	assert.Len(t, attempted, 2)
	assert.NotEqual(t, attempted[0], attempted[1])
	assert.Equal(t, attempted[1], id)
}

func TestSaveSnapshot_EmptyPayload(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.SaveSnapshot(ctx, "alice", nil)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	mockStore.AssertNotCalled(t, "CreateSnapshot", mock.Anything, mock.Anything)
}

func TestLoadSnapshot_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetSnapshot", mock.Anything, "alice", "abcd1234").
		Return(models.Snapshot{Id: "abcd1234", Owner: "alice", Payload: []byte("canvas-data")}, nil)

	payload, err := svc.LoadSnapshot(ctx, "alice", "abcd1234")
	assert.NoError(t, err)
	assert.Equal(t, []byte("canvas-data"), payload)
}

func TestLoadSnapshot_NotFound(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetSnapshot", mock.Anything, "alice", "missing1").
		Return(models.Snapshot{}, store.ErrItemNotFound)

	_, err := svc.LoadSnapshot(ctx, "alice", "missing1")
	assert.ErrorIs(t, err, service.ErrSnapshotNotFound)
}

// A foreign owner's id behaves exactly like an id that never existed.
func TestLoadSnapshot_ForeignOwner(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetSnapshot", mock.Anything, "mallory", "abcd1234").
		Return(models.Snapshot{}, store.ErrItemNotFound)

	_, err := svc.LoadSnapshot(ctx, "mallory", "abcd1234")
	assert.ErrorIs(t, err, service.ErrSnapshotNotFound)
}
