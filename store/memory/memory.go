package memory

import (
	"context"
	"sync"
	"time"

	"github.com/zlnvch/stylussphere/models"
	"github.com/zlnvch/stylussphere/store"
)

// MemoryStylusStore is the reference process-resident backend. State
// does not survive a restart; the dynamo store is the durable variant
// behind the same interface.
type MemoryStylusStore struct {
	mu        sync.RWMutex
	users     map[string]models.User
	snapshots map[string]map[string]models.Snapshot
}

func NewMemoryStylusStore() *MemoryStylusStore {
	return &MemoryStylusStore{
		users:     make(map[string]models.User),
		snapshots: make(map[string]map[string]models.Snapshot),
	}
}

func (memStore *MemoryStylusStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	memStore.mu.Lock()
	defer memStore.mu.Unlock()

	if _, ok := memStore.users[user.Username]; ok {
		return models.User{}, store.ErrItemExists
	}

	user.Created = time.Now().Unix()
	memStore.users[user.Username] = user
	memStore.snapshots[user.Username] = make(map[string]models.Snapshot)
	return user, nil
}

func (memStore *MemoryStylusStore) GetUser(ctx context.Context, username string) (models.User, error) {
	memStore.mu.RLock()
	defer memStore.mu.RUnlock()

	user, ok := memStore.users[username]
	if !ok {
		return models.User{}, store.ErrItemNotFound
	}
	return user, nil
}

func (memStore *MemoryStylusStore) CreateSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	memStore.mu.Lock()
	defer memStore.mu.Unlock()

	owned, ok := memStore.snapshots[snapshot.Owner]
	if !ok {
		owned = make(map[string]models.Snapshot)
		memStore.snapshots[snapshot.Owner] = owned
	}

	if _, ok := owned[snapshot.Id]; ok {
		return store.ErrItemExists
	}

	snapshot.Created = time.Now().Unix()
	owned[snapshot.Id] = snapshot
	return nil
}

func (memStore *MemoryStylusStore) GetSnapshot(ctx context.Context, owner string, id string) (models.Snapshot, error) {
	memStore.mu.RLock()
	defer memStore.mu.RUnlock()

	snapshot, ok := memStore.snapshots[owner][id]
	if !ok {
		return models.Snapshot{}, store.ErrItemNotFound
	}
	return snapshot, nil
}
