package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/stylussphere/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) CreateSnapshot(ctx context.Context, snapshot models.Snapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStore) GetSnapshot(ctx context.Context, owner string, id string) (models.Snapshot, error) {
	args := m.Called(ctx, owner, id)
	return args.Get(0).(models.Snapshot), args.Error(1)
}
