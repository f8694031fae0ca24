package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Publish(ctx context.Context, channel string, message []byte) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockCache) Subscribe(ctx context.Context, channel string, handler func(message []byte)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

func (m *MockCache) SetSession(ctx context.Context, sessionId string, username string, ttl time.Duration) error {
	args := m.Called(ctx, sessionId, username, ttl)
	return args.Error(0)
}

func (m *MockCache) GetSession(ctx context.Context, sessionId string) (string, error) {
	args := m.Called(ctx, sessionId)
	return args.String(0), args.Error(1)
}

func (m *MockCache) DeleteSession(ctx context.Context, sessionId string) error {
	args := m.Called(ctx, sessionId)
	return args.Error(0)
}
