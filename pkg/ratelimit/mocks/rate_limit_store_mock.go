package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (m *Store) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	args := m.Called(ctx, key, window)
	return args.Get(0).(int64), args.Get(1).(time.Time), args.Error(2)
}
