package mocks

import (
	"context"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/stretchr/testify/mock"
)

type LogRepository struct {
	mock.Mock
}

func (m *LogRepository) Append(ctx context.Context, entry *abuse.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *LogRepository) CountEventsSince(ctx context.Context, ipHash string, eventType abuse.EventType, since time.Time) (int64, error) {
	args := m.Called(ctx, ipHash, eventType, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LogRepository) RecentByHash(ctx context.Context, ipHash string, limit int) ([]abuse.LogEntry, error) {
	args := m.Called(ctx, ipHash, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]abuse.LogEntry), args.Error(1)
}
