package mocks

import (
	"context"

	appabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/stretchr/testify/mock"
)

type Tracker struct {
	mock.Mock
}

func (m *Tracker) TrackVisit(ctx context.Context, ipHash, endpoint string, metadata map[string]any) (*abuse.Ban, error) {
	args := m.Called(ctx, ipHash, endpoint, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abuse.Ban), args.Error(1)
}

func (m *Tracker) FlagIP(ctx context.Context, ipHash, reason string) error {
	args := m.Called(ctx, ipHash, reason)
	return args.Error(0)
}

func (m *Tracker) BanIP(ctx context.Context, ipHash string, reason abuse.BanReason, opts appabuse.BanOptions) (*abuse.Ban, error) {
	args := m.Called(ctx, ipHash, reason, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abuse.Ban), args.Error(1)
}

func (m *Tracker) CheckBan(ctx context.Context, ipHash string) (*abuse.Ban, error) {
	args := m.Called(ctx, ipHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abuse.Ban), args.Error(1)
}

func (m *Tracker) UnbanIP(ctx context.Context, ipHash string) error {
	args := m.Called(ctx, ipHash)
	return args.Error(0)
}

func (m *Tracker) RecordEvent(ctx context.Context, event appabuse.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *Tracker) RecentEvents(ipHash string) []abuse.LogEntry {
	args := m.Called(ipHash)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]abuse.LogEntry)
}
