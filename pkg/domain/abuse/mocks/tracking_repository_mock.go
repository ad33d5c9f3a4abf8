package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/stretchr/testify/mock"
)

type TrackingRepository struct {
	mock.Mock
}

func (m *TrackingRepository) GetByHash(ctx context.Context, ipHash string) (*abuse.TrackingRecord, error) {
	args := m.Called(ctx, ipHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abuse.TrackingRecord), args.Error(1)
}

func (m *TrackingRepository) Upsert(ctx context.Context, record *abuse.TrackingRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
