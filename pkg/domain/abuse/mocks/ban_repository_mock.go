package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/stretchr/testify/mock"
)

type BanRepository struct {
	mock.Mock
}

func (m *BanRepository) Create(ctx context.Context, ban *abuse.Ban) error {
	args := m.Called(ctx, ban)
	return args.Error(0)
}

func (m *BanRepository) FindActiveByHash(ctx context.Context, ipHash string) (*abuse.Ban, error) {
	args := m.Called(ctx, ipHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*abuse.Ban), args.Error(1)
}

func (m *BanRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
