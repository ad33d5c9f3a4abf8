package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/moderationapi"
	"github.com/stretchr/testify/mock"
)

type Gate struct {
	mock.Mock
}

func (m *Gate) Moderate(ctx context.Context, content string) (*moderationapi.Verdict, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*moderationapi.Verdict), args.Error(1)
}
