package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

type Moderator struct {
	mock.Mock
}

func (m *Moderator) Moderate(ctx context.Context, content string) (*moderation.Result, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*moderation.Result), args.Error(1)
}
