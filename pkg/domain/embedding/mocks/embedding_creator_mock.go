package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/domain/embedding"
	"github.com/stretchr/testify/mock"
)

type Creator struct {
	mock.Mock
}

func (m *Creator) Generate(ctx context.Context, text, model string, config *embedding.Config) (*embedding.Embedding, error) {
	args := m.Called(ctx, text, model, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*embedding.Embedding), args.Error(1)
}
