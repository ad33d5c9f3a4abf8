package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Ask(ctx context.Context, config *providers.Config, prompt string) (*providers.CompletionResponse, error) {
	args := m.Called(ctx, config, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.CompletionResponse), args.Error(1)
}
