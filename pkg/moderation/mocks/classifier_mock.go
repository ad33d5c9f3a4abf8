package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/moderation"
	"github.com/stretchr/testify/mock"
)

type Classifier struct {
	mock.Mock
}

func (m *Classifier) Classify(ctx context.Context, content string) (*moderation.Classification, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*moderation.Classification), args.Error(1)
}
