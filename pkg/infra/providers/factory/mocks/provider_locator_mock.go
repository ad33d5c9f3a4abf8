package mocks

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/providers"
	"github.com/stretchr/testify/mock"
)

type ProviderLocator struct {
	mock.Mock
}

func (m *ProviderLocator) Get(provider string) (providers.Client, error) {
	args := m.Called(provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(providers.Client), args.Error(1)
}
