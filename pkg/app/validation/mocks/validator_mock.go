package mocks

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/validation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	"github.com/stretchr/testify/mock"
)

type Validator struct {
	mock.Mock
}

func (m *Validator) ValidateDebateTopic(ctx context.Context, topic string, secCtx *identity.SecurityContext) *validation.Result {
	args := m.Called(ctx, topic, secCtx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*validation.Result)
}

func (m *Validator) ValidateCustomRules(ctx context.Context, rules []string, secCtx *identity.SecurityContext) *validation.Result {
	args := m.Called(ctx, rules, secCtx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*validation.Result)
}

func (m *Validator) ValidateAndSanitizeDebateConfig(ctx context.Context, cfg validation.DebateConfig, secCtx *identity.SecurityContext) *validation.ConfigResult {
	args := m.Called(ctx, cfg, secCtx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*validation.ConfigResult)
}
