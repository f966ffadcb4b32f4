package store

import (
	"context"

	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/stretchr/testify/mock"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Fetch(ctx context.Context, q resolver.Query) (string, error) {
	args := m.Called(ctx, q)
	return args.String(0), args.Error(1)
}

func (m *MockResolver) Resolve(ctx context.Context, q resolver.Query) ([]types.FileDescriptor, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FileDescriptor), args.Error(1)
}

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Install(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockInstaller) Supported() bool {
	return m.Called().Bool(0)
}
