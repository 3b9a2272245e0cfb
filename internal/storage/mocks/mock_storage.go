package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) Put(ctx context.Context, id string, r io.Reader, size int64) error {
	args := m.Called(ctx, id, r, size)
	return args.Error(0)
}

func (m *MockContentStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockContentStore) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
