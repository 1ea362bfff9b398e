package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockRemote is a mock implementation of api.Doer.
type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) Do(ctx context.Context, method, path string, body, out interface{}) error {
	args := m.Called(ctx, method, path, body, out)
	return args.Error(0)
}

// respondWith returns a Run function that copies a canned response into the
// out argument of a mocked Do call.
func respondWith(fill func(out interface{})) func(mock.Arguments) {
	return func(args mock.Arguments) {
		fill(args.Get(4))
	}
}
