// test/mock/notifier.go
package mock

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockLockerNotifier is a mock implementation of util.LockerNotifier
type MockLockerNotifier struct {
	mock.Mock
}

func (m *MockLockerNotifier) SendLockerStatus(ctx context.Context, lockerID string, isLocked bool) error {
	args := m.Called(ctx, lockerID, isLocked)
	return args.Error(0)
}

// RecordingNotifier captures every push without expectations, with an
// optional forced error to simulate an unreachable actuator.
type RecordingNotifier struct {
	mu     sync.Mutex
	Pushes []LockerPush
	Err    error
}

type LockerPush struct {
	LockerID string
	IsLocked bool
}

func (n *RecordingNotifier) SendLockerStatus(ctx context.Context, lockerID string, isLocked bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Pushes = append(n.Pushes, LockerPush{LockerID: lockerID, IsLocked: isLocked})
	return n.Err
}
