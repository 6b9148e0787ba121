package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/protocol"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/room"
	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

// MockConnection implements wsConnection. ReadMessage delegates to
// ReadMessageFunc; writes are recorded for assertions.
type MockConnection struct {
	ReadMessageFunc func() (int, []byte, error)

	mu       sync.Mutex
	writeErr error
	written  []frame
	controls []frame
	closed   bool
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	if m.ReadMessageFunc != nil {
		return m.ReadMessageFunc()
	}
	return 0, nil, assert.AnError
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, frame{messageType: messageType, data: append([]byte(nil), data...)})
	return nil
}

func (m *MockConnection) WriteControl(messageType int, data []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls = append(m.controls, frame{messageType: messageType, data: append([]byte(nil), data...)})
	return nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockConnection) SetWriteDeadline(_ time.Time) error { return nil }

func (m *MockConnection) Written() []frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]frame(nil), m.written...)
}

func (m *MockConnection) Controls() []frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]frame(nil), m.controls...)
}

func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// MockRegistry implements registry and records every call.
type MockRegistry struct {
	PasswordErr *protocol.JoinError
	JoinErr     *protocol.JoinError

	mu              sync.Mutex
	lastJoin        room.JoinParams
	joinCalls       int
	dispatched      [][]byte
	disconnectCalls int
}

func (m *MockRegistry) CheckPassword(_ types.RoomName, _ string) *protocol.JoinError {
	return m.PasswordErr
}

func (m *MockRegistry) Join(_ context.Context, p room.JoinParams) (uuid.UUID, *protocol.JoinError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinCalls++
	m.lastJoin = p
	if m.JoinErr != nil {
		return uuid.Nil, m.JoinErr
	}
	return uuid.New(), nil
}

func (m *MockRegistry) Dispatch(_ context.Context, _ types.RoomName, _ types.Addr, _ types.ClientConn, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, append([]byte(nil), data...))
}

func (m *MockRegistry) DisconnectUser(_ context.Context, _ types.RoomName, _ types.Addr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectCalls++
	return true
}

func (m *MockRegistry) JoinCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joinCalls
}

func (m *MockRegistry) LastJoin() room.JoinParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastJoin
}

func (m *MockRegistry) Dispatched() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.dispatched...)
}

func (m *MockRegistry) DisconnectCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectCalls
}

var (
	_ wsConnection = (*MockConnection)(nil)
	_ registry     = (*MockRegistry)(nil)
)
