package room

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dooshiifox/splatoon-comp/planner/go/internal/v1/types"
)

var errSaverFailed = errors.New("mock saver failed")

// MockConn implements types.ClientConn and records every frame queued
// to it so tests can assert on fan-out.
type MockConn struct {
	mu           sync.Mutex
	Frames       [][]byte
	Pings        int
	Disconnected bool
}

func NewMockConn() *MockConn {
	return &MockConn{}
}

func (m *MockConn) SendRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, data)
}

func (m *MockConn) SendPing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pings++
}

func (m *MockConn) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Disconnected = true
}

func (m *MockConn) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Frames)
}

func (m *MockConn) PingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Pings
}

func (m *MockConn) IsDisconnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Disconnected
}

// Events decodes every recorded frame into a loose map keyed by frame
// order.
func (m *MockConn) Events(t *testing.T) []map[string]any {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]map[string]any, 0, len(m.Frames))
	for _, f := range m.Frames {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(f, &decoded))
		out = append(out, decoded)
	}
	return out
}

// LastEvent decodes the most recent frame.
func (m *MockConn) LastEvent(t *testing.T) map[string]any {
	t.Helper()
	events := m.Events(t)
	require.NotEmpty(t, events, "no frames recorded")
	return events[len(events)-1]
}

// EventsOfType filters decoded frames by their type tag.
func (m *MockConn) EventsOfType(t *testing.T, eventType string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range m.Events(t) {
		if e["type"] == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears recorded frames so a test can focus on what follows.
func (m *MockConn) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = nil
}

// MockSaver records snapshots handed to it.
type MockSaver struct {
	mu        sync.Mutex
	Snapshots []Snapshot
	Fail      bool
}

func (m *MockSaver) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return errSaverFailed
	}
	m.Snapshots = append(m.Snapshots, snap)
	return nil
}

func (m *MockSaver) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Snapshots)
}

// uuidFromEvent pulls a uuid field out of a decoded frame.
func uuidFromEvent(t *testing.T, event map[string]any, key string) uuid.UUID {
	t.Helper()
	s, ok := event[key].(string)
	require.True(t, ok, "field %q missing or not a string", key)
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

// uuidsFromEvent pulls a uuid list field out of a decoded frame.
func uuidsFromEvent(t *testing.T, event map[string]any, key string) []uuid.UUID {
	t.Helper()
	raw, ok := event[key].([]any)
	require.True(t, ok, "field %q missing or not a list", key)
	out := make([]uuid.UUID, 0, len(raw))
	for _, item := range raw {
		id, err := uuid.Parse(item.(string))
		require.NoError(t, err)
		out = append(out, id)
	}
	return out
}

var _ types.ClientConn = (*MockConn)(nil)
