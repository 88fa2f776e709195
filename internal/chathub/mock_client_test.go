package chathub_test

import (
	"campuscart/backend/internal/models"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// MockClient is an in-memory connection that records every frame the hub sends it.
type MockClient struct {
	id     string
	user   models.Identity
	frames chan []byte
	closed atomic.Bool
}

func newMockClient(user *models.User) *MockClient {
	return newMockClientWithBuffer(user, 64)
}

func newMockClientWithBuffer(user *models.User, size int) *MockClient {
	return &MockClient{
		id:     uuid.NewString(),
		user:   user.Identity(),
		frames: make(chan []byte, size),
	}
}

func (c *MockClient) GetID() string             { return c.id }
func (c *MockClient) GetUserID() string         { return c.user.UserID }
func (c *MockClient) Identity() models.Identity { return c.user }

func (c *MockClient) Send(frame []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.frames <- frame:
		return true
	default:
		return false
	}
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed.Store(true)
}

// expect waits for the next frame carrying event, skipping any others.
func (c *MockClient) expect(t *testing.T, event string) models.Frame {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.frames:
			var f models.Frame
			require.NoError(t, json.Unmarshal(raw, &f))
			if f.Event == event {
				return f
			}
		case <-deadline:
			t.Fatalf("client %s: no %q event", c.user.Name, event)
			return models.Frame{}
		}
	}
}

// expectAll waits until a frame for each of events has arrived, in any order. Frames
// delivered over the bus and direct replies race, so their relative order is not fixed.
func (c *MockClient) expectAll(t *testing.T, events ...string) map[string]models.Frame {
	t.Helper()
	want := make(map[string]bool, len(events))
	for _, e := range events {
		want[e] = true
	}
	got := make(map[string]models.Frame, len(events))
	deadline := time.After(2 * time.Second)
	for len(got) < len(want) {
		select {
		case raw := <-c.frames:
			var f models.Frame
			require.NoError(t, json.Unmarshal(raw, &f))
			if _, seen := got[f.Event]; want[f.Event] && !seen {
				got[f.Event] = f
			}
		case <-deadline:
			missing := make([]string, 0, len(want))
			for e := range want {
				if _, ok := got[e]; !ok {
					missing = append(missing, e)
				}
			}
			t.Fatalf("client %s: no %v events", c.user.Name, missing)
			return nil
		}
	}
	return got
}

// refute fails if a frame carrying event arrives within a short window.
func (c *MockClient) refute(t *testing.T, event string) {
	t.Helper()
	deadline := time.After(300 * time.Millisecond)
	for {
		select {
		case raw := <-c.frames:
			var f models.Frame
			require.NoError(t, json.Unmarshal(raw, &f))
			if f.Event == event {
				t.Fatalf("client %s: unexpected %q event: %s", c.user.Name, event, f.Data)
			}
		case <-deadline:
			return
		}
	}
}

func decode[T any](t *testing.T, f models.Frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}
