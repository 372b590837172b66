package ws_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/ws"
)

// fakeConn records everything written to it and can be told to fail.
type fakeConn struct {
	mu      sync.Mutex
	frames  []any
	texts   []string
	failing bool
	closed  bool
}

func (f *fakeConn) WriteJSON(ctx context.Context, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection reset")
	}
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeConn) WriteText(ctx context.Context, s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection reset")
	}
	f.texts = append(f.texts, s)
	return nil
}

func (f *fakeConn) Close(code websocket.StatusCode, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.frames))
	copy(out, f.frames)
	return out
}

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	reg := ws.NewRegistry()
	a := &fakeConn{}
	b := &fakeConn{}

	reg.Subscribe("room1", a)
	reg.Subscribe("room1", b)

	payload := ws.NewMessageFrame(map[string]string{"text": "hi"})
	reg.Broadcast(context.Background(), "room1", payload)

	require.Len(t, a.received(), 1)
	require.Len(t, b.received(), 1)
	assert.Equal(t, payload, a.received()[0])
	assert.Equal(t, payload, b.received()[0])

	// A broadcast to an unrelated topic reaches neither.
	reg.Broadcast(context.Background(), "room2", payload)
	assert.Len(t, a.received(), 1)
	assert.Len(t, b.received(), 1)
}

func TestBroadcastToEmptyTopicIsNoOp(t *testing.T) {
	reg := ws.NewRegistry()
	assert.NotPanics(t, func() {
		reg.Broadcast(context.Background(), "nobody-home", ws.NewMessageFrame("x"))
	})
	assert.Empty(t, reg.Topics())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	reg := ws.NewRegistry()
	c := &fakeConn{}

	reg.Subscribe("room1", c)
	reg.Unsubscribe("room1", c)

	reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("x"))
	assert.Empty(t, c.received())
}

func TestEmptyTopicKeyIsRemoved(t *testing.T) {
	reg := ws.NewRegistry()
	c := &fakeConn{}

	reg.Subscribe("room1", c)
	assert.Equal(t, []string{"room1"}, reg.Topics())

	reg.Unsubscribe("room1", c)
	assert.Empty(t, reg.Topics(), "last unsubscribe must delete the topic key")
}

func TestSubscribeIsIdempotent(t *testing.T) {
	reg := ws.NewRegistry()
	c := &fakeConn{}

	reg.Subscribe("room1", c)
	reg.Subscribe("room1", c)
	assert.Equal(t, 1, reg.Len("room1"))

	reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("once"))
	assert.Len(t, c.received(), 1, "duplicate subscribe must not double-deliver")
}

func TestUnsubscribeUnknownIsNoOp(t *testing.T) {
	reg := ws.NewRegistry()
	assert.NotPanics(t, func() {
		reg.Unsubscribe("ghost", &fakeConn{})
	})
}

func TestSendFailureIsolation(t *testing.T) {
	reg := ws.NewRegistry()
	broken := &fakeConn{failing: true}
	healthy := &fakeConn{}

	reg.Subscribe("room1", broken)
	reg.Subscribe("room1", healthy)

	reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("hello"))

	require.Len(t, healthy.received(), 1, "failure on one connection must not block the other")
	assert.Equal(t, 1, reg.Len("room1"), "broken connection must be pruned")

	// The healthy connection keeps receiving afterwards.
	reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("again"))
	assert.Len(t, healthy.received(), 2)
}

func TestFailedLastSubscriberRemovesTopic(t *testing.T) {
	reg := ws.NewRegistry()
	broken := &fakeConn{failing: true}

	reg.Subscribe("room1", broken)
	reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("x"))

	assert.Empty(t, reg.Topics(), "pruning the last subscriber must remove the topic key")

	// Second broadcast is now a plain no-op.
	assert.NotPanics(t, func() {
		reg.Broadcast(context.Background(), "room1", ws.NewMessageFrame("y"))
	})
}

func TestCloseAllClearsRegistryAndClosesConnections(t *testing.T) {
	reg := ws.NewRegistry()
	a := &fakeConn{}
	b := &fakeConn{}

	reg.Subscribe("room1", a)
	reg.Subscribe("room2", a)
	reg.Subscribe("room2", b)

	reg.CloseAll()

	assert.Empty(t, reg.Topics())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestConcurrentSubscribeAndBroadcast(t *testing.T) {
	reg := ws.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			reg.Subscribe("busy", c)
			reg.Unsubscribe("busy", c)
		}()
		go func() {
			defer wg.Done()
			reg.Broadcast(context.Background(), "busy", ws.NewMessageFrame("tick"))
		}()
	}
	wg.Wait()

	assert.Empty(t, reg.Topics(), "all subscribers unsubscribed, no topics may remain")
}
