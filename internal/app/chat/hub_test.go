package chat

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newQueueOnlyClient builds a Client that participates in Hub bookkeeping and
// fan-out without a live WebSocket underneath.
func newQueueOnlyClient(queueSize int) *Client {
	return &Client{
		send:   make(chan []byte, queueSize),
		logger: zerolog.New(io.Discard),
	}
}

func TestHubBindConflict(t *testing.T) {
	hub := NewHub()
	c1 := newQueueOnlyClient(8)
	c2 := newQueueOnlyClient(8)
	hub.Add(c1)
	hub.Add(c2)

	require.Nil(t, hub.Bind(c1, "alice"))

	err := hub.Bind(c2, "alice")
	require.NotNil(t, err)
	assert.Equal(t, "alice", hub.Online()[0])
	assert.Len(t, hub.Online(), 1)

	// rebinding the same connection is not a conflict
	assert.Nil(t, hub.Bind(c1, "alice"))
}

func TestHubOnlineTracksBindsAndRemoves(t *testing.T) {
	hub := NewHub()

	assert.Empty(t, hub.Online())

	clients := map[string]*Client{}
	for _, name := range []string{"alice", "bob", "carol"} {
		c := newQueueOnlyClient(8)
		hub.Add(c)
		require.Nil(t, hub.Bind(c, name))
		clients[name] = c
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, hub.Online())

	name, wasBound := hub.Remove(clients["bob"])
	assert.True(t, wasBound)
	assert.Equal(t, "bob", name)
	assert.Equal(t, []string{"alice", "carol"}, hub.Online())

	// removal is idempotent
	name, wasBound = hub.Remove(clients["bob"])
	assert.False(t, wasBound)
	assert.Empty(t, name)
	assert.Equal(t, []string{"alice", "carol"}, hub.Online())
}

func TestHubRemoveUnauthenticatedConnection(t *testing.T) {
	hub := NewHub()
	c := newQueueOnlyClient(8)
	hub.Add(c)

	name, wasBound := hub.Remove(c)
	assert.False(t, wasBound)
	assert.Empty(t, name)
}

func TestHubBroadcastReachesEveryConnection(t *testing.T) {
	hub := NewHub()

	const n = 5
	clients := make([]*Client, 0, n)
	for i := 0; i < n; i++ {
		c := newQueueOnlyClient(8)
		hub.Add(c)
		clients = append(clients, c)
	}

	hub.Broadcast(NewOnlineEvent([]string{"alice"}))

	for i, c := range clients {
		select {
		case data := <-c.send:
			var ev OnlineEvent
			require.NoError(t, json.Unmarshal(data, &ev))
			assert.Equal(t, TypeOnline, ev.Type)
			assert.Equal(t, []string{"alice"}, ev.Online)
		default:
			t.Fatalf("client %d received no broadcast", i)
		}

		// exactly one copy each
		assert.Empty(t, c.send)
	}
}

func TestHubBroadcastSkipsFullQueues(t *testing.T) {
	hub := NewHub()

	blocked := newQueueOnlyClient(1)
	healthy := newQueueOnlyClient(8)
	hub.Add(blocked)
	hub.Add(healthy)

	require.True(t, blocked.enqueue([]byte(`{"type":"noise"}`)))

	hub.Broadcast(NewOnlineEvent([]string{"bob"}))

	// the healthy connection still gets its copy
	select {
	case data := <-healthy.send:
		var ev OnlineEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, []string{"bob"}, ev.Online)
	default:
		t.Fatal("healthy client received no broadcast")
	}
}

func TestHubBroadcastSkipsClosedConnections(t *testing.T) {
	hub := NewHub()

	closed := newQueueOnlyClient(8)
	healthy := newQueueOnlyClient(8)
	hub.Add(closed)
	hub.Add(healthy)

	closed.closeSend()

	hub.Broadcast(NewOnlineEvent(nil))

	select {
	case <-healthy.send:
	default:
		t.Fatal("healthy client received no broadcast")
	}
}

func TestClientEnqueueAfterCloseIsSafe(t *testing.T) {
	c := newQueueOnlyClient(2)

	c.closeSend()
	c.closeSend() // double close must not panic

	assert.False(t, c.enqueue([]byte("late")))
}
