package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(userID int64) *Client {
	return NewClient(userID, nil, "test")
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	default:
		t.Fatal("expected a queued frame")
		return nil
	}
}

func TestBroadcastSkipsExcluded(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(2)
	hub.Join("room", a)
	hub.Join("room", b)

	hub.Broadcast("room", []byte("hello"), a)

	assert.Equal(t, []byte("hello"), recv(t, b))
	select {
	case <-a.Send:
		t.Fatal("excluded client received the frame")
	default:
	}
}

func TestPushReachesEveryMember(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(2)
	hub.Join("room", a)
	hub.Join("room", b)

	hub.Push("room", []byte("x"))

	assert.Equal(t, []byte("x"), recv(t, a))
	assert.Equal(t, []byte("x"), recv(t, b))
}

func TestLeaveRemovesEmptyGroup(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	hub.Join("room", a)
	require.Equal(t, 1, hub.GroupSize("room"))

	hub.Leave("room", a)
	assert.Equal(t, 0, hub.GroupSize("room"))

	// broadcasting into a vanished group is a no-op
	hub.Broadcast("room", []byte("x"), nil)
}

func TestRemoveClientLeavesAllGroups(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	hub.Join("room1", a)
	hub.Join("room2", a)

	hub.RemoveClient(a)

	assert.Equal(t, 0, hub.GroupSize("room1"))
	assert.Equal(t, 0, hub.GroupSize("room2"))
}

func TestSlowClientDropped(t *testing.T) {
	hub := NewHub()
	slow := testClient(1)
	fast := testClient(2)
	hub.Join("room", slow)
	hub.Join("room", fast)

	for i := 0; i < sendQueue; i++ {
		require.True(t, slow.Enqueue([]byte("fill")))
	}

	hub.Broadcast("room", []byte("overflow"), nil)

	assert.Equal(t, 1, hub.GroupSize("room"), "slow client should be evicted")
	assert.Equal(t, []byte("overflow"), recv(t, fast))

	cf := <-slow.closing
	assert.Equal(t, CloseInternalError, cf.code)
}

func TestCloseGroupClosesEveryMember(t *testing.T) {
	hub := NewHub()
	a := testClient(1)
	b := testClient(2)
	hub.Join("room", a)
	hub.Join("room", b)

	hub.CloseGroup("room", CloseNormal, "done")

	assert.Equal(t, 0, hub.GroupSize("room"))
	for _, c := range []*Client{a, b} {
		cf := <-c.closing
		assert.Equal(t, CloseNormal, cf.code)
		assert.Equal(t, "done", cf.reason)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := testClient(1)
	c.Close(CloseAuthFailed, "bad token")
	c.Close(CloseNormal, "later")

	cf := <-c.closing
	assert.Equal(t, CloseAuthFailed, cf.code)
	select {
	case <-c.closing:
		t.Fatal("second close frame queued")
	default:
	}
}
