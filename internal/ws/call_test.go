package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorFrame(t *testing.T, c *Client) string {
	t.Helper()
	var frame map[string]string
	require.NoError(t, json.Unmarshal(recv(t, c), &frame))
	require.Equal(t, "error", frame["type"])
	return frame["error"]
}

func TestSignalRelayForwardsVerbatim(t *testing.T) {
	hub := NewHub()
	relay := NewCallRelay(hub, nil)
	caller := testClient(1)
	callee := testClient(2)
	hub.Join("call:9", caller)
	hub.Join("call:9", callee)

	offer := []byte(`{"type":"offer","sdp":"v=0 ..."}`)
	relay.handleSignal(caller, "call:9", offer)

	assert.Equal(t, offer, recv(t, callee))
	select {
	case <-caller.Send:
		t.Fatal("sender received its own signal")
	default:
	}
}

func TestSignalRelayAnswersMalformedFrame(t *testing.T) {
	hub := NewHub()
	relay := NewCallRelay(hub, nil)
	caller := testClient(1)
	callee := testClient(2)
	hub.Join("call:9", caller)
	hub.Join("call:9", callee)

	relay.handleSignal(caller, "call:9", []byte("{not json"))

	assert.Equal(t, "malformed frame", errorFrame(t, caller))
	select {
	case <-callee.Send:
		t.Fatal("malformed frame reached the peer")
	default:
	}
}

func TestSignalRelayAnswersUnknownType(t *testing.T) {
	hub := NewHub()
	relay := NewCallRelay(hub, nil)
	caller := testClient(1)
	callee := testClient(2)
	hub.Join("call:9", caller)
	hub.Join("call:9", callee)

	relay.handleSignal(caller, "call:9", []byte(`{"type":"chat_message","message":"hi"}`))

	assert.Equal(t, "unsupported frame type", errorFrame(t, caller))
	select {
	case <-callee.Send:
		t.Fatal("unsupported frame reached the peer")
	default:
	}
}
