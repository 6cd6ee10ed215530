package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mijwad7/elevateHub/internal/repository"
)

func TestNotificationBacklogThenLive(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	reporter := registerUser(t, srv)

	// two rewards before connecting: these form the unread backlog
	first := uniqueTargetID()
	second := first + 1
	postJSON(t, srv, reporter.Token, "/api/events/upvote", map[string]any{
		"kind": "post", "target_id": first, "owner_id": owner.ID, "title": "older post",
	}, http.StatusAccepted)
	postJSON(t, srv, reporter.Token, "/api/events/upvote", map[string]any{
		"kind": "post", "target_id": second, "owner_id": owner.ID, "title": "newer post",
	}, http.StatusAccepted)

	conn := dialWS(t, srv, "/api/ws/notifications?token="+owner.Token)

	// backlog arrives newest first, before anything live
	backlog1 := readFrame(t, conn)
	backlog2 := readFrame(t, conn)
	require.Equal(t, "notification", backlog1["type"])
	require.Equal(t, "notification", backlog2["type"])
	n1 := backlog1["notification"].(map[string]any)
	n2 := backlog2["notification"].(map[string]any)
	assert.Contains(t, n1["message"], "newer post")
	assert.Contains(t, n2["message"], "older post")

	// a reward fired while connected arrives live, after the backlog
	third := first + 2
	postJSON(t, srv, reporter.Token, "/api/events/upvote", map[string]any{
		"kind": "post", "target_id": third, "owner_id": owner.ID, "title": "live post",
	}, http.StatusAccepted)

	live := readFrame(t, conn)
	require.Equal(t, "notification", live["type"])
	assert.Contains(t, live["notification"].(map[string]any)["message"], "live post")
}

func TestNotificationDeliveredToOwnerExactlyOnce(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	bystander := registerUser(t, srv)
	reporter := registerUser(t, srv)

	ownerConn := dialWS(t, srv, "/api/ws/notifications?token="+owner.Token)
	bystanderConn := dialWS(t, srv, "/api/ws/notifications?token="+bystander.Token)

	postJSON(t, srv, reporter.Token, "/api/events/upvote", map[string]any{
		"kind": "post", "target_id": uniqueTargetID(), "owner_id": owner.ID, "title": "solo",
	}, http.StatusAccepted)

	live := readFrame(t, ownerConn)
	require.Equal(t, "notification", live["type"])
	assert.Contains(t, live["notification"].(map[string]any)["message"], "solo")

	// one copy for the owner, nothing for anyone else
	expectNoFrame(t, ownerConn)
	expectNoFrame(t, bystanderConn)
}

func TestDuplicateUpvoteGrantsNothing(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	reporter := registerUser(t, srv)

	target := uniqueTargetID()
	payload := map[string]any{
		"kind": "resource", "target_id": target, "owner_id": owner.ID, "title": "guide",
	}
	postJSON(t, srv, reporter.Token, "/api/events/upvote", payload, http.StatusAccepted)
	postJSON(t, srv, reporter.Token, "/api/events/upvote", payload, http.StatusAccepted)

	assert.Equal(t, int64(1), balanceOf(t, srv, owner))
}

func createHelpRequest(t *testing.T, srv *httptest.Server, owner *testUser, chatFee, videoFee int64) int64 {
	t.Helper()
	hr := postJSON(t, srv, owner.Token, "/api/help-requests", map[string]any{
		"title":              "help me " + uuid.NewString()[:8],
		"description":        "stuck on a bug",
		"credit_offer_chat":  chatFee,
		"credit_offer_video": videoFee,
	}, http.StatusCreated)
	return int64(hr["id"].(float64))
}

func startChatSession(t *testing.T, srv *httptest.Server, owner, helper *testUser, chatFee int64) (roomKey string, sessionID int64) {
	t.Helper()
	hrID := createHelpRequest(t, srv, owner, chatFee, 0)
	session := postJSON(t, srv, helper.Token,
		fmt.Sprintf("/api/help-requests/%d/chats", hrID), map[string]any{}, http.StatusCreated)
	return session["room_key"].(string), int64(session["id"].(float64))
}

func TestStartSessionRequiresCreditOffer(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)

	// chat offer present, video offer absent
	hrID := createHelpRequest(t, srv, owner, 3, 0)
	postJSON(t, srv, helper.Token,
		fmt.Sprintf("/api/help-requests/%d/calls", hrID), map[string]any{}, http.StatusBadRequest)

	// video offer present, chat offer absent
	hrID = createHelpRequest(t, srv, owner, 0, 3)
	postJSON(t, srv, helper.Token,
		fmt.Sprintf("/api/help-requests/%d/chats", hrID), map[string]any{}, http.StatusBadRequest)
}

func TestChatRoomCloseCodes(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)
	stranger := registerUser(t, srv)

	roomKey, _ := startChatSession(t, srv, owner, helper, 2)

	// bad token: refused after the upgrade with 4001
	badToken := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token=garbage")
	expectClose(t, badToken, 4001)

	// unknown room: 4000
	unknown := dialWS(t, srv, "/api/ws/chat/"+uuid.NewString()+"?token="+owner.Token)
	expectClose(t, unknown, 4000)

	// authenticated non-participant: 4003
	outsider := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+stranger.Token)
	expectClose(t, outsider, 4003)
}

func TestCallRoomCloseCodes(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)
	stranger := registerUser(t, srv)

	hrID := createHelpRequest(t, srv, owner, 0, 4)
	call := postJSON(t, srv, helper.Token,
		fmt.Sprintf("/api/help-requests/%d/calls", hrID), map[string]any{}, http.StatusCreated)
	callID := int64(call["id"].(float64))

	// authenticated non-participant: 4003
	outsider := dialWS(t, srv, fmt.Sprintf("/api/ws/call/%d?token=%s", callID, stranger.Token))
	expectClose(t, outsider, 4003)

	// unknown call: 4000
	unknown := dialWS(t, srv, fmt.Sprintf("/api/ws/call/%d?token=%s", callID+100000, owner.Token))
	expectClose(t, unknown, 4000)
}

func TestChatBroadcastAndReplay(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)
	roomKey, _ := startChatSession(t, srv, owner, helper, 2)

	ownerConn := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+owner.Token)

	// the echoed ack proves the owner is subscribed before the helper joins
	require.NoError(t, ownerConn.WriteJSON(map[string]any{"message": "are you there?"}))
	ownerAck := readFrame(t, ownerConn)
	require.Equal(t, "are you there?", ownerAck["content"])

	// an empty frame is answered with an error, without closing
	require.NoError(t, ownerConn.WriteJSON(map[string]any{}))
	errFrame := readFrame(t, ownerConn)
	require.Equal(t, "error", errFrame["type"])

	// the helper's join replays the existing message first
	helperConn := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+helper.Token)
	replayed := readFrame(t, helperConn)
	assert.Equal(t, "are you there?", replayed["content"])

	require.NoError(t, helperConn.WriteJSON(map[string]any{"message": "take a look at the stack trace"}))

	// the other participant receives the broadcast
	frame := readFrame(t, ownerConn)
	assert.Equal(t, "take a look at the stack trace", frame["content"])
	assert.Equal(t, helper.Name, frame["sender"].(map[string]any)["username"])

	// the sender receives exactly one copy back as the ack
	helperAck := readFrame(t, helperConn)
	assert.Equal(t, "take a look at the stack trace", helperAck["content"])

	// a late joiner gets the full history in order, before anything live
	lateConn := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+owner.Token)
	first := readFrame(t, lateConn)
	second := readFrame(t, lateConn)
	assert.Equal(t, "are you there?", first["content"])
	assert.Equal(t, "take a look at the stack trace", second["content"])
}

func TestImageDecodeFailureLeavesNoRow(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)
	roomKey, _ := startChatSession(t, srv, owner, helper, 2)

	conn := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+owner.Token)

	require.NoError(t, conn.WriteJSON(map[string]any{"image": "%%%not-base64%%%"}))
	errFrame := readFrame(t, conn)
	require.Equal(t, "error", errFrame["type"])

	// the rollback ran before the error reply, so the history is still empty
	chats := repository.NewChatRepository(pool)
	msgs, err := chats.ListMessages(context.Background(), roomKey)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestEndChatSettlesExactlyOnce(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	owner := registerUser(t, srv)
	helper := registerUser(t, srv)
	reporter := registerUser(t, srv)

	// fund the owner: a first download of their resource is worth 5
	postJSON(t, srv, reporter.Token, "/api/events/download", map[string]any{
		"resource_id": uniqueTargetID(), "owner_id": owner.ID, "title": "notes",
	}, http.StatusAccepted)
	require.Equal(t, int64(5), balanceOf(t, srv, owner))

	roomKey, sessionID := startChatSession(t, srv, owner, helper, 5)

	// an open connection in the room sees the terminal frame, then 1000
	ownerConn := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+owner.Token)

	// the echoed ack proves the subscription is live before the end fires
	require.NoError(t, ownerConn.WriteJSON(map[string]any{"message": "wrapping up"}))
	ack := readFrame(t, ownerConn)
	require.Equal(t, "wrapping up", ack["content"])

	postJSON(t, srv, helper.Token, fmt.Sprintf("/api/chats/%d/end", sessionID),
		map[string]any{}, http.StatusOK)

	terminal := readFrame(t, ownerConn)
	require.Equal(t, "chat_ended", terminal["type"])
	expectClose(t, ownerConn, 1000)

	assert.Equal(t, int64(0), balanceOf(t, srv, owner))
	assert.Equal(t, int64(5), balanceOf(t, srv, helper))

	// the second end must change nothing
	postJSON(t, srv, helper.Token, fmt.Sprintf("/api/chats/%d/end", sessionID),
		map[string]any{}, http.StatusConflict)
	assert.Equal(t, int64(0), balanceOf(t, srv, owner))
	assert.Equal(t, int64(5), balanceOf(t, srv, helper))

	// the room is gone: reconnecting to the ended session is refused
	reconnect := dialWS(t, srv, "/api/ws/chat/"+roomKey+"?token="+owner.Token)
	expectClose(t, reconnect, 4000)
}

func TestMentorshipLifecycleLedger(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	learner := registerUser(t, srv)
	mentor := registerUser(t, srv)
	reporter := registerUser(t, srv)

	// fund the learner with three first downloads
	for i := 0; i < 3; i++ {
		postJSON(t, srv, reporter.Token, "/api/events/download", map[string]any{
			"resource_id": uniqueTargetID() + int64(i), "owner_id": learner.ID, "title": "notes",
		}, http.StatusAccepted)
	}
	require.Equal(t, int64(15), balanceOf(t, srv, learner))

	m := postJSON(t, srv, learner.Token, "/api/mentorships", map[string]any{
		"mentor_id": mentor.ID, "skill": "Go concurrency",
	}, http.StatusCreated)
	mentorshipID := int64(m["id"].(float64))

	// request fee charged up front
	assert.Equal(t, int64(0), balanceOf(t, srv, learner))

	postJSON(t, srv, mentor.Token,
		fmt.Sprintf("/api/mentorships/%d/accept", mentorshipID), map[string]any{}, http.StatusOK)
	assert.Equal(t, int64(10), balanceOf(t, srv, mentor))

	postJSON(t, srv, learner.Token,
		fmt.Sprintf("/api/mentorships/%d/complete", mentorshipID),
		map[string]any{"rating": 5, "feedback": "great"}, http.StatusOK)
	assert.Equal(t, int64(30), balanceOf(t, srv, mentor))
}

func TestMentorshipRequestWithoutFundsFails(t *testing.T) {
	pool := setupPool(t)
	srv := setupServer(t, pool)

	learner := registerUser(t, srv)
	mentor := registerUser(t, srv)

	postJSON(t, srv, learner.Token, "/api/mentorships", map[string]any{
		"mentor_id": mentor.ID, "skill": "Go",
	}, http.StatusPaymentRequired)
	assert.Equal(t, int64(0), balanceOf(t, srv, learner))
}
