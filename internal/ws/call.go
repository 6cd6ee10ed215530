package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"
)

// CallRelay serves video call signaling rooms. Frames are forwarded verbatim
// to the other members; the relay never interprets SDP or ICE payloads.
type CallRelay struct {
	hub   *Hub
	calls *repository.CallRepository
}

func NewCallRelay(hub *Hub, calls *repository.CallRepository) *CallRelay {
	return &CallRelay{hub: hub, calls: calls}
}

// Resolve loads the call behind a signaling room. Unknown and already ended
// calls are both ErrRoomNotFound: there is nothing left to signal into.
func (r *CallRelay) Resolve(ctx context.Context, callID int64) (*domain.VideoCall, error) {
	call, err := r.calls.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !call.IsActive {
		return nil, ErrRoomNotFound
	}
	return call, nil
}

// Authorize reports whether the user belongs on the call.
func (r *CallRelay) Authorize(call *domain.VideoCall, userID int64) error {
	if userID != call.RequesterID && userID != call.HelperID {
		return ErrNotParticipant
	}
	return nil
}

// Serve joins the signaling group and relays offer/answer/candidate and track
// status frames to the peer until the connection drops.
func (r *CallRelay) Serve(ctx context.Context, c *Client, call *domain.VideoCall) {
	group := service.CallGroup(call.ID)
	r.hub.Join(group, c)

	c.ReadLoop(func(msg []byte) {
		r.handleSignal(c, group, msg)
	})
	r.hub.RemoveClient(c)
}

// handleSignal forwards a recognized frame verbatim to the other members.
// Anything else is answered with an error frame; the connection stays open.
func (r *CallRelay) handleSignal(c *Client, group string, msg []byte) {
	var sig inboundSignal
	if err := json.Unmarshal(msg, &sig); err != nil {
		sendError(c, "malformed frame")
		return
	}
	if _, ok := signalTypes[sig.Type]; !ok {
		sendError(c, "unsupported frame type")
		return
	}
	r.hub.Broadcast(group, msg, c)
}
