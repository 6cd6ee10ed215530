package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotParticipant   = errors.New("user is not a participant of this session")
	ErrAlreadyEnded     = errors.New("session already ended")
	ErrOwnHelpRequest   = errors.New("cannot start a session on your own help request")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMentorshipClosed = errors.New("mentorship is not active")
	ErrHelperOnlyAction = errors.New("only the helper can start a call")
	ErrNoCreditOffer    = errors.New("help request offers no credits for this channel")
)

// ChatGroup names the broadcast group for a chat room.
func ChatGroup(roomKey string) string {
	return "chat:" + roomKey
}

// CallGroup names the signaling group for a video call.
func CallGroup(callID int64) string {
	return fmt.Sprintf("call:%d", callID)
}

// RoomNotifier is the hub-side surface for session lifecycle fan-out: a
// terminal broadcast to the room followed by closing every member socket.
type RoomNotifier interface {
	Pusher
	CloseGroup(group string, code int, reason string)
}

// SessionService drives the chat and video call lifecycle. Settlement of the
// context's credit offers happens exactly once per session, on the end
// transition, through the event router.
type SessionService struct {
	chats       *repository.ChatRepository
	calls       *repository.CallRepository
	requests    *repository.HelpRequestRepository
	mentorships *repository.MentorshipRepository
	users       *repository.UserRepository
	router      *EventRouter
	notifs      *NotificationService
	rooms       RoomNotifier
}

func NewSessionService(
	chats *repository.ChatRepository,
	calls *repository.CallRepository,
	requests *repository.HelpRequestRepository,
	mentorships *repository.MentorshipRepository,
	users *repository.UserRepository,
	router *EventRouter,
	notifs *NotificationService,
	rooms RoomNotifier,
) *SessionService {
	return &SessionService{
		chats:       chats,
		calls:       calls,
		requests:    requests,
		mentorships: mentorships,
		users:       users,
		router:      router,
		notifs:      notifs,
		rooms:       rooms,
	}
}

// StartChat opens (or rejoins) the chat session between a helper and the
// owner of a help request. The owner cannot help their own request, and the
// request must carry a chat credit offer for there to be anything to settle.
func (s *SessionService) StartChat(ctx context.Context, helpRequestID, helperID int64) (*domain.ChatSession, error) {
	hr, err := s.requests.GetByID(ctx, helpRequestID)
	if err != nil {
		return nil, err
	}
	if hr.CreatedBy == helperID {
		return nil, ErrOwnHelpRequest
	}
	if hr.CreditOfferChat <= 0 {
		return nil, ErrNoCreditOffer
	}

	session := &domain.ChatSession{
		RoomKey:       uuid.NewString(),
		HelpRequestID: &hr.ID,
		RequesterID:   hr.CreatedBy,
		HelperID:      helperID,
	}
	created, err := s.chats.GetOrCreateSession(ctx, session)
	if err != nil {
		return nil, err
	}

	if created {
		helper, err := s.users.GetByID(ctx, helperID)
		if err != nil {
			return nil, err
		}
		link := fmt.Sprintf("/chats/%s", session.RoomKey)
		s.notifyOrLog(ctx, &domain.Notification{
			UserID:  hr.CreatedBy,
			Message: fmt.Sprintf("%s started a chat for your help request: %s", helper.Username, hr.Title),
			Type:    domain.NotificationChatStarted,
			Link:    &link,
		})
	}
	return session, nil
}

// StartMentorshipChat opens the mentorship's chat session. The room key is
// the mentorship's stable chat room id, so both sides always land in the
// same room.
func (s *SessionService) StartMentorshipChat(ctx context.Context, mentorshipID, actorID int64) (*domain.ChatSession, error) {
	m, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}
	if actorID != m.LearnerID && actorID != m.MentorID {
		return nil, ErrNotParticipant
	}
	if m.Status != domain.MentorshipActive {
		return nil, ErrMentorshipClosed
	}

	session := &domain.ChatSession{
		RoomKey:      m.ChatRoomID,
		MentorshipID: &m.ID,
		RequesterID:  m.LearnerID,
		HelperID:     m.MentorID,
	}
	if _, err := s.chats.GetOrCreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// EndChat ends the session, settles the context's chat credit offer, and
// closes every socket in the room. A second end returns ErrAlreadyEnded and
// settles nothing.
func (s *SessionService) EndChat(ctx context.Context, sessionID, actorID int64) error {
	session, err := s.chats.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if actorID != session.RequesterID && actorID != session.HelperID {
		return ErrNotParticipant
	}

	ended, err := s.chats.EndSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !ended {
		return ErrAlreadyEnded
	}

	sc, err := s.resolveContext(ctx, session.HelpRequestID, session.MentorshipID)
	if err != nil {
		return err
	}

	if err := s.router.Dispatch(ctx, ChatEnded{
		RequesterID: session.RequesterID,
		HelperID:    session.HelperID,
		Fee:         sc.ChatFee(),
		Title:       sc.Title(),
	}); err != nil {
		return err
	}

	s.notifyOrLog(ctx, &domain.Notification{
		UserID:  otherParticipant(session.RequesterID, session.HelperID, actorID),
		Message: fmt.Sprintf("Chat for %s has ended", sc.Title()),
		Type:    domain.NotificationChatEnded,
	})

	payload, _ := json.Marshal(map[string]any{
		"type":    "chat_ended",
		"message": map[string]string{"status": "chat_ended"},
	})
	group := ChatGroup(session.RoomKey)
	s.rooms.Push(group, payload)
	s.rooms.CloseGroup(group, 1000, "chat ended")
	return nil
}

// StartCall creates a video call on a help request. Only the helper side
// initiates, the request must carry a video credit offer, and the request
// owner is notified with the call id so their client can join the signaling
// room.
func (s *SessionService) StartCall(ctx context.Context, helpRequestID, helperID int64) (*domain.VideoCall, error) {
	hr, err := s.requests.GetByID(ctx, helpRequestID)
	if err != nil {
		return nil, err
	}
	if hr.CreatedBy == helperID {
		return nil, ErrHelperOnlyAction
	}
	if hr.CreditOfferVideo <= 0 {
		return nil, ErrNoCreditOffer
	}

	call := &domain.VideoCall{
		HelpRequestID: &hr.ID,
		RequesterID:   hr.CreatedBy,
		HelperID:      helperID,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, err
	}

	helper, err := s.users.GetByID(ctx, helperID)
	if err != nil {
		return nil, err
	}
	s.notifyOrLog(ctx, &domain.Notification{
		UserID:  hr.CreatedBy,
		Message: fmt.Sprintf("%s started a video call for your help request: %s", helper.Username, hr.Title),
		Type:    domain.NotificationVideoCallStarted,
		CallID:  &call.ID,
	})
	return call, nil
}

// StartMentorshipCall creates a fee-less video call between an active
// mentorship's participants.
func (s *SessionService) StartMentorshipCall(ctx context.Context, mentorshipID, actorID int64) (*domain.VideoCall, error) {
	m, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}
	if actorID != m.LearnerID && actorID != m.MentorID {
		return nil, ErrNotParticipant
	}
	if m.Status != domain.MentorshipActive {
		return nil, ErrMentorshipClosed
	}

	call := &domain.VideoCall{
		MentorshipID: &m.ID,
		RequesterID:  m.LearnerID,
		HelperID:     m.MentorID,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, err
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	s.notifyOrLog(ctx, &domain.Notification{
		UserID:  otherParticipant(m.LearnerID, m.MentorID, actorID),
		Message: fmt.Sprintf("%s started a video call for your mentorship in %s", actor.Username, m.Skill),
		Type:    domain.NotificationVideoCallStarted,
		CallID:  &call.ID,
	})
	return call, nil
}

// EndCall ends the call, settles the context's video credit offer, and tears
// down the signaling room. Double ends are rejected.
func (s *SessionService) EndCall(ctx context.Context, callID, actorID int64) error {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if actorID != call.RequesterID && actorID != call.HelperID {
		return ErrNotParticipant
	}

	ended, err := s.calls.End(ctx, callID, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ended {
		return ErrAlreadyEnded
	}

	sc, err := s.resolveContext(ctx, call.HelpRequestID, call.MentorshipID)
	if err != nil {
		return err
	}

	if err := s.router.Dispatch(ctx, CallEnded{
		CallID:      call.ID,
		RequesterID: call.RequesterID,
		HelperID:    call.HelperID,
		Fee:         sc.VideoFee(),
		Title:       sc.Title(),
	}); err != nil {
		return err
	}

	s.notifyOrLog(ctx, &domain.Notification{
		UserID:  otherParticipant(call.RequesterID, call.HelperID, actorID),
		Message: fmt.Sprintf("Video call for %s has ended", sc.Title()),
		Type:    domain.NotificationVideoCallEnded,
		CallID:  &call.ID,
	})

	payload, _ := json.Marshal(map[string]any{"type": "call_ended", "call_id": call.ID})
	group := CallGroup(call.ID)
	s.rooms.Push(group, payload)
	s.rooms.CloseGroup(group, 1000, "call ended")
	return nil
}

func (s *SessionService) resolveContext(ctx context.Context, helpRequestID, mentorshipID *int64) (domain.SessionContext, error) {
	switch {
	case helpRequestID != nil:
		hr, err := s.requests.GetByID(ctx, *helpRequestID)
		if err != nil {
			return domain.SessionContext{}, err
		}
		return domain.HelpRequestContext(hr), nil
	case mentorshipID != nil:
		m, err := s.mentorships.GetByID(ctx, *mentorshipID)
		if err != nil {
			return domain.SessionContext{}, err
		}
		return domain.MentorshipContext(m), nil
	default:
		return domain.SessionContext{}, errors.New("session has no context")
	}
}

func (s *SessionService) notifyOrLog(ctx context.Context, n *domain.Notification) {
	if err := s.notifs.Notify(ctx, n); err != nil {
		logger.Error("session notification failed", "user_id", n.UserID, "type", n.Type, "error", err)
	}
}

func otherParticipant(requesterID, helperID, actorID int64) int64 {
	if actorID == requesterID {
		return helperID
	}
	return requesterID
}
