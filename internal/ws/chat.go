package ws

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/repository"
	"github.com/mijwad7/elevateHub/internal/service"
)

// Room is a resolved chat room: the broadcast key plus the two users allowed
// inside.
type Room struct {
	Key         string
	RequesterID int64
	HelperID    int64
}

// Authorize reports whether the user may join the room.
func (r *Room) Authorize(userID int64) error {
	if userID != r.RequesterID && userID != r.HelperID {
		return ErrNotParticipant
	}
	return nil
}

// ChatRelay serves chat rooms: history replay on join, then persist-and-fan-out
// for every inbound message. Persistence order equals broadcast order within a
// room.
type ChatRelay struct {
	hub         *Hub
	chats       *repository.ChatRepository
	mentorships *repository.MentorshipRepository
	users       *repository.UserRepository

	mu        sync.Mutex
	roomLocks map[string]*sync.Mutex
}

func NewChatRelay(hub *Hub, chats *repository.ChatRepository, mentorships *repository.MentorshipRepository, users *repository.UserRepository) *ChatRelay {
	return &ChatRelay{
		hub:         hub,
		chats:       chats,
		mentorships: mentorships,
		users:       users,
		roomLocks:   make(map[string]*sync.Mutex),
	}
}

// Resolve maps a room key to a room. Help sessions are looked up first, then
// mentorship chat rooms; an unknown key, an ended session, and a closed
// mentorship are all ErrRoomNotFound.
func (r *ChatRelay) Resolve(ctx context.Context, roomKey string) (*Room, error) {
	session, err := r.chats.GetSessionByRoomKey(ctx, roomKey)
	if err == nil {
		if !session.IsActive {
			return nil, ErrRoomNotFound
		}
		return &Room{Key: session.RoomKey, RequesterID: session.RequesterID, HelperID: session.HelperID}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	m, err := r.mentorships.GetByChatRoomID(ctx, roomKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if m.Status != domain.MentorshipActive {
		return nil, ErrRoomNotFound
	}
	return &Room{Key: m.ChatRoomID, RequesterID: m.LearnerID, HelperID: m.MentorID}, nil
}

// Serve replays the room history in commit order, joins the broadcast group,
// and relays inbound messages until the connection drops. The caller has
// already authorized the user.
func (r *ChatRelay) Serve(ctx context.Context, c *Client, room *Room) {
	history, err := r.chats.ListMessages(ctx, room.Key)
	if err != nil {
		logger.Error("chat history load failed", "room", room.Key, "error", err)
		c.Close(CloseInternalError, "history unavailable")
		return
	}

	names := make(map[int64]chatSender)
	for _, m := range history {
		payload, err := r.frame(ctx, m, names)
		if err != nil {
			continue
		}
		if !c.Enqueue(payload) {
			c.Close(CloseInternalError, "send queue overflow")
			return
		}
	}

	group := service.ChatGroup(room.Key)
	r.hub.Join(group, c)

	c.ReadLoop(func(msg []byte) {
		r.handleInbound(ctx, c, room, group, names, msg)
	})
	r.hub.RemoveClient(c)
}

func (r *ChatRelay) handleInbound(ctx context.Context, c *Client, room *Room, group string, names map[int64]chatSender, msg []byte) {
	var in inboundChat
	if err := json.Unmarshal(msg, &in); err != nil {
		sendError(c, "malformed frame")
		return
	}
	if (in.Message == nil || *in.Message == "") && in.Image == nil {
		sendError(c, "message or image required")
		return
	}

	// One message at a time per room: broadcast order must match the order
	// rows hit the database.
	lock := r.roomLock(room.Key)
	lock.Lock()
	defer lock.Unlock()

	m := &domain.ChatMessage{RoomKey: room.Key, SenderID: c.UserID, Content: in.Message}
	if err := r.chats.CreateMessage(ctx, m); err != nil {
		logger.Error("chat message persist failed", "room", room.Key, "error", err)
		sendError(c, "message not saved")
		return
	}

	if in.Image != nil {
		data, err := decodeImage(*in.Image)
		if err == nil {
			err = r.chats.SetImage(ctx, m.ID, data)
		}
		if err != nil {
			// The half-written row must not survive a bad image payload.
			if delErr := r.chats.DeleteMessage(ctx, m.ID); delErr != nil {
				logger.Error("chat message rollback failed", "message_id", m.ID, "error", delErr)
			}
			sendError(c, "invalid image")
			return
		}
		m.Image = data
	}

	payload, err := r.frame(ctx, m, names)
	if err != nil {
		logger.Error("chat frame marshal failed", "message_id", m.ID, "error", err)
		return
	}

	r.hub.Broadcast(group, payload, c)
	// The sender gets one direct copy as the delivery acknowledgement.
	c.Enqueue(payload)
}

func (r *ChatRelay) frame(ctx context.Context, m *domain.ChatMessage, names map[int64]chatSender) ([]byte, error) {
	out := outboundChatMessage{
		ID:        m.ID,
		Sender:    r.sender(ctx, m.SenderID, names),
		Content:   m.Content,
		Timestamp: m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(m.Image) > 0 {
		url := fmt.Sprintf("/api/chat-messages/%d/image", m.ID)
		out.ImageURL = &url
	}
	return json.Marshal(out)
}

func (r *ChatRelay) sender(ctx context.Context, userID int64, names map[int64]chatSender) chatSender {
	if s, ok := names[userID]; ok {
		return s
	}
	s := chatSender{ID: userID}
	if u, err := r.users.GetByID(ctx, userID); err == nil {
		s.Username = u.Username
		s.ProfileImage = u.ProfileImage
	}
	names[userID] = s
	return s
}

func (r *ChatRelay) roomLock(roomKey string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.roomLocks[roomKey]
	if !ok {
		lock = &sync.Mutex{}
		r.roomLocks[roomKey] = lock
	}
	return lock
}

// sendError answers a bad inbound frame on the same connection without
// closing it.
func sendError(c *Client, reason string) {
	payload, err := json.Marshal(map[string]string{"type": "error", "error": reason})
	if err != nil {
		return
	}
	c.Enqueue(payload)
}

// decodeImage accepts raw base64 or a data: URL and returns the image bytes.
func decodeImage(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return nil, errors.New("malformed data url")
		}
		s = s[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty image")
	}
	return data, nil
}
