package domain

import "time"

// ChatSession is a help conversation between a requester and a helper.
// RoomKey identifies the broadcast group; for mentorship-backed sessions it
// equals the mentorship's ChatRoomID. A session that has been ended stays
// inactive forever; a new session is created instead of reactivating.
type ChatSession struct {
	ID            int64     `db:"id" json:"id"`
	RoomKey       string    `db:"room_key" json:"room_key"`
	HelpRequestID *int64    `db:"help_request_id" json:"help_request_id,omitempty"`
	MentorshipID  *int64    `db:"mentorship_id" json:"mentorship_id,omitempty"`
	RequesterID   int64     `db:"requester_id" json:"requester_id"`
	HelperID      int64     `db:"helper_id" json:"helper_id"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ChatMessage is one message in a chat room. At least one of Content/Image
// is present. Image holds the decoded bytes; the wire format exposes a URL.
type ChatMessage struct {
	ID        int64     `db:"id" json:"id"`
	RoomKey   string    `db:"room_key" json:"room_key"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Content   *string   `db:"content" json:"content,omitempty"`
	Image     []byte    `db:"image" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
