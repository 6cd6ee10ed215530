package domain

import "time"

const (
	NotificationInfo                = "info"
	NotificationCreditAdded         = "credit_added"
	NotificationCreditSpent         = "credit_spent"
	NotificationChatStarted         = "chat_started"
	NotificationChatEnded           = "chat_ended"
	NotificationVideoCallStarted    = "video_call_started"
	NotificationVideoCallEnded      = "video_call_ended"
	NotificationMentorshipRequest   = "mentorship_request"
	NotificationMentorshipAccepted  = "mentorship_accepted"
	NotificationMentorshipRejected  = "mentorship_rejected"
	NotificationMentorshipCompleted = "mentorship_completed"
)

type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	Type      string    `db:"notification_type" json:"notification_type"`
	Link      *string   `db:"link" json:"link,omitempty"`
	CallID    *int64    `db:"call_id" json:"call_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
