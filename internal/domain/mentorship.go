package domain

import "time"

const (
	MentorshipPending   = "pending"
	MentorshipActive    = "active"
	MentorshipCompleted = "completed"
)

// Mentorship pairs a learner with a mentor around a skill. ChatRoomID is the
// stable room identifier for the mentorship's chat channel.
type Mentorship struct {
	ID             int64      `db:"id" json:"id"`
	LearnerID      int64      `db:"learner_id" json:"learner_id"`
	MentorID       int64      `db:"mentor_id" json:"mentor_id"`
	Skill          string     `db:"skill" json:"skill"`
	Status         string     `db:"status" json:"status"`
	Rating         *int       `db:"rating" json:"rating,omitempty"`
	Feedback       *string    `db:"feedback" json:"feedback,omitempty"`
	ChatRoomID     string     `db:"chat_room_id" json:"chat_room_id"`
	AutoCompleteAt *time.Time `db:"auto_complete_at" json:"auto_complete_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
