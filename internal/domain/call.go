package domain

import "time"

// VideoCall transitions active -> ended exactly once. Ending settles the
// context's video credit offer between requester and helper.
type VideoCall struct {
	ID            int64      `db:"id" json:"id"`
	HelpRequestID *int64     `db:"help_request_id" json:"help_request_id,omitempty"`
	MentorshipID  *int64     `db:"mentorship_id" json:"mentorship_id,omitempty"`
	RequesterID   int64      `db:"requester_id" json:"requester_id"`
	HelperID      int64      `db:"helper_id" json:"helper_id"`
	StartedAt     time.Time  `db:"started_at" json:"started_at"`
	EndedAt       *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	IsActive      bool       `db:"is_active" json:"is_active"`
}
