package service

import (
	"context"
	"errors"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/logger"
	"github.com/mijwad7/elevateHub/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSelfMentorship    = errors.New("cannot request mentorship from yourself")
	ErrDuplicateRequest  = errors.New("an open mentorship with this mentor for this skill already exists")
	ErrInvalidTransition = errors.New("mentorship is not in the required state")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
)

// MentorshipService runs the request / accept / reject / complete lifecycle.
// Every lifecycle step that moves credits goes through the event router, so
// the fee, the acceptance reward, and the rating bonus are settled in one
// place.
type MentorshipService struct {
	mentorships *repository.MentorshipRepository
	users       *repository.UserRepository
	router      *EventRouter
}

func NewMentorshipService(mentorships *repository.MentorshipRepository, users *repository.UserRepository, router *EventRouter) *MentorshipService {
	return &MentorshipService{mentorships: mentorships, users: users, router: router}
}

// Request creates a pending mentorship and charges the learner the request
// fee. When the learner cannot afford the fee the request is rolled back and
// nothing persists.
func (s *MentorshipService) Request(ctx context.Context, learnerID, mentorID int64, skill string) (*domain.Mentorship, error) {
	if learnerID == mentorID {
		return nil, ErrSelfMentorship
	}
	learner, err := s.users.GetByID(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	mentor, err := s.users.GetByID(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	open, err := s.mentorships.HasPendingOrActive(ctx, learnerID, mentorID, skill)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrDuplicateRequest
	}

	m := &domain.Mentorship{
		LearnerID:  learnerID,
		MentorID:   mentorID,
		Skill:      skill,
		Status:     domain.MentorshipPending,
		ChatRoomID: uuid.NewString(),
	}
	if err := s.mentorships.Create(ctx, m); err != nil {
		return nil, err
	}

	err = s.router.Dispatch(ctx, MentorshipRequested{
		MentorshipID: m.ID,
		LearnerID:    learnerID,
		LearnerName:  learner.Username,
		MentorID:     mentorID,
		MentorName:   mentor.Username,
		Skill:        skill,
	})
	if err != nil {
		// Unpaid requests must not persist.
		if delErr := s.mentorships.Delete(ctx, m.ID); delErr != nil {
			logger.Error("failed to remove unpaid mentorship request",
				"mentorship_id", m.ID, "error", delErr)
		}
		return nil, err
	}
	return m, nil
}

// Accept activates a pending request, rewards the mentor, and schedules the
// auto-complete horizon. Only the mentor may accept.
func (s *MentorshipService) Accept(ctx context.Context, mentorshipID, actorID int64) (*domain.Mentorship, error) {
	m, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}
	if actorID != m.MentorID {
		return nil, ErrNotParticipant
	}

	moved, err := s.mentorships.Transition(ctx, m.ID, domain.MentorshipPending, domain.MentorshipActive)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidTransition
	}
	m.Status = domain.MentorshipActive

	if err := s.mentorships.SetAutoComplete(ctx, m.ID, m); err != nil {
		return nil, err
	}

	learner, err := s.users.GetByID(ctx, m.LearnerID)
	if err != nil {
		return nil, err
	}
	mentor, err := s.users.GetByID(ctx, m.MentorID)
	if err != nil {
		return nil, err
	}

	err = s.router.Dispatch(ctx, MentorshipAccepted{
		MentorshipID: m.ID,
		LearnerID:    m.LearnerID,
		LearnerName:  learner.Username,
		MentorID:     m.MentorID,
		MentorName:   mentor.Username,
		Skill:        m.Skill,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Reject refunds the learner's fee and removes the request. Only the mentor
// may reject, and only while the request is pending.
func (s *MentorshipService) Reject(ctx context.Context, mentorshipID, actorID int64) error {
	m, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		return err
	}
	if actorID != m.MentorID {
		return ErrNotParticipant
	}
	if m.Status != domain.MentorshipPending {
		return ErrInvalidTransition
	}

	mentor, err := s.users.GetByID(ctx, m.MentorID)
	if err != nil {
		return err
	}

	err = s.router.Dispatch(ctx, MentorshipRejected{
		LearnerID:  m.LearnerID,
		MentorName: mentor.Username,
		Skill:      m.Skill,
	})
	if err != nil {
		return err
	}
	return s.mentorships.Delete(ctx, m.ID)
}

// Complete closes an active mentorship with optional rating and feedback.
// Only the learner may complete; a rating of 4 or 5 earns the mentor a bonus.
func (s *MentorshipService) Complete(ctx context.Context, mentorshipID, actorID int64, rating *int, feedback *string) (*domain.Mentorship, error) {
	m, err := s.mentorships.GetByID(ctx, mentorshipID)
	if err != nil {
		return nil, err
	}
	if actorID != m.LearnerID {
		return nil, ErrNotParticipant
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, ErrInvalidRating
	}

	moved, err := s.mentorships.Transition(ctx, m.ID, domain.MentorshipActive, domain.MentorshipCompleted)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrInvalidTransition
	}
	m.Status = domain.MentorshipCompleted

	if err := s.mentorships.SetFeedback(ctx, m.ID, feedback, rating); err != nil {
		return nil, err
	}
	m.Rating = rating
	m.Feedback = feedback

	learner, err := s.users.GetByID(ctx, m.LearnerID)
	if err != nil {
		return nil, err
	}

	err = s.router.Dispatch(ctx, MentorshipCompleted{
		MentorshipID: m.ID,
		LearnerID:    m.LearnerID,
		LearnerName:  learner.Username,
		MentorID:     m.MentorID,
		Skill:        m.Skill,
		Rating:       rating,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
