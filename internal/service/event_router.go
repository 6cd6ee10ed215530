package service

import (
	"context"
	"fmt"

	"github.com/mijwad7/elevateHub/internal/domain"
	"github.com/mijwad7/elevateHub/internal/logger"
)

// Rewards carries the credit amounts attached to domain events.
type Rewards struct {
	Upvote           int64
	Download         int64
	MentorshipFee    int64
	MentorshipAccept int64
	MentorshipRating int64
}

func DefaultRewards() Rewards {
	return Rewards{
		Upvote:           1,
		Download:         5,
		MentorshipFee:    15,
		MentorshipAccept: 10,
		MentorshipRating: 20,
	}
}

// Event is the closed set of domain events the router understands. The CRUD
// layer reports what happened and who is entitled to the outcome; the router
// owns the ledger mutation and the user-facing notification.
type Event interface {
	isEvent()
}

// UpvoteAdded fires on the first upvote of a post, comment, or resource.
type UpvoteAdded struct {
	Kind     string // "post" | "comment" | "resource"
	TargetID int64
	OwnerID  int64
	Title    string
}

// ResourceDownloaded fires on every download; only the first one per
// resource rewards the uploader.
type ResourceDownloaded struct {
	ResourceID int64
	OwnerID    int64
	Title      string
}

// ChatEnded settles a finished chat session.
type ChatEnded struct {
	RequesterID int64
	HelperID    int64
	Fee         int64
	Title       string
}

// CallEnded settles a finished video call.
type CallEnded struct {
	CallID      int64
	RequesterID int64
	HelperID    int64
	Fee         int64
	Title       string
}

// MentorshipRequested charges the learner the request fee before the
// request is persisted; insufficient funds abort the whole action.
type MentorshipRequested struct {
	MentorshipID int64
	LearnerID    int64
	LearnerName  string
	MentorID     int64
	MentorName   string
	Skill        string
}

type MentorshipAccepted struct {
	MentorshipID int64
	LearnerID    int64
	LearnerName  string
	MentorID     int64
	MentorName   string
	Skill        string
}

type MentorshipCompleted struct {
	MentorshipID int64
	LearnerID    int64
	LearnerName  string
	MentorID     int64
	Skill        string
	Rating       *int
}

type MentorshipRejected struct {
	LearnerID  int64
	MentorName string
	Skill      string
}

func (UpvoteAdded) isEvent()         {}
func (ResourceDownloaded) isEvent()  {}
func (ChatEnded) isEvent()           {}
func (CallEnded) isEvent()           {}
func (MentorshipRequested) isEvent() {}
func (MentorshipAccepted) isEvent()  {}
func (MentorshipCompleted) isEvent() {}
func (MentorshipRejected) isEvent()  {}

// Ledger is the slice of the credit service the router needs.
type Ledger interface {
	Credit(ctx context.Context, userID, amount int64, description string) (int64, error)
	CreditOnce(ctx context.Context, userID, amount int64, description, causeKey string) (bool, error)
	Debit(ctx context.Context, userID, amount int64, description string) (int64, error)
	Transfer(ctx context.Context, fromUserID, toUserID, amount int64, fromDesc, toDesc string) error
}

// Notifier persists and pushes a user-facing notification.
type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

// EventRouter maps domain events to ledger mutations and notifications.
// A ledger failure aborts the triggering action; a notification failure
// after a committed ledger change is logged and never rolled back.
type EventRouter struct {
	ledger  Ledger
	notify  Notifier
	rewards Rewards
}

func NewEventRouter(ledger Ledger, notify Notifier, rewards Rewards) *EventRouter {
	return &EventRouter{ledger: ledger, notify: notify, rewards: rewards}
}

func (r *EventRouter) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case UpvoteAdded:
		return r.upvoteAdded(ctx, e)
	case ResourceDownloaded:
		return r.resourceDownloaded(ctx, e)
	case ChatEnded:
		return r.sessionSettled(ctx, e.RequesterID, e.HelperID, e.Fee, e.Title, "chat", nil)
	case CallEnded:
		return r.sessionSettled(ctx, e.RequesterID, e.HelperID, e.Fee, e.Title, "video call", &e.CallID)
	case MentorshipRequested:
		return r.mentorshipRequested(ctx, e)
	case MentorshipAccepted:
		return r.mentorshipAccepted(ctx, e)
	case MentorshipCompleted:
		return r.mentorshipCompleted(ctx, e)
	case MentorshipRejected:
		return r.mentorshipRejected(ctx, e)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

// UpvoteCauseKey identifies one upvotable target for the idempotency guard.
func UpvoteCauseKey(kind string, targetID int64) string {
	return fmt.Sprintf("upvote:%s:%d", kind, targetID)
}

// DownloadCauseKey identifies one downloadable resource for the guard.
func DownloadCauseKey(resourceID int64) string {
	return fmt.Sprintf("download:resource:%d", resourceID)
}

func (r *EventRouter) upvoteAdded(ctx context.Context, e UpvoteAdded) error {
	desc := fmt.Sprintf("Earned %d credit for first upvote on %s", r.rewards.Upvote, e.Title)
	granted, err := r.ledger.CreditOnce(ctx, e.OwnerID, r.rewards.Upvote, desc, UpvoteCauseKey(e.Kind, e.TargetID))
	if err != nil {
		return err
	}
	if !granted {
		return nil
	}

	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.OwnerID,
		Message: desc,
		Type:    domain.NotificationCreditAdded,
	})
	return nil
}

func (r *EventRouter) resourceDownloaded(ctx context.Context, e ResourceDownloaded) error {
	desc := fmt.Sprintf("Earned %d credits for first download of %s", r.rewards.Download, e.Title)
	granted, err := r.ledger.CreditOnce(ctx, e.OwnerID, r.rewards.Download, desc, DownloadCauseKey(e.ResourceID))
	if err != nil {
		return err
	}
	if !granted {
		return nil
	}

	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.OwnerID,
		Message: desc,
		Type:    domain.NotificationCreditAdded,
	})
	return nil
}

func (r *EventRouter) sessionSettled(ctx context.Context, requesterID, helperID, fee int64, title, kind string, callID *int64) error {
	if fee > 0 {
		fromDesc := fmt.Sprintf("Spent %d credits for %s help on %s", fee, kind, title)
		toDesc := fmt.Sprintf("Earned %d credits for %s help on %s", fee, kind, title)
		if err := r.ledger.Transfer(ctx, requesterID, helperID, fee, fromDesc, toDesc); err != nil {
			return err
		}

		r.notifyOrLog(ctx, &domain.Notification{
			UserID:  requesterID,
			Message: fromDesc,
			Type:    domain.NotificationCreditSpent,
			CallID:  callID,
		})
		r.notifyOrLog(ctx, &domain.Notification{
			UserID:  helperID,
			Message: toDesc,
			Type:    domain.NotificationCreditAdded,
			CallID:  callID,
		})
	}
	return nil
}

func (r *EventRouter) mentorshipRequested(ctx context.Context, e MentorshipRequested) error {
	desc := fmt.Sprintf("Mentorship request to %s for %s", e.MentorName, e.Skill)
	if _, err := r.ledger.Debit(ctx, e.LearnerID, r.rewards.MentorshipFee, desc); err != nil {
		return err
	}

	link := fmt.Sprintf("/mentorships/%d", e.MentorshipID)
	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.MentorID,
		Message: fmt.Sprintf("%s requested mentorship in %s", e.LearnerName, e.Skill),
		Type:    domain.NotificationMentorshipRequest,
		Link:    &link,
	})
	return nil
}

func (r *EventRouter) mentorshipAccepted(ctx context.Context, e MentorshipAccepted) error {
	desc := fmt.Sprintf("Accepted mentorship for %s with %s", e.Skill, e.LearnerName)
	if _, err := r.ledger.Credit(ctx, e.MentorID, r.rewards.MentorshipAccept, desc); err != nil {
		return err
	}

	link := fmt.Sprintf("/mentorships/%d", e.MentorshipID)
	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.LearnerID,
		Message: fmt.Sprintf("%s accepted your mentorship request in %s", e.MentorName, e.Skill),
		Type:    domain.NotificationMentorshipAccepted,
		Link:    &link,
	})
	return nil
}

func (r *EventRouter) mentorshipCompleted(ctx context.Context, e MentorshipCompleted) error {
	if e.Rating != nil && *e.Rating >= 4 {
		desc := fmt.Sprintf("High rating (%d) for mentorship in %s with %s", *e.Rating, e.Skill, e.LearnerName)
		if _, err := r.ledger.Credit(ctx, e.MentorID, r.rewards.MentorshipRating, desc); err != nil {
			return err
		}
	}

	rating := "N/A"
	if e.Rating != nil {
		rating = fmt.Sprintf("%d", *e.Rating)
	}
	link := fmt.Sprintf("/mentorships/%d", e.MentorshipID)
	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.MentorID,
		Message: fmt.Sprintf("%s completed the mentorship in %s (Rating: %s)", e.LearnerName, e.Skill, rating),
		Type:    domain.NotificationMentorshipCompleted,
		Link:    &link,
	})
	return nil
}

func (r *EventRouter) mentorshipRejected(ctx context.Context, e MentorshipRejected) error {
	desc := fmt.Sprintf("Refund for rejected mentorship request for %s", e.Skill)
	if _, err := r.ledger.Credit(ctx, e.LearnerID, r.rewards.MentorshipFee, desc); err != nil {
		return err
	}

	r.notifyOrLog(ctx, &domain.Notification{
		UserID:  e.LearnerID,
		Message: fmt.Sprintf("%s rejected your mentorship request in %s", e.MentorName, e.Skill),
		Type:    domain.NotificationMentorshipRejected,
	})
	return nil
}

// notifyOrLog records a notification for an already-committed ledger change.
// The change must never be undone because the notification failed, so the
// anomaly is logged instead of propagated.
func (r *EventRouter) notifyOrLog(ctx context.Context, n *domain.Notification) {
	if err := r.notify.Notify(ctx, n); err != nil {
		logger.Error("notification lost after ledger commit",
			"user_id", n.UserID, "type", n.Type, "error", err)
	}
}
