package domain

type ContextKind string

const (
	ContextHelpRequest ContextKind = "help_request"
	ContextMentorship  ContextKind = "mentorship"
)

// SessionContext is the tagged union behind a chat session or video call:
// exactly one of HelpRequest / Mentorship is set, matching Kind. Fees come
// from the help request's configured credit offers; mentorship sessions are
// fee-less.
type SessionContext struct {
	Kind        ContextKind
	HelpRequest *HelpRequest
	Mentorship  *Mentorship
}

func HelpRequestContext(hr *HelpRequest) SessionContext {
	return SessionContext{Kind: ContextHelpRequest, HelpRequest: hr}
}

func MentorshipContext(m *Mentorship) SessionContext {
	return SessionContext{Kind: ContextMentorship, Mentorship: m}
}

// ChatFee returns the credits transferred when a chat session on this
// context ends.
func (c SessionContext) ChatFee() int64 {
	if c.Kind == ContextHelpRequest {
		return c.HelpRequest.CreditOfferChat
	}
	return 0
}

// VideoFee returns the credits transferred when a video call on this
// context ends.
func (c SessionContext) VideoFee() int64 {
	if c.Kind == ContextHelpRequest {
		return c.HelpRequest.CreditOfferVideo
	}
	return 0
}

// Title names the context in notifications.
func (c SessionContext) Title() string {
	if c.Kind == ContextHelpRequest {
		return c.HelpRequest.Title
	}
	return c.Mentorship.Skill
}

// RequesterID is the side that pays on settlement: the help request owner,
// or the mentorship learner.
func (c SessionContext) RequesterID() int64 {
	if c.Kind == ContextHelpRequest {
		return c.HelpRequest.CreatedBy
	}
	return c.Mentorship.LearnerID
}
