package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpRequestContextFees(t *testing.T) {
	hr := &HelpRequest{
		ID:               1,
		Title:            "Fix my migration",
		CreatedBy:        7,
		CreditOfferChat:  5,
		CreditOfferVideo: 12,
	}
	ctx := HelpRequestContext(hr)

	assert.Equal(t, ContextHelpRequest, ctx.Kind)
	assert.Equal(t, int64(5), ctx.ChatFee())
	assert.Equal(t, int64(12), ctx.VideoFee())
	assert.Equal(t, "Fix my migration", ctx.Title())
	assert.Equal(t, int64(7), ctx.RequesterID())
}

func TestMentorshipContextIsFeeless(t *testing.T) {
	m := &Mentorship{ID: 2, LearnerID: 4, MentorID: 9, Skill: "Rust"}
	ctx := MentorshipContext(m)

	assert.Equal(t, ContextMentorship, ctx.Kind)
	assert.Equal(t, int64(0), ctx.ChatFee())
	assert.Equal(t, int64(0), ctx.VideoFee())
	assert.Equal(t, "Rust", ctx.Title())
	assert.Equal(t, int64(4), ctx.RequesterID())
}
