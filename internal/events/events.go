// Package events defines the domain events emitted after committed workflow transitions.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TutorApproved             = "tutor.approved"
	TutorRejected             = "tutor.rejected"
	HostApproved              = "host.approved"
	HostRejected              = "host.rejected"
	LessonApplied             = "lesson.applied"
	LessonApplicationApproved = "lesson.application_approved"
	LessonApplicationRemoved  = "lesson.application_removed"
	LessonFavorited           = "lesson.favorited"
	LessonUnfavorited         = "lesson.unfavorited"
	StudyroomFavorited        = "studyroom.favorited"
	StudyroomUnfavorited      = "studyroom.unfavorited"
	UserDeleted               = "user.deleted"
)

type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Subject    string         `json:"subject"`
	Actor      string         `json:"actor,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType, subject, actor string, payload map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Subject:    subject,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Nop drops every event. Used when messaging.driver is "none".
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
