// Package events publishes member lifecycle notifications for downstream
// consumers such as matching and notification services.
package events

import (
	"context"
	"time"
)

const (
	TypeMemberRegistered = "member.registered"
	TypeMemberWithdrawn  = "member.withdrawn"
	TypeMemberUpdated    = "member.updated"
)

// Event is the JSON payload written to the members topic.
type Event struct {
	Type       string    `json:"type"`
	UUID       string    `json:"uuid"`
	Nickname   string    `json:"nickname,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New stamps an event of type t for identity uuid.
func New(t, uuid, nickname string) Event {
	return Event{Type: t, UUID: uuid, Nickname: nickname, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
