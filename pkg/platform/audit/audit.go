// Package audit captures key identity and classroom actions as events.
//
// Services emit events best-effort: a failed emit is logged by the publisher
// and never fails the business operation. Publishers fan events out to a
// sink (Kafka in production, memory in tests).
package audit

import (
	"context"
	"time"

	id "github.com/ahmadsobohhh/UnityPlatform/pkg/domain"
)

// Action names the audited operation.
type Action string

const (
	ActionUserRegistered Action = "user_registered"
	ActionLoginSucceeded Action = "login_succeeded"
	ActionLoginFailed    Action = "login_failed"
	ActionClassCreated   Action = "class_created"
	ActionClassRenamed   Action = "class_renamed"
	ActionClassDeleted   Action = "class_deleted"
	ActionClassJoined    Action = "class_joined"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Action    Action     `json:"action"`
	Timestamp time.Time  `json:"timestamp"`
	UserID    id.UserID  `json:"user_id,omitempty"`
	ClassID   id.ClassID `json:"class_id,omitempty"`
	Role      string     `json:"role,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	RequestID string     `json:"request_id,omitempty"`
	Device    string     `json:"device,omitempty"`
	ClientIP  string     `json:"client_ip,omitempty"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Default when no sink is configured.
type NopPublisher struct{}

func (NopPublisher) Emit(context.Context, Event) error { return nil }
