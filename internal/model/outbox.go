package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// OutboxClaimLease is how long a PROCESSING claim holds before another
// worker may take the event over.
const OutboxClaimLease = 5 * time.Minute

// Record actions carried in event types.
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionLink   = "LINK"
	ActionUnlink = "UNLINK"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
}

// RecordEvent is the payload published for a record change.
type RecordEvent struct {
	Kind     Kind        `json:"kind"`
	Action   string      `json:"action"`
	RecordID uuid.UUID   `json:"record_id"`
	Relation string      `json:"relation,omitempty"`
	TargetID *uuid.UUID  `json:"target_id,omitempty"`
	Record   interface{} `json:"record,omitempty"`
}

// NewOutboxEvent wraps a record change in a pending outbox event.
func NewOutboxEvent(evt RecordEvent) (*OutboxEvent, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", evt.Kind, err)
	}
	now := time.Now().UTC()
	return &OutboxEvent{
		ID:        uuid.New(),
		EventType: evt.Kind.EventType(evt.Action),
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
