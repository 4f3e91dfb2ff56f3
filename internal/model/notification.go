package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusDelivered NotificationStatus = "delivered"
)

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

// Notification records one delivery attempt to one contact. A row is
// created pending before the provider call and updated to sent or
// failed afterwards.
type Notification struct {
	ID         uuid.UUID           `json:"notification_id" db:"id"`
	EventID    uuid.UUID           `json:"event_id" db:"event_id"`
	ContactID  uuid.UUID           `json:"contact_id" db:"contact_id"`
	Channel    NotificationChannel `json:"type" db:"channel"`
	Recipient  string              `json:"recipient" db:"recipient"`
	Status     NotificationStatus  `json:"status" db:"status"`
	ExternalID *string             `json:"external_id,omitempty" db:"external_id"`
	LastError  *string             `json:"error,omitempty" db:"last_error"`
	SentAt     *time.Time          `json:"sent_at,omitempty" db:"sent_at"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" db:"updated_at"`
}

// AlertResult is the per-contact outcome of a fan-out pass. Sent is
// false both for failed provider calls and for contacts with no
// usable channel.
type AlertResult struct {
	ContactID    uuid.UUID           `json:"contact_id"`
	Channel      NotificationChannel `json:"channel,omitempty"`
	Recipient    string              `json:"recipient"`
	Sent         bool                `json:"sent"`
	Error        string              `json:"error,omitempty"`
	Notification *Notification       `json:"notification,omitempty"`
}
