package model

import (
	"time"

	"github.com/google/uuid"
)

type SOSStatus string

const (
	SOSStatusActive    SOSStatus = "active"
	SOSStatusResolved  SOSStatus = "resolved"
	SOSStatusCancelled SOSStatus = "cancelled"
	SOSStatusExpired   SOSStatus = "expired"
)

// Terminal reports whether the status admits no further transitions.
func (s SOSStatus) Terminal() bool {
	return s != SOSStatusActive
}

type TriggerType string

const (
	TriggerManual  TriggerType = "manual"
	TriggerVoice   TriggerType = "voice"
	TriggerOffline TriggerType = "offline"
)

// SOSEvent is one emergency activation with a lifecycle and an
// associated location trail. An event enters as active and leaves to
// exactly one of resolved, cancelled or expired.
type SOSEvent struct {
	ID                uuid.UUID   `json:"event_id" db:"id"`
	DeviceID          string      `json:"device_id" db:"device_id"`
	Status            SOSStatus   `json:"status" db:"status"`
	TriggerType       TriggerType `json:"trigger_type" db:"trigger_type"`
	InitialLat        Latitude    `json:"initial_lat" db:"initial_lat"`
	InitialLng        Longitude   `json:"initial_lng" db:"initial_lng"`
	NotificationsSent int         `json:"notifications_sent" db:"notifications_sent"`
	TrackingStartedAt time.Time   `json:"tracking_started_at" db:"tracking_started_at"`
	ResolvedAt        *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// LocationPoint is an append-only entry in an event's location trail.
type LocationPoint struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EventID   uuid.UUID `json:"event_id" db:"event_id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	Lat       Latitude  `json:"lat" db:"lat"`
	Lng       Longitude `json:"lng" db:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty" db:"accuracy"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type TriggerSOSRequest struct {
	DeviceID    string      `json:"device_id" binding:"required"`
	Lat         float64     `json:"lat" binding:"min=-90,max=90"`
	Lng         float64     `json:"lng" binding:"min=-180,max=180"`
	TriggerType TriggerType `json:"trigger_type" binding:"omitempty,oneof=manual voice offline"`
}

type UpdateLocationRequest struct {
	DeviceID string   `json:"device_id" binding:"required"`
	Lat      float64  `json:"lat" binding:"min=-90,max=90"`
	Lng      float64  `json:"lng" binding:"min=-180,max=180"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}
