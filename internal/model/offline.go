package model

import (
	"time"

	"github.com/google/uuid"
)

type OfflineSOSStatus string

const (
	OfflineStatusPending OfflineSOSStatus = "pending"
	OfflineStatusSynced  OfflineSOSStatus = "synced"
	OfflineStatusFailed  OfflineSOSStatus = "failed"
)

// OfflineSOS is an SOS trigger captured client-side while disconnected
// and reconciled against the server once connectivity resumes.
type OfflineSOS struct {
	ID         uuid.UUID        `json:"queue_id" db:"id"`
	DeviceID   string           `json:"device_id" db:"device_id"`
	Lat        Latitude         `json:"lat" db:"lat"`
	Lng        Longitude        `json:"lng" db:"lng"`
	Status     OfflineSOSStatus `json:"status" db:"status"`
	RetryCount int              `json:"retry_count" db:"retry_count"`
	EventID    *uuid.UUID       `json:"event_id,omitempty" db:"event_id"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

type QueueOfflineSOSRequest struct {
	DeviceID string  `json:"device_id" binding:"required"`
	Lat      float64 `json:"lat" binding:"min=-90,max=90"`
	Lng      float64 `json:"lng" binding:"min=-180,max=180"`
}
