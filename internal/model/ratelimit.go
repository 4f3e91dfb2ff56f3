package model

import "time"

// SOSRateLimit is the per-device trigger counter. One row per device,
// created on first trigger.
type SOSRateLimit struct {
	DeviceID     string     `json:"device_id" db:"device_id"`
	SOSCount     int        `json:"sos_count" db:"sos_count"`
	WindowStart  time.Time  `json:"window_start" db:"window_start"`
	IsBlocked    bool       `json:"is_blocked" db:"is_blocked"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty" db:"blocked_until"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
