package model

import "time"

// Device is a browser installation identified by a client-generated
// identifier; it stands in for a user account.
type Device struct {
	ID          string     `json:"device_id" db:"device_id"`
	Name        string     `json:"name" db:"name"`
	Phone       string     `json:"phone" db:"phone"`
	Email       *string    `json:"email,omitempty" db:"email"`
	LastLat     *Latitude  `json:"last_lat,omitempty" db:"last_lat"`
	LastLng     *Longitude `json:"last_lng,omitempty" db:"last_lng"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty" db:"last_seen_at"`
	Active      bool       `json:"active" db:"active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type RegisterDeviceRequest struct {
	DeviceID string  `json:"device_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required,phone"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
}

// UpdateDeviceRequest carries a partial update; nil fields are left
// untouched.
type UpdateDeviceRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty" binding:"omitempty,phone"`
	Email  *string `json:"email,omitempty" binding:"omitempty,email"`
	Active *bool   `json:"active,omitempty"`
}
