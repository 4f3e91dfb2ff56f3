package model

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact is owned by exactly one device. Contacts are
// notified in ascending priority order during fan-out.
type EmergencyContact struct {
	ID        uuid.UUID `json:"id" db:"id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	Name      string    `json:"name" db:"name"`
	Phone     string    `json:"phone" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Priority  int       `json:"priority" db:"priority"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type AddContactRequest struct {
	Name     string  `json:"name" binding:"required"`
	Phone    string  `json:"phone" binding:"required,phone"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Priority int     `json:"priority"`
}

type UpdateContactRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,phone"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Priority *int    `json:"priority,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}
