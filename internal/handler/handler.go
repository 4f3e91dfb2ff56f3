package handler

import (
	"github.com/jmoiron/sqlx"
)

// Handler contains dependencies for the root endpoints
type Handler struct {
	db *sqlx.DB
}

// NewHandler creates a new handler instance
func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}
