package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
)

type contactRepository struct {
	db *sqlx.DB
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		INSERT INTO emergency_contacts (id, device_id, name, phone, email, priority, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		contact.ID,
		contact.DeviceID,
		contact.Name,
		contact.Phone,
		contact.Email,
		contact.Priority,
		contact.Active,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Get(ctx context.Context, id uuid.UUID) (*model.EmergencyContact, error) {
	query := `SELECT * FROM emergency_contacts WHERE id = $1`
	var contact model.EmergencyContact
	err := r.db.GetContext(ctx, &contact, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) Update(ctx context.Context, contact *model.EmergencyContact) error {
	query := `
		UPDATE emergency_contacts
		SET name = $1, phone = $2, email = $3, priority = $4, active = $5, updated_at = $6
		WHERE id = $7
	`
	contact.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		contact.Name, contact.Phone, contact.Email, contact.Priority, contact.Active,
		contact.UpdatedAt, contact.ID)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM emergency_contacts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (r *contactRepository) ListByDevice(ctx context.Context, deviceID string) ([]*model.EmergencyContact, error) {
	query := `SELECT * FROM emergency_contacts WHERE device_id = $1 ORDER BY priority ASC, created_at ASC`
	var contacts []*model.EmergencyContact
	err := r.db.SelectContext(ctx, &contacts, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}
