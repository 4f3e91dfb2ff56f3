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

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO sos_notifications (id, event_id, contact_id, channel, recipient, status,
			external_id, last_error, sent_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	n.CreatedAt = time.Now()
	n.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.EventID,
		n.ContactID,
		n.Channel,
		n.Recipient,
		n.Status,
		n.ExternalID,
		n.LastError,
		n.SentAt,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) Update(ctx context.Context, n *model.Notification) error {
	query := `
		UPDATE sos_notifications
		SET status = $1, external_id = $2, last_error = $3, sent_at = $4, updated_at = $5
		WHERE id = $6
	`
	n.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		n.Status, n.ExternalID, n.LastError, n.SentAt, n.UpdatedAt, n.ID)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) CountSuccessful(ctx context.Context, eventID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM sos_notifications WHERE event_id = $1 AND status IN ($2, $3)`
	var count int
	err := r.db.GetContext(ctx, &count, query, eventID,
		model.NotificationStatusSent, model.NotificationStatusDelivered)
	if err != nil {
		return 0, fmt.Errorf("failed to count successful notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Notification, error) {
	query := `SELECT * FROM sos_notifications WHERE event_id = $1 ORDER BY created_at ASC`
	var list []*model.Notification
	err := r.db.SelectContext(ctx, &list, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}
