package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/raksha-app/sos-api/internal/email"
	"github.com/raksha-app/sos-api/internal/model"
	"github.com/raksha-app/sos-api/internal/repository"
	"github.com/raksha-app/sos-api/internal/sms"
	apperrors "github.com/raksha-app/sos-api/pkg/errors"
	"github.com/raksha-app/sos-api/pkg/metrics"
)

const defaultAttemptTimeout = 15 * time.Second

type Service interface {
	// SendEmergencyAlert attempts SMS first when the contact has a
	// phone, falling back to email. An SMS failure is swallowed; an
	// email failure propagates to the caller.
	SendEmergencyAlert(ctx context.Context, event *model.SOSEvent, contact *model.EmergencyContact, deviceName, locationURL string) (*model.AlertResult, error)
	// NotifyAllContacts fans out one alert per active contact in
	// ascending priority order. A single contact's failure never aborts
	// the pass; notifications_sent is recomputed afterwards.
	NotifyAllContacts(ctx context.Context, event *model.SOSEvent, deviceName, locationURL string) ([]*model.AlertResult, error)
	// ListForEvent returns the event's delivery attempts, oldest first.
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Notification, error)
}

type service struct {
	repo           repository.NotificationRepository
	contacts       repository.ContactRepository
	events         repository.SOSEventRepository
	smsSvc         sms.Service
	emailSvc       email.Service
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	attemptTimeout time.Duration
}

func NewService(
	repo repository.NotificationRepository,
	contacts repository.ContactRepository,
	events repository.SOSEventRepository,
	smsSvc sms.Service,
	emailSvc email.Service,
	m *metrics.Metrics,
	logger zerolog.Logger,
) Service {
	return &service{
		repo:           repo,
		contacts:       contacts,
		events:         events,
		smsSvc:         smsSvc,
		emailSvc:       emailSvc,
		metrics:        m,
		logger:         logger.With().Str("component", "notifier").Logger(),
		attemptTimeout: defaultAttemptTimeout,
	}
}

func (s *service) SendEmergencyAlert(ctx context.Context, event *model.SOSEvent, contact *model.EmergencyContact, deviceName, locationURL string) (*model.AlertResult, error) {
	message := alertMessage(deviceName, locationURL)

	var smsErr error
	if contact.Phone != "" {
		n, err := s.sendViaSMS(ctx, event, contact, message)
		if err == nil {
			return &model.AlertResult{
				ContactID:    contact.ID,
				Channel:      model.ChannelSMS,
				Recipient:    contact.Phone,
				Sent:         true,
				Notification: n,
			}, nil
		}
		smsErr = err
		s.logger.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Str("contact_id", contact.ID.String()).
			Msg("sms attempt failed, falling back to email")
	}

	if contact.Email != nil && *contact.Email != "" {
		n, err := s.sendViaEmail(ctx, event, contact, deviceName, message)
		if err != nil {
			return nil, err
		}
		return &model.AlertResult{
			ContactID:    contact.ID,
			Channel:      model.ChannelEmail,
			Recipient:    *contact.Email,
			Sent:         true,
			Notification: n,
		}, nil
	}

	// No channel left: either the contact has neither phone nor email,
	// or SMS failed with no email to fall back to.
	result := &model.AlertResult{
		ContactID: contact.ID,
		Recipient: "unknown",
		Sent:      false,
	}
	switch {
	case contact.Phone != "":
		result.Recipient = contact.Phone
		result.Channel = model.ChannelSMS
	case contact.Email != nil && *contact.Email != "":
		result.Recipient = *contact.Email
		result.Channel = model.ChannelEmail
	}
	if smsErr != nil {
		result.Error = smsErr.Error()
	} else {
		result.Error = "no usable notification channel"
	}
	return result, nil
}

func (s *service) NotifyAllContacts(ctx context.Context, event *model.SOSEvent, deviceName, locationURL string) ([]*model.AlertResult, error) {
	timer := prometheus.NewTimer(s.metrics.FanoutLatency)
	defer timer.ObserveDuration()

	contacts, err := s.contacts.ListByDevice(ctx, event.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts for fan-out: %w", err)
	}

	results := make([]*model.AlertResult, 0, len(contacts))
	for _, contact := range contacts {
		if !contact.Active {
			continue
		}

		result, err := s.SendEmergencyAlert(ctx, event, contact, deviceName, locationURL)
		if err != nil {
			// Downgrade so the remaining contacts still get attempted.
			s.logger.Error().Err(err).
				Str("event_id", event.ID.String()).
				Str("contact_id", contact.ID.String()).
				Msg("alert failed for contact")
			result = &model.AlertResult{
				ContactID: contact.ID,
				Recipient: contactRecipient(contact),
				Sent:      false,
				Error:     err.Error(),
			}
		}
		results = append(results, result)
	}

	sent, err := s.repo.CountSuccessful(ctx, event.ID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("event_id", event.ID.String()).
			Msg("could not recount notifications, using pass results")
		sent = 0
		for _, r := range results {
			if r.Sent {
				sent++
			}
		}
	}
	event.NotificationsSent = sent
	if err := s.events.UpdateNotificationsSent(ctx, event.ID, sent); err != nil {
		s.logger.Error().Err(err).
			Str("event_id", event.ID.String()).
			Msg("failed to persist notifications_sent")
	}

	return results, nil
}

func (s *service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Notification, error) {
	list, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, apperrors.Unavailable("could not list notifications", err)
	}
	return list, nil
}

func (s *service) sendViaSMS(ctx context.Context, event *model.SOSEvent, contact *model.EmergencyContact, message string) (*model.Notification, error) {
	n := &model.Notification{
		ID:        uuid.New(),
		EventID:   event.ID,
		ContactID: contact.ID,
		Channel:   model.ChannelSMS,
		Recipient: contact.Phone,
		Status:    model.NotificationStatusPending,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	externalID, sendErr := s.smsSvc.Send(attemptCtx, contact.Phone, message)

	return s.finishAttempt(ctx, n, externalID, sendErr)
}

func (s *service) sendViaEmail(ctx context.Context, event *model.SOSEvent, contact *model.EmergencyContact, deviceName, body string) (*model.Notification, error) {
	n := &model.Notification{
		ID:        uuid.New(),
		EventID:   event.ID,
		ContactID: contact.ID,
		Channel:   model.ChannelEmail,
		Recipient: *contact.Email,
		Status:    model.NotificationStatusPending,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	subject := fmt.Sprintf("EMERGENCY: %s needs help", deviceName)
	externalID, sendErr := s.emailSvc.Send(attemptCtx, *contact.Email, subject, body)

	return s.finishAttempt(ctx, n, externalID, sendErr)
}

// finishAttempt moves the pending row to sent or failed. An error from
// the row update itself propagates; a send error is returned alongside
// the updated row.
func (s *service) finishAttempt(ctx context.Context, n *model.Notification, externalID string, sendErr error) (*model.Notification, error) {
	if sendErr != nil {
		errStr := sendErr.Error()
		n.Status = model.NotificationStatusFailed
		n.LastError = &errStr
		if err := s.repo.Update(ctx, n); err != nil {
			return nil, err
		}
		s.metrics.NotificationAttempts.WithLabelValues(string(n.Channel), string(n.Status)).Inc()
		return n, sendErr
	}

	now := time.Now()
	n.Status = model.NotificationStatusSent
	n.SentAt = &now
	if externalID != "" {
		n.ExternalID = &externalID
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	s.metrics.NotificationAttempts.WithLabelValues(string(n.Channel), string(n.Status)).Inc()
	return n, nil
}

func alertMessage(deviceName, locationURL string) string {
	return fmt.Sprintf("EMERGENCY! %s has triggered an SOS alert and needs help. Live location: %s", deviceName, locationURL)
}

func contactRecipient(contact *model.EmergencyContact) string {
	if contact.Phone != "" {
		return contact.Phone
	}
	if contact.Email != nil && *contact.Email != "" {
		return *contact.Email
	}
	return "unknown"
}
