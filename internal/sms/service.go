package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service sends SMS alerts through an HTTP SMS gateway. Send returns
// the gateway's message id.
type Service interface {
	Send(ctx context.Context, to, message string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

type gatewayService struct {
	cfg    Config
	client *http.Client
}

func NewGatewayService(cfg Config) Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &gatewayService{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Sender  string `json:"sender,omitempty"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func (s *gatewayService) Send(ctx context.Context, to, message string) (string, error) {
	payload, err := json.Marshal(sendRequest{
		To:      to,
		Message: message,
		Sender:  s.cfg.Sender,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("failed to read sms gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode sms gateway response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("sms gateway rejected message: %s", out.Error)
	}

	return out.MessageID, nil
}
