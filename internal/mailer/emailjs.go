package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"festive/internal/domain/inquiry"
)

const emailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSClient sends through the EmailJS REST API using a stored template.
type EmailJSClient struct {
	endpoint   string
	publicKey  string
	privateKey string
	serviceID  string
	templateID string
	httpClient *http.Client
}

func NewEmailJSClient(publicKey, privateKey, serviceID, templateID string) (*EmailJSClient, error) {
	if publicKey == "" || serviceID == "" || templateID == "" {
		return nil, errors.New("emailjs public key, service id and template id are required")
	}
	return &EmailJSClient{
		endpoint:   emailJSEndpoint,
		publicKey:  publicKey,
		privateKey: privateKey,
		serviceID:  serviceID,
		templateID: templateID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *EmailJSClient) Send(ctx context.Context, q inquiry.Inquiry) (int, error) {
	payload := map[string]any{
		"service_id":      c.serviceID,
		"template_id":     c.templateID,
		"user_id":         c.publicKey,
		"template_params": templateParams(q),
	}
	if c.privateKey != "" {
		payload["accessToken"] = c.privateKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return -1, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return -1, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return -1, fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode == http.StatusOK {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, classify(resp.StatusCode, string(raw))
}

// classify maps an EmailJS failure to one of the package errors.
func classify(status int, body string) error {
	text := strings.TrimSpace(body)
	if strings.Contains(text, "Invalid grant") || strings.Contains(text, "Gmail_API") {
		return fmt.Errorf("%w: %s", ErrGmailAuth, text)
	}
	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidForm, text)
	case http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %s", ErrMisconfigured, text)
	case http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrTemplateInvalid, text)
	}
	return &StatusError{Status: status, Body: text}
}
