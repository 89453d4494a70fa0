package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"festive/internal/domain/inquiry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/mail.v2"
)

var testInquiry = inquiry.Inquiry{
	Name:          "Kavya Reddy",
	Email:         "kavya@example.com",
	Phone:         "+919876543210",
	EventType:     "wedding",
	Message:       "Looking for a full lunch menu",
	SelectedItems: "1. Chicken Biryani (non-veg)",
}

func newEmailJS(t *testing.T, h http.HandlerFunc) *EmailJSClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	c, err := NewEmailJSClient("pub", "priv", "service_1", "template_1")
	require.NoError(t, err)
	c.endpoint = ts.URL
	return c
}

func TestEmailJSSend(t *testing.T) {
	var got struct {
		ServiceID   string            `json:"service_id"`
		TemplateID  string            `json:"template_id"`
		UserID      string            `json:"user_id"`
		AccessToken string            `json:"accessToken"`
		Params      map[string]string `json:"template_params"`
	}
	c := newEmailJS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("OK"))
	})

	status, err := c.Send(context.Background(), testInquiry)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "service_1", got.ServiceID)
	assert.Equal(t, "template_1", got.TemplateID)
	assert.Equal(t, "pub", got.UserID)
	assert.Equal(t, "priv", got.AccessToken)
	assert.Equal(t, "Kavya Reddy", got.Params["from_name"])
	assert.Equal(t, "Not specified", got.Params["event_date"])
	assert.Equal(t, "Not specified", got.Params["guest_count"])
	assert.Equal(t, "wedding", got.Params["event_type"])
	assert.Equal(t, "kavya@example.com", got.Params["reply_to"])
	assert.Equal(t, "1. Chicken Biryani (non-veg)", got.Params["selected_items"])
}

func TestEmailJSErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"bad request", http.StatusBadRequest, "The parameters are invalid", ErrInvalidForm},
		{"precondition", http.StatusPreconditionFailed, "The service ID is invalid", ErrMisconfigured},
		{"template", http.StatusUnprocessableEntity, "template error", ErrTemplateInvalid},
		{"gmail grant", http.StatusPreconditionFailed, "Gmail_API: Invalid grant. Please reconnect", ErrGmailAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newEmailJS(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			status, err := c.Send(context.Background(), testInquiry)
			assert.Equal(t, tt.status, status)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		c := newEmailJS(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := c.Send(context.Background(), testInquiry)
		var serr *StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusTooManyRequests, serr.Status)
	})
}

func TestNewEmailJSClientRequiresConfig(t *testing.T) {
	_, err := NewEmailJSClient("", "", "service", "template")
	assert.Error(t, err)
}

type fakeDialer struct {
	fails int
	calls int
	sent  []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	if d.calls <= d.fails {
		return errors.New("connection refused")
	}
	d.sent = append(d.sent, m...)
	return nil
}

func newSMTP(t *testing.T, d *fakeDialer) *SMTPClient {
	t.Helper()
	c, err := NewSMTPClient("smtp.example.com", 587, "user", "pass", "orders@festivefeast.in", "owner@festivefeast.in")
	require.NoError(t, err)
	c.dialer = d
	c.backoff = time.Millisecond
	return c
}

func TestSMTPSendRendersTemplate(t *testing.T) {
	d := &fakeDialer{}
	c := newSMTP(t, d)

	status, err := c.Send(context.Background(), testInquiry)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	require.Len(t, d.sent, 1)

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: New catering inquiry from Kavya Reddy")
	assert.Contains(t, raw, "To: owner@festivefeast.in")
	assert.Contains(t, raw, "Reply-To:")
	assert.Contains(t, raw, "Date:        Not specified")
	assert.Contains(t, raw, "1. Chicken Biryani (non-veg)")
}

func TestSMTPRetries(t *testing.T) {
	d := &fakeDialer{fails: 2}
	c := newSMTP(t, d)

	_, err := c.Send(context.Background(), testInquiry)
	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)

	d = &fakeDialer{fails: 5}
	c = newSMTP(t, d)
	_, err = c.Send(context.Background(), testInquiry)
	require.Error(t, err)
	assert.Equal(t, maxRetires, d.calls)
}

type fakeClient struct {
	mu     sync.Mutex
	status int
	err    error
	calls  int
}

func (f *fakeClient) Send(context.Context, inquiry.Inquiry) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.status, f.err
}

func TestThrottled(t *testing.T) {
	next := &fakeClient{status: 200}
	th := NewThrottled(next, 10*time.Second)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	th.now = func() time.Time { return now }

	_, err := th.Send(context.Background(), testInquiry)
	require.NoError(t, err)

	same := testInquiry
	same.Phone = "+91 98765 43210"
	_, err = th.Send(context.Background(), same)
	assert.ErrorIs(t, err, ErrThrottled)

	other := testInquiry
	other.Phone = "9000000000"
	_, err = th.Send(context.Background(), other)
	assert.NoError(t, err)

	now = now.Add(10 * time.Second)
	_, err = th.Send(context.Background(), same)
	assert.NoError(t, err)
	assert.Equal(t, 3, next.calls)
}

func TestFallback(t *testing.T) {
	t.Run("primary ok", func(t *testing.T) {
		p, s := &fakeClient{status: 200}, &fakeClient{status: 200}
		_, err := NewFallback(p, s, nil).Send(context.Background(), testInquiry)
		require.NoError(t, err)
		assert.Equal(t, 0, s.calls)
	})

	t.Run("secondary takes over", func(t *testing.T) {
		p := &fakeClient{status: 503, err: ErrGmailAuth}
		s := &fakeClient{status: 200}
		status, err := NewFallback(p, s, nil).Send(context.Background(), testInquiry)
		require.NoError(t, err)
		assert.Equal(t, 200, status)
	})

	t.Run("form errors do not fall back", func(t *testing.T) {
		p := &fakeClient{status: 400, err: ErrInvalidForm}
		s := &fakeClient{status: 200}
		_, err := NewFallback(p, s, nil).Send(context.Background(), testInquiry)
		assert.ErrorIs(t, err, ErrInvalidForm)
		assert.Equal(t, 0, s.calls)
	})

	t.Run("both fail", func(t *testing.T) {
		smtpErr := errors.New("smtp down")
		p := &fakeClient{status: 503, err: ErrGmailAuth}
		s := &fakeClient{status: -1, err: smtpErr}
		status, err := NewFallback(p, s, nil).Send(context.Background(), testInquiry)
		assert.Equal(t, 503, status)
		assert.ErrorIs(t, err, ErrGmailAuth)
		assert.ErrorIs(t, err, smtpErr)
	})
}
