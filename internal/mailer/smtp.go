package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"
	"time"

	"festive/internal/domain/inquiry"

	gomail "gopkg.in/mail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPClient renders the embedded inquiry template and mails it to the
// caterer's inbox.
type SMTPClient struct {
	fromEmail string
	toEmail   string
	dialer    dialer
	backoff   time.Duration
}

func NewSMTPClient(host string, port int, username, password, fromEmail, toEmail string) (*SMTPClient, error) {
	if host == "" || fromEmail == "" || toEmail == "" {
		return nil, errors.New("smtp host, from and to addresses are required")
	}
	d := gomail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPClient{
		fromEmail: fromEmail,
		toEmail:   toEmail,
		dialer:    d,
		backoff:   time.Second,
	}, nil
}

func (c *SMTPClient) Send(ctx context.Context, q inquiry.Inquiry) (int, error) {
	msg, err := c.compose(q)
	if err != nil {
		return -1, err
	}

	var lastErr error
	for i := 0; i < maxRetires; i++ {
		if lastErr = c.dialer.DialAndSend(msg); lastErr == nil {
			return 200, nil
		}
		if i == maxRetires-1 {
			break
		}
		// exponential backoff
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case <-time.After(c.backoff * time.Duration(1<<i)):
		}
	}
	return -1, fmt.Errorf("failed to send email after %d attempts, error: %w", maxRetires, lastErr)
}

func (c *SMTPClient) compose(q inquiry.Inquiry) (*gomail.Message, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+ContactInquiryTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		inquiry.Inquiry
		FromName string
	}{Inquiry: q, FromName: FromName}
	params := templateParams(q)
	data.EventDate = params["event_date"]
	data.GuestCount = params["guest_count"]
	data.EventType = params["event_type"]
	data.SelectedItems = params["selected_items"]
	data.Email = orDefault(q.Email, notSpecified)

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, err
	}
	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", c.fromEmail, FromName)
	m.SetHeader("To", c.toEmail)
	if q.Email != "" {
		m.SetAddressHeader("Reply-To", q.Email, q.Name)
	}
	m.SetHeader("Subject", subject.String())
	m.SetBody("text/plain", body.String())
	return m, nil
}
