package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// SentMail is a message captured by MockMailer
type SentMail struct {
	Config         MailConfig
	Mail           OutgoingMail
	AttachmentData []byte
}

// MockMailer records messages instead of sending them
type MockMailer struct {
	mu   sync.RWMutex
	sent []SentMail

	// SendErr, when set, is returned by Send after the message is recorded as attempted
	SendErr error
	// VerifyErr, when set, is returned by Verify
	VerifyErr error
	// OnSend, when set, runs after a message is accepted
	OnSend   func(OutgoingMail)
	attempts int
}

// NewMockMailer creates a mock mailer that accepts every message
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Send records msg, reading the attachment the way the real mailer would
func (m *MockMailer) Send(ctx context.Context, cfg MailConfig, msg OutgoingMail) error {
	m.mu.Lock()
	m.attempts++
	m.mu.Unlock()

	if m.SendErr != nil {
		return m.SendErr
	}

	sent := SentMail{Config: cfg, Mail: msg}
	if msg.Attachment != nil {
		r, err := msg.Attachment.Open()
		if err != nil {
			return fmt.Errorf("failed to open attachment: %w", err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return err
		}
		sent.AttachmentData = data
	}

	m.mu.Lock()
	m.sent = append(m.sent, sent)
	m.mu.Unlock()
	if m.OnSend != nil {
		m.OnSend(msg)
	}
	return nil
}

// Verify returns VerifyErr
func (m *MockMailer) Verify(ctx context.Context, cfg MailConfig) error {
	return m.VerifyErr
}

// Sent returns every delivered message (for testing assertions)
func (m *MockMailer) Sent() []SentMail {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// Attempts returns how many times Send was called
func (m *MockMailer) Attempts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.attempts
}
