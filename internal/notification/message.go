package notification

import (
	"context"
	"errors"
)

// Kind identifies which template produced a message.
type Kind string

const (
	KindRegistrationOTP  Kind = "registration_otp"
	KindPasswordResetOTP Kind = "password_reset_otp"
	KindAnnouncement     Kind = "announcement"
)

// Message is a rendered email ready for delivery.
type Message struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Attempt int    `json:"attempt"`
}

var (
	ErrQueueFull   = errors.New("email queue is full")
	ErrQueueClosed = errors.New("email queue is closed")
)

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher accepts messages for background delivery with at-least-once
// semantics. Enqueue never waits for the mail server.
type Dispatcher interface {
	Enqueue(ctx context.Context, msg Message) error
	Close() error
}
