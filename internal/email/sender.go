package email

import (
	"context"
	"errors"
)

// Attachment is a single binary file carried by a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outbound email. At least one of HTML or Text is set.
type Message struct {
	From       string
	To         string
	Subject    string
	HTML       string
	Text       string
	Attachment *Attachment
}

// Sender delivers a composed message through a provider.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	// Name identifies the provider in logs and metrics.
	Name() string
}

// ErrNoBody is returned for a message without an HTML or text body.
var ErrNoBody = errors.New("email: message has no body")

func (m *Message) check() error {
	if m.To == "" {
		return errors.New("email: missing recipient")
	}
	if m.HTML == "" && m.Text == "" {
		return ErrNoBody
	}
	return nil
}
