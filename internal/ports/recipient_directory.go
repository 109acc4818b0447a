package ports

import (
	"context"
	"errors"
)

var ErrRecipientNotFound = errors.New("recipient not found")

// Recipient is a directory entry. The workflow only ever reads it.
type Recipient struct {
	RecipientID uint64
	Name        string
	Email       string
	Phone       string
	Group       string
}

type RecipientDirectory interface {
	GetRecipient(ctx context.Context, recipientID uint64) (Recipient, error)
	ListRecipients(ctx context.Context, group string) ([]Recipient, error)
}
