package ports

import "context"

// Notifier is the outbound notification collaborator. Email and SMS
// outcomes are independent; partial success is a valid result and the
// caller reports both.
type Notifier interface {
	SendEmail(ctx context.Context, to string, subject string, htmlBody string, textBody string) error
	SendSMS(ctx context.Context, to string, body string) error
}
