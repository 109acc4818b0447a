package notify

import "context"

// Notifier joins the email and SMS channels behind one value.
type Notifier struct {
	mailer *Mailer
	sms    *SMSSender
}

func NewNotifier(mailer *Mailer, sms *SMSSender) *Notifier {
	return &Notifier{mailer: mailer, sms: sms}
}

func (n *Notifier) SendEmail(ctx context.Context, to string, subject string, htmlBody string, textBody string) error {
	return n.mailer.SendEmail(ctx, to, subject, htmlBody, textBody)
}

func (n *Notifier) SendSMS(ctx context.Context, to string, body string) error {
	return n.sms.SendSMS(ctx, to, body)
}
