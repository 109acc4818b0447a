package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"safetyhub/internal/bootstrap/config"
	"safetyhub/internal/errs"
)

// Mailer sends multipart/alternative email over SMTP.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) SendEmail(ctx context.Context, to string, subject string, htmlBody string, textBody string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient address is required")
	}
	if m.cfg.Host == "" {
		return errors.New("smtp host is not configured")
	}

	raw, err := composeMessage(m.cfg.From, to, subject, htmlBody, textBody)
	if err != nil {
		return errs.Wrap(err, "compose message")
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errs.Wrapf(err, "dial smtp %s", addr)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return errs.Wrap(err, "smtp handshake")
	}
	defer func() { _ = client.Close() }()

	if m.cfg.TLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return errs.Wrap(err, "smtp starttls")
		}
	}
	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return errs.Wrap(err, "smtp auth")
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return errs.Wrap(err, "smtp mail from")
	}
	if err := client.Rcpt(to); err != nil {
		return errs.Wrap(err, "smtp rcpt to")
	}

	w, err := client.Data()
	if err != nil {
		return errs.Wrap(err, "smtp data")
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return errs.Wrap(err, "smtp write body")
	}
	if err := w.Close(); err != nil {
		return errs.Wrap(err, "smtp finish body")
	}

	return client.Quit()
}

func composeMessage(from string, to string, subject string, htmlBody string, textBody string) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now().UTC())
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, errs.Wrap(err, "create mime writer")
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, errs.Wrap(err, "create inline part")
	}

	var textHeader mail.InlineHeader
	textHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(textHeader)
	if err != nil {
		return nil, errs.Wrap(err, "create text part")
	}
	if _, err := io.WriteString(pw, textBody); err != nil {
		return nil, errs.Wrap(err, "write text part")
	}
	if err := pw.Close(); err != nil {
		return nil, errs.Wrap(err, "close text part")
	}

	var htmlHeader mail.InlineHeader
	htmlHeader.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	pw, err = tw.CreatePart(htmlHeader)
	if err != nil {
		return nil, errs.Wrap(err, "create html part")
	}
	if _, err := io.WriteString(pw, htmlBody); err != nil {
		return nil, errs.Wrap(err, "write html part")
	}
	if err := pw.Close(); err != nil {
		return nil, errs.Wrap(err, "close html part")
	}

	if err := tw.Close(); err != nil {
		return nil, errs.Wrap(err, "close inline writer")
	}
	if err := mw.Close(); err != nil {
		return nil, errs.Wrap(err, "close mime writer")
	}

	return buf.Bytes(), nil
}
