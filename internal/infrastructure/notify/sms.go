package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"safetyhub/internal/bootstrap/config"
	"safetyhub/internal/errs"
)

// SMSSender posts messages to an HTTP SMS gateway.
type SMSSender struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	return &SMSSender{
		cfg:    cfg,
		client: &http.Client{},
	}
}

type smsRequest struct {
	To     string `json:"to"`
	Body   string `json:"body"`
	Sender string `json:"sender,omitempty"`
}

func (s *SMSSender) SendSMS(ctx context.Context, to string, body string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if strings.TrimSpace(to) == "" {
		return errors.New("recipient phone is required")
	}
	if s.cfg.GatewayURL == "" {
		return errors.New("sms gateway is not configured")
	}

	payload, err := json.Marshal(smsRequest{To: to, Body: body, Sender: s.cfg.Sender})
	if err != nil {
		return errs.Wrap(err, "encode sms payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build sms request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errs.Wrap(err, "post sms")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

// BuildSMSBody fills the SMS template and fits it to maxLength. The link
// must survive intact, so the title is what gets shortened; when even a
// one-rune title cannot fit, the link alone is returned.
func BuildSMSBody(template string, title string, link string, maxLength int) string {
	body := Render(template, title, link, "")
	if maxLength <= 0 || len([]rune(body)) <= maxLength {
		return body
	}

	overhead := len([]rune(Render(template, "", link, "")))
	room := maxLength - overhead - 1 // one rune for the ellipsis
	titleRunes := []rune(title)
	if room > 0 && room < len(titleRunes) {
		short := string(titleRunes[:room]) + "…"
		return Render(template, short, link, "")
	}

	if len([]rune(link)) <= maxLength {
		return link
	}
	return string([]rune(link)[:maxLength])
}
