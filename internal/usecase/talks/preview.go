package talks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/domain/auth"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

type SendTestInput struct {
	TalkID uint64
	Email  string
	Phone  string
}

type SendTestResult struct {
	EmailSent bool
	SMSSent   bool
	TestURL   string
	Message   string
}

// SendTest delivers an ephemeral preview of a talk to ad-hoc addresses.
// The test row exists for audit even when every channel fails; channel
// outcomes are independent.
func (s *Service) SendTest(ctx context.Context, actor auth.Context, input SendTestInput) (SendTestResult, error) {
	if ctx == nil {
		return SendTestResult{}, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return SendTestResult{}, err
	}

	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if email == "" && phone == "" {
		return SendTestResult{}, talk.ErrContactRequired
	}
	if email != "" {
		validated, err := talk.ValidateEmail(email)
		if err != nil {
			return SendTestResult{}, err
		}
		email = validated
	}

	t, err := s.repo.GetTalk(ctx, input.TalkID)
	if err != nil {
		return SendTestResult{}, err
	}

	token, err := talk.NewTestToken()
	if err != nil {
		return SendTestResult{}, errs.Wrap(err, "generate test token")
	}

	created, err := s.repo.CreateTestDistribution(ctx, ports.TestDistribution{
		TalkID: t.TalkID,
		Token:  token,
		Email:  email,
		Phone:  phone,
		SentAt: nowUTCString(),
	})
	if err != nil {
		return SendTestResult{}, errs.Wrap(err, "insert test distribution")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "talks.preview"), slog.Uint64("talk_id", t.TalkID))
	link := s.previewURL(token)
	testTitle := "[TEST PREVIEW] " + t.Title

	result := SendTestResult{TestURL: link}
	var parts []string

	if email != "" {
		subject, htmlBody, textBody := s.renderEmail(testTitle, link, "")
		if err := s.sendEmailBounded(logCtx, email, subject, htmlBody, textBody); err != nil {
			logging.Warn(logCtx, "test email failed", slog.Any("err", errs.Loggable(err)))
			parts = append(parts, fmt.Sprintf("email to %s failed: %v", email, err))
		} else {
			result.EmailSent = true
			parts = append(parts, "email sent to "+email)
		}
	}
	if phone != "" {
		body := s.renderSMS(testTitle, link)
		if err := s.sendSMSBounded(logCtx, phone, body); err != nil {
			logging.Warn(logCtx, "test sms failed", slog.Any("err", errs.Loggable(err)))
			parts = append(parts, fmt.Sprintf("sms to %s failed: %v", phone, err))
		} else {
			result.SMSSent = true
			parts = append(parts, "sms sent to "+phone)
		}
	}

	if err := s.repo.SetTestDelivery(ctx, created.TestID, result.EmailSent, result.SMSSent); err != nil {
		logging.Warn(logCtx, "record test delivery flags failed", slog.Any("err", errs.Loggable(err)))
	}

	result.Message = strings.Join(parts, "; ")
	return result, nil
}
