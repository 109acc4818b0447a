package talks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"safetyhub/internal/bootstrap/logging"
	"safetyhub/internal/domain/auth"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

// DistributeResult reports a fan-out outcome. Skipped holds recipients
// that already had a delivery (an expected no-op, not an error); Errors
// holds per-recipient delivery failures keyed by recipient name.
type DistributeResult struct {
	SuccessCount int
	Skipped      []string
	Errors       []string
}

// Distribute fans a draft talk out to the selected recipients. One
// recipient's notification failure never blocks the rest, and a failed
// send never rolls back the delivery record: the row is the durable
// statement of intent-to-deliver.
func (s *Service) Distribute(ctx context.Context, actor auth.Context, talkID uint64, recipientIDs []uint64) (DistributeResult, error) {
	if ctx == nil {
		return DistributeResult{}, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return DistributeResult{}, err
	}
	if len(recipientIDs) == 0 {
		return DistributeResult{}, talk.ErrNoRecipients
	}

	t, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return DistributeResult{}, err
	}
	if t.Status != string(talk.StatusDraft) {
		return DistributeResult{}, talk.ErrTalkNotDraft
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "talks.distribute"), slog.Uint64("talk_id", talkID))

	result := DistributeResult{}
	seen := make(map[uint64]struct{}, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		if _, dup := seen[recipientID]; dup {
			continue
		}
		seen[recipientID] = struct{}{}

		recipient, err := s.directory.GetRecipient(ctx, recipientID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("recipient %d: %v", recipientID, err))
			continue
		}

		exists, err := s.repo.HasDistribution(ctx, talkID, recipientID)
		if err != nil {
			return result, errs.Wrap(err, "check existing distribution")
		}
		if exists {
			result.Skipped = append(result.Skipped, recipient.Name)
			continue
		}

		token, err := talk.NewDistributionToken()
		if err != nil {
			return result, errs.Wrap(err, "generate distribution token")
		}

		now := nowUTCString()
		created, err := s.repo.CreateDistribution(ctx, ports.Distribution{
			TalkID:      talkID,
			RecipientID: recipientID,
			Token:       token,
			SentAt:      now,
		})
		if err != nil {
			if errors.Is(err, ports.ErrDuplicateDistribution) {
				// Lost a race with a concurrent insert; same outcome as
				// the skip check above.
				result.Skipped = append(result.Skipped, recipient.Name)
				continue
			}
			return result, errs.Wrap(err, "insert distribution")
		}
		result.SuccessCount++

		if sendErrs := s.notifyRecipient(logCtx, recipient, t.Title, created.Token); len(sendErrs) > 0 {
			result.Errors = append(result.Errors, sendErrs...)
		}
		if err := s.repo.RecordNotifyAttempt(ctx, created.DistributionID, nowUTCString()); err != nil {
			logging.Warn(logCtx, "record notify attempt failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	if result.SuccessCount > 0 {
		flipped, err := s.repo.MarkTalkDistributed(ctx, talkID, nowUTCString())
		if err != nil {
			return result, errs.Wrap(err, "mark talk distributed")
		}
		if !flipped {
			logging.Warn(logCtx, "talk status already flipped by concurrent distribute")
		}
		if err := s.repo.PurgeTestDistributions(ctx, talkID); err != nil {
			logging.Warn(logCtx, "purge test distributions failed", slog.Any("err", errs.Loggable(err)))
		}
	}

	logging.Info(logCtx, "distribution finished",
		slog.Int("success", result.SuccessCount),
		slog.Int("skipped", len(result.Skipped)),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// notifyRecipient attempts every channel the recipient has an address
// for. Outcomes are independent; each failure is reported keyed by name.
func (s *Service) notifyRecipient(ctx context.Context, recipient ports.Recipient, title string, token string) []string {
	link := s.confirmURL(token)
	var failures []string

	if recipient.Email != "" {
		subject, htmlBody, textBody := s.renderEmail(title, link, recipient.Name)
		if err := s.sendEmailBounded(ctx, recipient.Email, subject, htmlBody, textBody); err != nil {
			logging.Warn(ctx, "email delivery failed",
				slog.String("recipient", recipient.Name),
				slog.Any("err", errs.Loggable(err)),
			)
			failures = append(failures, fmt.Sprintf("%s: email: %v", recipient.Name, err))
		}
	}
	if recipient.Phone != "" {
		body := s.renderSMS(title, link)
		if err := s.sendSMSBounded(ctx, recipient.Phone, body); err != nil {
			logging.Warn(ctx, "sms delivery failed",
				slog.String("recipient", recipient.Name),
				slog.Any("err", errs.Loggable(err)),
			)
			failures = append(failures, fmt.Sprintf("%s: sms: %v", recipient.Name, err))
		}
	}
	if recipient.Email == "" && recipient.Phone == "" {
		failures = append(failures, fmt.Sprintf("%s: no email or phone on file", recipient.Name))
	}
	return failures
}
