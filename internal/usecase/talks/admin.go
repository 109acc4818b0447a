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

// GetTalk returns one talk with its quiz questions for the admin screens.
func (s *Service) GetTalk(ctx context.Context, actor auth.Context, talkID uint64) (ports.Talk, []ports.QuizQuestion, error) {
	if ctx == nil {
		return ports.Talk{}, nil, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return ports.Talk{}, nil, err
	}

	t, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return ports.Talk{}, nil, err
	}

	var questions []ports.QuizQuestion
	if t.HasQuiz {
		questions, err = s.repo.ListQuizQuestions(ctx, talkID)
		if err != nil {
			return ports.Talk{}, nil, errs.Wrap(err, "load quiz questions")
		}
	}
	return t, questions, nil
}

func (s *Service) ListTalks(ctx context.Context, actor auth.Context, includeArchived bool) ([]ports.Talk, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListTalks(ctx, ports.TalkFilter{IncludeArchived: includeArchived})
}

func (s *Service) ArchiveTalk(ctx context.Context, actor auth.Context, talkID uint64) error {
	return s.setArchived(ctx, actor, talkID, true)
}

func (s *Service) UnarchiveTalk(ctx context.Context, actor auth.Context, talkID uint64) error {
	return s.setArchived(ctx, actor, talkID, false)
}

func (s *Service) setArchived(ctx context.Context, actor auth.Context, talkID uint64, archived bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.SetTalkArchived(ctx, talkID, archived)
}

// DeleteTalk removes a talk and every descendant row. Destructive and
// super-admin only.
func (s *Service) DeleteTalk(ctx context.Context, actor auth.Context, talkID uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !auth.CanDelete(actor.Role) {
		return ErrForbidden
	}

	t, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteTalkCascade(ctx, talkID); err != nil {
		return errs.Wrap(err, "delete talk cascade")
	}

	if t.AttachmentKind == string(talk.AttachmentFile) && t.AttachmentPath != "" {
		if err := s.files.Remove(ctx, t.AttachmentPath); err != nil && !errors.Is(err, ports.ErrFileNotFound) {
			logging.Warn(ctx, "remove talk attachment failed",
				slog.Uint64("talk_id", talkID),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
	return nil
}

// ResendNotification re-delivers one channel to a recipient who has a
// distribution but no confirmation yet.
func (s *Service) ResendNotification(ctx context.Context, actor auth.Context, talkID uint64, recipientID uint64, channel string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return err
	}

	d, err := s.repo.GetDistribution(ctx, talkID, recipientID)
	if err != nil {
		return err
	}

	confirmed, err := s.repo.HasConfirmation(ctx, d.DistributionID)
	if err != nil {
		return errs.Wrap(err, "check confirmation")
	}
	if confirmed {
		return talk.ErrAlreadyConfirmed
	}

	t, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return err
	}
	recipient, err := s.directory.GetRecipient(ctx, recipientID)
	if err != nil {
		return err
	}

	link := s.confirmURL(d.Token)
	switch strings.ToLower(channel) {
	case "email":
		if recipient.Email == "" {
			return fmt.Errorf("recipient %q has no email on file", recipient.Name)
		}
		subject, htmlBody, textBody := s.renderEmail(t.Title, link, recipient.Name)
		if err := s.sendEmailBounded(ctx, recipient.Email, subject, htmlBody, textBody); err != nil {
			return errs.Wrap(err, "resend email")
		}
	case "sms":
		if recipient.Phone == "" {
			return fmt.Errorf("recipient %q has no phone on file", recipient.Name)
		}
		if err := s.sendSMSBounded(ctx, recipient.Phone, s.renderSMS(t.Title, link)); err != nil {
			return errs.Wrap(err, "resend sms")
		}
	default:
		return fmt.Errorf("unknown notification channel %q", channel)
	}

	return s.repo.RecordNotifyAttempt(ctx, d.DistributionID, nowUTCString())
}
