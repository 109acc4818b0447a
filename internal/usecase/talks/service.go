package talks

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/infrastructure/notify"
	"safetyhub/internal/ports"
)

var ErrForbidden = errors.New("operation not allowed for this role")

// Config carries the workflow knobs the service needs at runtime.
type Config struct {
	BaseURL           string
	QuizPassThreshold int
	NotifyTimeout     time.Duration
	SMSMaxLength      int
	MaxUploadBytes    int64
	Templates         notify.Templates
}

// Service implements the safety-talk workflow: authoring, test sends,
// distribution fan-out, confirmation, and reporting.
type Service struct {
	repo      ports.TalkRepository
	uow       ports.UnitOfWork
	directory ports.RecipientDirectory
	notifier  ports.Notifier
	files     ports.FileStore
	cfg       Config
}

func NewService(
	repo ports.TalkRepository,
	uow ports.UnitOfWork,
	directory ports.RecipientDirectory,
	notifier ports.Notifier,
	files ports.FileStore,
	cfg Config,
) *Service {
	if cfg.QuizPassThreshold == 0 {
		cfg.QuizPassThreshold = 80
	}
	if cfg.NotifyTimeout == 0 {
		cfg.NotifyTimeout = 15 * time.Second
	}
	if cfg.SMSMaxLength == 0 {
		cfg.SMSMaxLength = 160
	}
	return &Service{
		repo:      repo,
		uow:       uow,
		directory: directory,
		notifier:  notifier,
		files:     files,
		cfg:       cfg,
	}
}

// AttachmentInput is either an uploaded file or an external URL.
type AttachmentInput struct {
	FileName string
	File     io.Reader
	Size     int64
	URL      string
}

func requireAdmin(actor auth.Context) error {
	if !auth.CanAdminister(actor.Role) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) confirmURL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/t/" + token
}

func (s *Service) previewURL(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/preview/" + token
}

// sendEmailBounded applies the per-channel timeout so one unresponsive
// provider cannot stall a whole distribution loop.
func (s *Service) sendEmailBounded(ctx context.Context, to string, subject string, htmlBody string, textBody string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()
	return s.notifier.SendEmail(sendCtx, to, subject, htmlBody, textBody)
}

func (s *Service) sendSMSBounded(ctx context.Context, to string, body string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.NotifyTimeout)
	defer cancel()
	return s.notifier.SendSMS(sendCtx, to, body)
}

func (s *Service) renderEmail(title string, link string, name string) (subject string, htmlBody string, textBody string) {
	subject = notify.Render(s.cfg.Templates.Email.Subject, title, link, name)
	htmlBody = notify.Render(s.cfg.Templates.Email.HTMLBody, title, link, name)
	textBody = notify.Render(s.cfg.Templates.Email.TextBody, title, link, name)
	return subject, htmlBody, textBody
}

func (s *Service) renderSMS(title string, link string) string {
	return notify.BuildSMSBody(s.cfg.Templates.SMS.Body, title, link, s.cfg.SMSMaxLength)
}

func quizInputs(questions []ports.QuizQuestion) []talk.QuizQuestionInput {
	inputs := make([]talk.QuizQuestionInput, 0, len(questions))
	for _, q := range questions {
		answers := make([]talk.QuizAnswerInput, 0, len(q.Answers))
		for _, a := range q.Answers {
			answers = append(answers, talk.QuizAnswerInput{Text: a.Text, Correct: a.Correct})
		}
		inputs = append(inputs, talk.QuizQuestionInput{Text: q.Text, Answers: answers})
	}
	return inputs
}
