package talks

import (
	"context"
	"errors"
	"path/filepath"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

type CreateTalkInput struct {
	Title      string
	Body       string
	Attachment *AttachmentInput
	Quiz       []talk.QuizQuestionInput
}

// CreateTalk validates and persists a new draft talk. Any validation
// failure aborts before anything is written; an upload failure surfaces
// as a storage error distinct from a database one.
func (s *Service) CreateTalk(ctx context.Context, actor auth.Context, input CreateTalkInput) (uint64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}

	title, body, questions, err := s.validateTalkInput(input.Title, input.Body, input.Quiz)
	if err != nil {
		return 0, err
	}

	attachment, err := s.resolveAttachment(ctx, input.Attachment)
	if err != nil {
		return 0, err
	}

	now := nowUTCString()
	row := ports.Talk{
		Title:          title,
		Body:           body,
		AuthorID:       actor.UserID,
		AttachmentKind: string(attachment.Kind),
		AttachmentPath: attachment.Path,
		AttachmentExt:  attachment.Ext,
		AttachmentURL:  attachment.URL,
		HasQuiz:        len(questions) > 0,
		Status:         string(talk.StatusDraft),
		CreatedAt:      now,
	}

	var created ports.Talk
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.CreateTalk(txCtx, row, questions)
		return err
	}); err != nil {
		return 0, errs.Wrap(err, "persist talk")
	}

	return created.TalkID, nil
}

type UpdateTalkInput struct {
	Title      string
	Body       string
	Attachment *AttachmentInput
	// Quiz nil leaves the existing quiz untouched; non-nil replaces it
	// wholesale (an empty slice removes the quiz).
	Quiz *[]talk.QuizQuestionInput
}

// UpdateTalk rewrites a draft talk. Distributed talks are immutable.
func (s *Service) UpdateTalk(ctx context.Context, actor auth.Context, talkID uint64, input UpdateTalkInput) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return err
	}

	existing, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return err
	}
	if existing.Status != string(talk.StatusDraft) {
		return talk.ErrTalkNotDraft
	}

	quiz := []talk.QuizQuestionInput{}
	replaceQuiz := input.Quiz != nil
	if replaceQuiz {
		quiz = *input.Quiz
	}

	title, body, questions, err := s.validateTalkInput(input.Title, input.Body, quiz)
	if err != nil {
		return err
	}

	attachment := talk.Attachment{
		Kind: talk.AttachmentKind(existing.AttachmentKind),
		Path: existing.AttachmentPath,
		Ext:  existing.AttachmentExt,
		URL:  existing.AttachmentURL,
	}
	if input.Attachment != nil {
		attachment, err = s.resolveAttachment(ctx, input.Attachment)
		if err != nil {
			return err
		}
	}

	hasQuiz := existing.HasQuiz
	if replaceQuiz {
		hasQuiz = len(questions) > 0
	}

	row := ports.Talk{
		TalkID:         talkID,
		Title:          title,
		Body:           body,
		AuthorID:       existing.AuthorID,
		AttachmentKind: string(attachment.Kind),
		AttachmentPath: attachment.Path,
		AttachmentExt:  attachment.Ext,
		AttachmentURL:  attachment.URL,
		HasQuiz:        hasQuiz,
		Status:         existing.Status,
		CreatedAt:      existing.CreatedAt,
	}

	// The quiz replace (delete-then-insert) rides the same transaction so
	// no reader ever observes a talk with a half-written quiz.
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.UpdateTalk(txCtx, row, questions, replaceQuiz)
	}); err != nil {
		return errs.Wrap(err, "persist talk update")
	}
	return nil
}

func (s *Service) validateTalkInput(rawTitle string, rawBody string, quiz []talk.QuizQuestionInput) (string, string, []ports.QuizQuestion, error) {
	title, err := talk.ValidateTitle(rawTitle)
	if err != nil {
		return "", "", nil, err
	}
	if rawBody == "" {
		return "", "", nil, talk.ErrBodyRequired
	}
	if err := talk.ValidateQuiz(quiz); err != nil {
		return "", "", nil, err
	}

	questions := make([]ports.QuizQuestion, 0, len(quiz))
	for i, q := range quiz {
		answers := make([]ports.QuizAnswer, 0, len(q.Answers))
		for j, a := range q.Answers {
			answers = append(answers, ports.QuizAnswer{Position: j + 1, Text: a.Text, Correct: a.Correct})
		}
		questions = append(questions, ports.QuizQuestion{Position: i + 1, Text: q.Text, Answers: answers})
	}
	return title, rawBody, questions, nil
}

func (s *Service) resolveAttachment(ctx context.Context, input *AttachmentInput) (talk.Attachment, error) {
	if input == nil {
		return talk.Attachment{}, nil
	}

	if input.URL != "" {
		url, err := talk.ValidateAttachmentURL(input.URL)
		if err != nil {
			return talk.Attachment{}, err
		}
		return talk.Attachment{Kind: talk.AttachmentWebsite, URL: url}, nil
	}

	if input.File == nil {
		return talk.Attachment{}, nil
	}

	ext, err := talk.ValidateAttachmentFile(filepath.Ext(input.FileName), input.Size, s.cfg.MaxUploadBytes)
	if err != nil {
		return talk.Attachment{}, err
	}

	stored, err := s.files.Save(ctx, input.FileName, input.File)
	if err != nil {
		return talk.Attachment{}, errs.Wrap(err, "store attachment upload")
	}
	return talk.Attachment{Kind: talk.AttachmentFile, Path: stored.Name, Ext: ext}, nil
}
