package talks

import (
	"context"
	"errors"

	"safetyhub/internal/domain/talk"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

// AnswerView and QuestionView are the recipient-facing quiz shape; the
// correct flags never leave the server.
type AnswerView struct {
	AnswerID uint64
	Text     string
}

type QuestionView struct {
	QuestionID uint64
	Text       string
	Answers    []AnswerView
}

type TalkView struct {
	TalkID         uint64
	Title          string
	Body           string
	AttachmentKind string
	AttachmentFile string
	AttachmentURL  string
	HasQuiz        bool
	PassThreshold  int
	Questions      []QuestionView
	RecipientName  string
	Confirmed      bool
	IsTest         bool
}

// ViewByToken resolves a confirmation or preview link. Preview tokens
// render the same content but never offer a confirmation path; viewing
// one only bumps its last-viewed timestamp.
func (s *Service) ViewByToken(ctx context.Context, token string) (TalkView, error) {
	if ctx == nil {
		return TalkView{}, errors.New("context is required")
	}

	if talk.IsTestToken(token) {
		td, err := s.repo.GetTestDistributionByToken(ctx, token)
		if err != nil {
			return TalkView{}, err
		}
		view, err := s.buildTalkView(ctx, td.TalkID)
		if err != nil {
			return TalkView{}, err
		}
		view.IsTest = true
		if err := s.repo.TouchTestViewed(ctx, td.TestID, nowUTCString()); err != nil {
			return TalkView{}, errs.Wrap(err, "touch test viewed")
		}
		return view, nil
	}

	d, err := s.repo.GetDistributionByToken(ctx, token)
	if err != nil {
		return TalkView{}, err
	}

	view, err := s.buildTalkView(ctx, d.TalkID)
	if err != nil {
		return TalkView{}, err
	}

	recipient, err := s.directory.GetRecipient(ctx, d.RecipientID)
	if err == nil {
		view.RecipientName = recipient.Name
	}

	confirmed, err := s.repo.HasConfirmation(ctx, d.DistributionID)
	if err != nil {
		return TalkView{}, errs.Wrap(err, "check confirmation")
	}
	view.Confirmed = confirmed
	return view, nil
}

func (s *Service) buildTalkView(ctx context.Context, talkID uint64) (TalkView, error) {
	t, err := s.repo.GetTalk(ctx, talkID)
	if err != nil {
		return TalkView{}, err
	}

	view := TalkView{
		TalkID:         t.TalkID,
		Title:          t.Title,
		Body:           t.Body,
		AttachmentKind: t.AttachmentKind,
		AttachmentFile: t.AttachmentPath,
		AttachmentURL:  t.AttachmentURL,
		HasQuiz:        t.HasQuiz,
		PassThreshold:  s.cfg.QuizPassThreshold,
	}
	if !t.HasQuiz {
		return view, nil
	}

	questions, err := s.repo.ListQuizQuestions(ctx, talkID)
	if err != nil {
		return TalkView{}, errs.Wrap(err, "load quiz questions")
	}
	for _, q := range questions {
		qv := QuestionView{QuestionID: q.QuestionID, Text: q.Text}
		for _, a := range q.Answers {
			qv.Answers = append(qv.Answers, AnswerView{AnswerID: a.AnswerID, Text: a.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// GradeQuiz scores submitted answer selections for the talk behind a
// token. Selections map question id to the chosen answer id.
func (s *Service) GradeQuiz(ctx context.Context, token string, selections map[uint64]uint64) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	var talkID uint64
	if talk.IsTestToken(token) {
		td, err := s.repo.GetTestDistributionByToken(ctx, token)
		if err != nil {
			return 0, err
		}
		talkID = td.TalkID
	} else {
		d, err := s.repo.GetDistributionByToken(ctx, token)
		if err != nil {
			return 0, err
		}
		talkID = d.TalkID
	}

	questions, err := s.repo.ListQuizQuestions(ctx, talkID)
	if err != nil {
		return 0, errs.Wrap(err, "load quiz questions")
	}

	correct := make(map[uint64]uint64, len(questions))
	for _, q := range questions {
		for _, a := range q.Answers {
			if a.Correct {
				correct[q.QuestionID] = a.AnswerID
			}
		}
	}
	return talk.ScoreQuiz(correct, selections), nil
}

type ConfirmInput struct {
	Token         string
	Understood    bool
	SignatureMode talk.SignatureMode
	SignatureData string
	TypedName     string
	QuizScore     *int
	SubmitterIP   string
}

// Confirm records the recipient's signed acknowledgment. It is the only
// transition out of Pending and refuses to run twice: a second submission
// is rejected, never a second row.
func (s *Service) Confirm(ctx context.Context, input ConfirmInput) (ports.Confirmation, error) {
	if ctx == nil {
		return ports.Confirmation{}, errors.New("context is required")
	}

	// Preview tokens have no confirmation path at all.
	if talk.IsTestToken(input.Token) {
		return ports.Confirmation{}, ports.ErrDistributionNotFound
	}

	d, err := s.repo.GetDistributionByToken(ctx, input.Token)
	if err != nil {
		return ports.Confirmation{}, err
	}

	confirmed, err := s.repo.HasConfirmation(ctx, d.DistributionID)
	if err != nil {
		return ports.Confirmation{}, errs.Wrap(err, "check confirmation")
	}
	if confirmed {
		return ports.Confirmation{}, talk.ErrAlreadyConfirmed
	}

	t, err := s.repo.GetTalk(ctx, d.TalkID)
	if err != nil {
		return ports.Confirmation{}, err
	}

	if err := talk.CheckQuizGate(t.HasQuiz, input.QuizScore, s.cfg.QuizPassThreshold); err != nil {
		return ports.Confirmation{}, err
	}
	if !input.Understood {
		return ports.Confirmation{}, talk.ErrNotUnderstood
	}

	signature, err := talk.NormalizeSignature(input.SignatureMode, input.SignatureData, input.TypedName)
	if err != nil {
		return ports.Confirmation{}, err
	}

	var score *int
	if t.HasQuiz {
		score = input.QuizScore
	}

	created, err := s.repo.CreateConfirmation(ctx, ports.Confirmation{
		DistributionID: d.DistributionID,
		SignatureData:  signature,
		SubmitterIP:    input.SubmitterIP,
		Understood:     true,
		QuizScore:      score,
		SubmittedAt:    nowUTCString(),
	})
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateConfirmation) {
			return ports.Confirmation{}, talk.ErrAlreadyConfirmed
		}
		return ports.Confirmation{}, errs.Wrap(err, "insert confirmation")
	}
	return created, nil
}
