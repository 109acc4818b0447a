package ports

import (
	"context"
	"errors"
)

var (
	ErrTalkNotFound          = errors.New("safety talk not found")
	ErrDistributionNotFound  = errors.New("distribution not found")
	ErrDuplicateDistribution = errors.New("distribution already exists for this talk and recipient")
	ErrDuplicateConfirmation = errors.New("confirmation already exists for this distribution")
)

// Talk is the persistence view of a safety talk. Timestamps are RFC3339
// UTC strings; empty means unset.
type Talk struct {
	TalkID             uint64
	Title              string
	Body               string
	AuthorID           uint64
	AttachmentKind     string
	AttachmentPath     string
	AttachmentExt      string
	AttachmentURL      string
	HasQuiz            bool
	Status             string
	Archived           bool
	CreatedAt          string
	FirstDistributedAt string
}

type QuizQuestion struct {
	QuestionID uint64
	TalkID     uint64
	Position   int
	Text       string
	Answers    []QuizAnswer
}

type QuizAnswer struct {
	AnswerID   uint64
	QuestionID uint64
	Position   int
	Text       string
	Correct    bool
}

type Distribution struct {
	DistributionID uint64
	TalkID         uint64
	RecipientID    uint64
	Token          string
	SentAt         string
	NotifyAttempts int
	LastSentAt     string
}

type Confirmation struct {
	ConfirmationID uint64
	DistributionID uint64
	SignatureData  string
	SubmitterIP    string
	Understood     bool
	QuizScore      *int
	SubmittedAt    string
}

type TestDistribution struct {
	TestID       uint64
	TalkID       uint64
	Token        string
	Email        string
	Phone        string
	EmailSent    bool
	SMSSent      bool
	SentAt       string
	LastViewedAt string
}

type TalkFilter struct {
	IncludeArchived bool
	Status          string
}

// PendingTalkReport is one row of the pending-signatures report.
type PendingTalkReport struct {
	TalkID           uint64
	Title            string
	FirstDistributed string
	TotalDistributed int
	TotalSigned      int
	PendingNames     []string
}

// TalkHistoryRow aggregates distribution/confirmation counts per talk.
type TalkHistoryRow struct {
	TalkID             uint64
	Title              string
	CreatedAt          string
	FirstDistributedAt string
	LastSentAt         string
	TotalDistributed   int
	TotalConfirmed     int
}

type TalkReadRepository interface {
	GetTalk(ctx context.Context, talkID uint64) (Talk, error)
	ListTalks(ctx context.Context, filter TalkFilter) ([]Talk, error)
	ListQuizQuestions(ctx context.Context, talkID uint64) ([]QuizQuestion, error)
	ListDistributions(ctx context.Context, talkID uint64) ([]Distribution, error)
	GetDistributionByToken(ctx context.Context, token string) (Distribution, error)
	GetDistribution(ctx context.Context, talkID uint64, recipientID uint64) (Distribution, error)
	HasDistribution(ctx context.Context, talkID uint64, recipientID uint64) (bool, error)
	HasConfirmation(ctx context.Context, distributionID uint64) (bool, error)
	GetTestDistributionByToken(ctx context.Context, token string) (TestDistribution, error)
	PendingSignatures(ctx context.Context, sentAfter string) ([]PendingTalkReport, error)
	TalkHistory(ctx context.Context) ([]TalkHistoryRow, error)
}

type TalkRepository interface {
	TalkReadRepository

	CreateTalk(ctx context.Context, talk Talk, questions []QuizQuestion) (Talk, error)
	// UpdateTalk rewrites the talk row; when replaceQuiz is set the quiz
	// question/answer rows are replaced wholesale (delete-then-insert).
	UpdateTalk(ctx context.Context, talk Talk, questions []QuizQuestion, replaceQuiz bool) error
	SetTalkArchived(ctx context.Context, talkID uint64, archived bool) error
	// DeleteTalkCascade removes the talk and all descendant rows in one
	// transaction.
	DeleteTalkCascade(ctx context.Context, talkID uint64) error

	CreateDistribution(ctx context.Context, d Distribution) (Distribution, error)
	RecordNotifyAttempt(ctx context.Context, distributionID uint64, sentAt string) error
	// MarkTalkDistributed performs the atomic conditional status flip
	// (status draft -> distributed) and sets first_distributed_at only if
	// unset. Returns false when the talk was not in draft.
	MarkTalkDistributed(ctx context.Context, talkID uint64, at string) (bool, error)

	CreateConfirmation(ctx context.Context, c Confirmation) (Confirmation, error)

	CreateTestDistribution(ctx context.Context, td TestDistribution) (TestDistribution, error)
	TouchTestViewed(ctx context.Context, testID uint64, viewedAt string) error
	SetTestDelivery(ctx context.Context, testID uint64, emailSent bool, smsSent bool) error
	PurgeTestDistributions(ctx context.Context, talkID uint64) error
}
