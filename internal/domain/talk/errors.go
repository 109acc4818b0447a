package talk

import "errors"

// Validation failures. Reported to the caller immediately, never persisted.
var (
	ErrTitleRequired        = errors.New("talk title is required")
	ErrBodyRequired         = errors.New("talk body is required")
	ErrInvalidAttachmentURL = errors.New("attachment url must be absolute")
	ErrAttachmentType       = errors.New("attachment file type is not allowed")
	ErrAttachmentTooLarge   = errors.New("attachment exceeds the size ceiling")
	ErrQuizQuestionText     = errors.New("quiz question text is required")
	ErrQuizNeedsTwoAnswers  = errors.New("quiz question needs at least two answers")
	ErrQuizOneCorrect       = errors.New("quiz question needs exactly one correct answer")
	ErrContactRequired      = errors.New("at least one of email or phone is required")
	ErrInvalidEmail         = errors.New("email address is malformed")
	ErrNotUnderstood        = errors.New("understood flag must be set")
	ErrSignatureRequired    = errors.New("signature payload is empty")
	ErrNoRecipients         = errors.New("at least one recipient is required")
)

// State conflicts. Distinguish expected idempotent no-ops (skipped
// recipients) from genuine conflicts; only the latter use these.
var (
	ErrTalkNotDraft     = errors.New("talk is not in draft status")
	ErrAlreadyConfirmed = errors.New("distribution is already confirmed")
)

// Quiz gating.
var (
	ErrQuizScoreRequired  = errors.New("quiz score is required for this talk")
	ErrQuizScoreBelowPass = errors.New("quiz score is below the passing threshold")
)

// IsValidation reports whether err belongs to the validation class, so
// transport layers can map it to a client error instead of a server fault.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrTitleRequired, ErrBodyRequired, ErrInvalidAttachmentURL,
		ErrAttachmentType, ErrAttachmentTooLarge, ErrQuizQuestionText,
		ErrQuizNeedsTwoAnswers, ErrQuizOneCorrect, ErrContactRequired,
		ErrInvalidEmail, ErrNotUnderstood, ErrSignatureRequired,
		ErrNoRecipients, ErrQuizScoreRequired, ErrQuizScoreBelowPass,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// IsStateConflict reports whether err is a lifecycle conflict.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrTalkNotDraft) || errors.Is(err, ErrAlreadyConfirmed)
}
