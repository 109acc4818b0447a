package talk

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// allowedAttachmentExts is the upload allow-list for talk attachments.
var allowedAttachmentExts = map[string]struct{}{
	"pdf": {},
	"mp4": {},
}

// QuizQuestionInput is one authored question with its ordered answers.
type QuizQuestionInput struct {
	Text    string
	Answers []QuizAnswerInput
}

type QuizAnswerInput struct {
	Text    string
	Correct bool
}

// ValidateTitle trims and checks the talk title.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrTitleRequired
	}
	return trimmed, nil
}

// ValidateAttachmentURL accepts only well-formed absolute http(s) URLs.
func ValidateAttachmentURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAttachmentURL, raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAttachmentURL, raw)
	}
	return parsed.String(), nil
}

// ValidateAttachmentFile checks extension against the allow-list and the
// size ceiling. ext may carry a leading dot and any case.
func ValidateAttachmentFile(ext string, size int64, maxSize int64) (string, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if _, ok := allowedAttachmentExts[normalized]; !ok {
		return "", fmt.Errorf("%w: %q", ErrAttachmentType, ext)
	}
	if maxSize > 0 && size > maxSize {
		return "", fmt.Errorf("%w: %d bytes", ErrAttachmentTooLarge, size)
	}
	return normalized, nil
}

// ValidateQuiz enforces, per question: non-empty text, at least two
// answers, exactly one marked correct. An empty quiz is valid (no quiz).
func ValidateQuiz(questions []QuizQuestionInput) error {
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: %w", i+1, ErrQuizQuestionText)
		}
		if len(q.Answers) < 2 {
			return fmt.Errorf("question %d: %w", i+1, ErrQuizNeedsTwoAnswers)
		}
		correct := 0
		for _, a := range q.Answers {
			if a.Correct {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d: %w", i+1, ErrQuizOneCorrect)
		}
	}
	return nil
}

// ValidateEmail checks the address shape without resolving anything.
func ValidateEmail(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}
	return parsed.Address, nil
}

// CheckQuizGate enforces the confirmation guard: a talk with a quiz needs
// a submitted score at or above the passing threshold.
func CheckQuizGate(hasQuiz bool, score *int, passThreshold int) error {
	if !hasQuiz {
		return nil
	}
	if score == nil {
		return ErrQuizScoreRequired
	}
	if *score < passThreshold {
		return fmt.Errorf("%w: %d%% < %d%%", ErrQuizScoreBelowPass, *score, passThreshold)
	}
	return nil
}

// ScoreQuiz grades selected answer IDs against the stored questions and
// returns a whole percentage. Unanswered questions count as wrong.
func ScoreQuiz(correctByQuestion map[uint64]uint64, selected map[uint64]uint64) int {
	if len(correctByQuestion) == 0 {
		return 0
	}
	right := 0
	for questionID, correctID := range correctByQuestion {
		if selected[questionID] == correctID {
			right++
		}
	}
	return right * 100 / len(correctByQuestion)
}
