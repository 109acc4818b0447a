package talk

import (
	"errors"
	"testing"
)

func TestValidateTitle(t *testing.T) {
	title, err := ValidateTitle("  Ladder Safety  ")
	if err != nil {
		t.Fatalf("ValidateTitle() error = %v", err)
	}
	if title != "Ladder Safety" {
		t.Fatalf("ValidateTitle() = %q", title)
	}

	if _, err := ValidateTitle("   "); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("ValidateTitle(blank) error = %v", err)
	}
}

func TestValidateAttachmentURL(t *testing.T) {
	url, err := ValidateAttachmentURL("https://example.com/video")
	if err != nil {
		t.Fatalf("ValidateAttachmentURL() error = %v", err)
	}
	if url != "https://example.com/video" {
		t.Fatalf("ValidateAttachmentURL() = %q", url)
	}

	for _, raw := range []string{"example.com/video", "ftp://example.com/x", "/relative/path", ""} {
		if _, err := ValidateAttachmentURL(raw); !errors.Is(err, ErrInvalidAttachmentURL) {
			t.Fatalf("ValidateAttachmentURL(%q) error = %v", raw, err)
		}
	}
}

func TestValidateAttachmentFile(t *testing.T) {
	ext, err := ValidateAttachmentFile(".PDF", 1024, 1<<20)
	if err != nil {
		t.Fatalf("ValidateAttachmentFile() error = %v", err)
	}
	if ext != "pdf" {
		t.Fatalf("ValidateAttachmentFile() ext = %q", ext)
	}

	if _, err := ValidateAttachmentFile(".exe", 10, 1<<20); !errors.Is(err, ErrAttachmentType) {
		t.Fatalf("ValidateAttachmentFile(exe) error = %v", err)
	}
	if _, err := ValidateAttachmentFile(".mp4", 2<<20, 1<<20); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("ValidateAttachmentFile(oversized) error = %v", err)
	}
}

func TestValidateQuiz(t *testing.T) {
	valid := []QuizQuestionInput{{
		Text: "When must a harness be worn?",
		Answers: []QuizAnswerInput{
			{Text: "Above 2m", Correct: true},
			{Text: "Never"},
		},
	}}
	if err := ValidateQuiz(valid); err != nil {
		t.Fatalf("ValidateQuiz(valid) error = %v", err)
	}
	if err := ValidateQuiz(nil); err != nil {
		t.Fatalf("ValidateQuiz(empty) error = %v", err)
	}

	oneAnswer := []QuizQuestionInput{{
		Text:    "Q",
		Answers: []QuizAnswerInput{{Text: "only", Correct: true}},
	}}
	if err := ValidateQuiz(oneAnswer); !errors.Is(err, ErrQuizNeedsTwoAnswers) {
		t.Fatalf("ValidateQuiz(one answer) error = %v", err)
	}

	twoCorrect := []QuizQuestionInput{{
		Text: "Q",
		Answers: []QuizAnswerInput{
			{Text: "a", Correct: true},
			{Text: "b", Correct: true},
		},
	}}
	if err := ValidateQuiz(twoCorrect); !errors.Is(err, ErrQuizOneCorrect) {
		t.Fatalf("ValidateQuiz(two correct) error = %v", err)
	}

	noText := []QuizQuestionInput{{
		Text: " ",
		Answers: []QuizAnswerInput{
			{Text: "a", Correct: true},
			{Text: "b"},
		},
	}}
	if err := ValidateQuiz(noText); !errors.Is(err, ErrQuizQuestionText) {
		t.Fatalf("ValidateQuiz(no text) error = %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	address, err := ValidateEmail("  ana@example.com ")
	if err != nil {
		t.Fatalf("ValidateEmail() error = %v", err)
	}
	if address != "ana@example.com" {
		t.Fatalf("ValidateEmail() = %q", address)
	}

	for _, raw := range []string{"", "not-an-email", "@example.com"} {
		if _, err := ValidateEmail(raw); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("ValidateEmail(%q) error = %v", raw, err)
		}
	}
}

func TestCheckQuizGate(t *testing.T) {
	if err := CheckQuizGate(false, nil, 80); err != nil {
		t.Fatalf("CheckQuizGate(no quiz) error = %v", err)
	}

	if err := CheckQuizGate(true, nil, 80); !errors.Is(err, ErrQuizScoreRequired) {
		t.Fatalf("CheckQuizGate(missing score) error = %v", err)
	}

	low := 50
	if err := CheckQuizGate(true, &low, 80); !errors.Is(err, ErrQuizScoreBelowPass) {
		t.Fatalf("CheckQuizGate(50) error = %v", err)
	}

	pass := 80
	if err := CheckQuizGate(true, &pass, 80); err != nil {
		t.Fatalf("CheckQuizGate(80) error = %v", err)
	}
}

func TestScoreQuiz(t *testing.T) {
	correct := map[uint64]uint64{1: 11, 2: 22}

	if got := ScoreQuiz(correct, map[uint64]uint64{1: 11, 2: 22}); got != 100 {
		t.Fatalf("ScoreQuiz(all right) = %d", got)
	}
	if got := ScoreQuiz(correct, map[uint64]uint64{1: 11, 2: 21}); got != 50 {
		t.Fatalf("ScoreQuiz(half right) = %d", got)
	}
	if got := ScoreQuiz(correct, map[uint64]uint64{1: 11}); got != 50 {
		t.Fatalf("ScoreQuiz(unanswered counts wrong) = %d", got)
	}
	if got := ScoreQuiz(nil, map[uint64]uint64{1: 11}); got != 0 {
		t.Fatalf("ScoreQuiz(no questions) = %d", got)
	}
}
