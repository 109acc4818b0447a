package talks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"safetyhub/internal/domain/talk"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
)

func TestSendTestUsesPrefixedToken(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	result, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID, Email: "preview@example.com"})
	if err != nil {
		t.Fatalf("SendTest() error = %v", err)
	}
	if !result.EmailSent {
		t.Fatalf("EmailSent = false")
	}
	if !strings.Contains(result.TestURL, "/preview/"+talk.TestTokenPrefix) {
		t.Fatalf("TestURL = %q", result.TestURL)
	}

	var td model.TestDistribution
	if err := env.db.First(&td).Error; err != nil {
		t.Fatalf("load test row: %v", err)
	}
	if !talk.IsTestToken(td.Token) {
		t.Fatalf("stored token %q lacks prefix", td.Token)
	}
	if !td.EmailSent || td.SMSSent {
		t.Fatalf("delivery flags = email:%v sms:%v", td.EmailSent, td.SMSSent)
	}

	if len(env.notifier.emails) != 1 {
		t.Fatalf("emails = %d", len(env.notifier.emails))
	}
	if !strings.Contains(env.notifier.emails[0].Subject, "[TEST PREVIEW]") {
		t.Fatalf("subject = %q", env.notifier.emails[0].Subject)
	}
}

func TestSendTestKeepsAuditRowOnFailure(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	env.notifier.smsErr = errors.New("gateway down")

	result, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID, Phone: "+15550100"})
	if err != nil {
		t.Fatalf("SendTest() error = %v", err)
	}
	if result.SMSSent {
		t.Fatalf("SMSSent = true despite gateway failure")
	}
	if !strings.Contains(result.Message, "failed") {
		t.Fatalf("Message = %q", result.Message)
	}

	var td model.TestDistribution
	if err := env.db.First(&td).Error; err != nil {
		t.Fatalf("load test row: %v", err)
	}
	if td.SMSSent {
		t.Fatalf("stored sms_sent = true")
	}
}

func TestSendTestValidation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)

	if _, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID}); !errors.Is(err, talk.ErrContactRequired) {
		t.Fatalf("SendTest(no contact) error = %v", err)
	}
	if _, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID, Email: "broken"}); !errors.Is(err, talk.ErrInvalidEmail) {
		t.Fatalf("SendTest(bad email) error = %v", err)
	}
	if _, err := env.svc.SendTest(ctx, employeeActor, SendTestInput{TalkID: talkID, Email: "a@b.co"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("SendTest(employee) error = %v", err)
	}
}

func TestPreviewViewTouchesLastViewed(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	if _, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID, Email: "preview@example.com"}); err != nil {
		t.Fatalf("SendTest() error = %v", err)
	}

	var td model.TestDistribution
	if err := env.db.First(&td).Error; err != nil {
		t.Fatalf("load test row: %v", err)
	}
	if td.LastViewedAt != "" {
		t.Fatalf("last_viewed_at set before any view")
	}

	view, err := env.svc.ViewByToken(ctx, td.Token)
	if err != nil {
		t.Fatalf("ViewByToken() error = %v", err)
	}
	if !view.IsTest {
		t.Fatalf("view.IsTest = false")
	}
	if view.Confirmed {
		t.Fatalf("test view reports confirmed")
	}

	if err := env.db.First(&td, td.TestID).Error; err != nil {
		t.Fatalf("reload test row: %v", err)
	}
	if td.LastViewedAt == "" {
		t.Fatalf("last_viewed_at not touched by view")
	}
}
