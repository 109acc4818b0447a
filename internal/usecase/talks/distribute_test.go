package talks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"safetyhub/internal/domain/talk"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	"safetyhub/internal/ports"
)

func TestDistributeFansOutAndFlipsStatus(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "+15550100")
	ben := seedRecipient(t, env, "Ben Okafor", "ben@example.com", "")

	result, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana, ben})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.SuccessCount != 2 {
		t.Fatalf("SuccessCount = %d", result.SuccessCount)
	}
	if len(result.Skipped) != 0 || len(result.Errors) != 0 {
		t.Fatalf("Skipped = %v, Errors = %v", result.Skipped, result.Errors)
	}

	got, err := env.repo.GetTalk(ctx, talkID)
	if err != nil {
		t.Fatalf("GetTalk() error = %v", err)
	}
	if got.Status != string(talk.StatusDistributed) {
		t.Fatalf("status = %q", got.Status)
	}
	if got.FirstDistributedAt == "" {
		t.Fatalf("first_distributed_at not set")
	}

	if n := countRows(t, env, &model.Distribution{}); n != 2 {
		t.Fatalf("distribution rows = %d", n)
	}
	if len(env.notifier.emails) != 2 {
		t.Fatalf("emails sent = %d", len(env.notifier.emails))
	}
	// Only Ana has a phone on file.
	if len(env.notifier.smses) != 1 {
		t.Fatalf("smses sent = %d", len(env.notifier.smses))
	}
}

func TestDistributeRejectsNonDraft(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")
	ben := seedRecipient(t, env, "Ben Okafor", "ben@example.com", "")

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana}); err != nil {
		t.Fatalf("first Distribute() error = %v", err)
	}

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ben}); !errors.Is(err, talk.ErrTalkNotDraft) {
		t.Fatalf("second Distribute() error = %v", err)
	}
	if n := countRows(t, env, &model.Distribution{}); n != 1 {
		t.Fatalf("distribution rows after rejected redistribute = %d", n)
	}
}

func TestDistributeSkipsExistingPairs(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")
	ben := seedRecipient(t, env, "Ben Okafor", "ben@example.com", "")

	// A delivery already on record while the talk is still draft, as a
	// concurrent fan-out would leave behind.
	if _, err := env.repo.CreateDistribution(ctx, ports.Distribution{
		TalkID:      talkID,
		RecipientID: ana,
		Token:       "preexisting-token",
		SentAt:      nowUTCString(),
	}); err != nil {
		t.Fatalf("seed distribution: %v", err)
	}

	result, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana, ben})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("SuccessCount = %d", result.SuccessCount)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "Ana Gomez" {
		t.Fatalf("Skipped = %v", result.Skipped)
	}
	if n := countRows(t, env, &model.Distribution{}); n != 2 {
		t.Fatalf("distribution rows = %d", n)
	}
}

func TestDistributeKeepsRowOnDeliveryFailure(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")
	env.notifier.emailErr = errors.New("smtp unreachable")

	result, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana})
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("SuccessCount = %d", result.SuccessCount)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Ana Gomez") {
		t.Fatalf("Errors = %v", result.Errors)
	}

	// Delivery failure never rolls back the distribution row.
	if n := countRows(t, env, &model.Distribution{}); n != 1 {
		t.Fatalf("distribution rows = %d", n)
	}
	got, err := env.repo.GetTalk(ctx, talkID)
	if err != nil {
		t.Fatalf("GetTalk() error = %v", err)
	}
	if got.Status != string(talk.StatusDistributed) {
		t.Fatalf("status = %q", got.Status)
	}
}

func TestDistributeFirstDistributedAtNeverOverwritten(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana}); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	first, err := env.repo.GetTalk(ctx, talkID)
	if err != nil {
		t.Fatalf("GetTalk() error = %v", err)
	}

	// A second conditional flip must not touch the stored timestamp.
	flipped, err := env.repo.MarkTalkDistributed(ctx, talkID, nowUTCString())
	if err != nil {
		t.Fatalf("MarkTalkDistributed() error = %v", err)
	}
	if flipped {
		t.Fatalf("MarkTalkDistributed() flipped a non-draft talk")
	}
	after, err := env.repo.GetTalk(ctx, talkID)
	if err != nil {
		t.Fatalf("GetTalk() error = %v", err)
	}
	if after.FirstDistributedAt != first.FirstDistributedAt {
		t.Fatalf("first_distributed_at changed: %q -> %q", first.FirstDistributedAt, after.FirstDistributedAt)
	}
}

func TestDistributePurgesTestRows(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	ana := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")

	if _, err := env.svc.SendTest(ctx, adminActor, SendTestInput{TalkID: talkID, Email: "preview@example.com"}); err != nil {
		t.Fatalf("SendTest() error = %v", err)
	}
	if n := countRows(t, env, &model.TestDistribution{}); n != 1 {
		t.Fatalf("test rows before distribute = %d", n)
	}

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{ana}); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if n := countRows(t, env, &model.TestDistribution{}); n != 0 {
		t.Fatalf("test rows after distribute = %d", n)
	}
}

func TestDistributeRequiresRecipientsAndAdmin(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, nil); !errors.Is(err, talk.ErrNoRecipients) {
		t.Fatalf("Distribute(no recipients) error = %v", err)
	}
	if _, err := env.svc.Distribute(ctx, employeeActor, talkID, []uint64{1}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("Distribute(employee) error = %v", err)
	}
}
