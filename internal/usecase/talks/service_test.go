package talks

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/domain/talk"
	"safetyhub/internal/infrastructure/notify"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "safetyhub/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "safetyhub/internal/infrastructure/persistence/sqlite/uow"
	"safetyhub/internal/infrastructure/storage"
	"safetyhub/internal/ports"
)

var (
	adminActor    = auth.Context{UserID: 1, Role: auth.RoleAdmin}
	superActor    = auth.Context{UserID: 1, Role: auth.RoleSuperAdmin}
	employeeActor = auth.Context{UserID: 9, Role: auth.RoleEmployee}
)

type sentEmail struct {
	To      string
	Subject string
}

type sentSMS struct {
	To   string
	Body string
}

type fakeNotifier struct {
	mu       sync.Mutex
	emails   []sentEmail
	smses    []sentSMS
	emailErr error
	smsErr   error
}

func (f *fakeNotifier) SendEmail(_ context.Context, to string, subject string, _ string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, sentEmail{To: to, Subject: subject})
	return nil
}

func (f *fakeNotifier) SendSMS(_ context.Context, to string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.smsErr != nil {
		return f.smsErr
	}
	f.smses = append(f.smses, sentSMS{To: to, Body: body})
	return nil
}

type testEnv struct {
	svc      *Service
	repo     *sqliterepo.TalkRepository
	db       *gorm.DB
	notifier *fakeNotifier
}

func setupService(t *testing.T) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "talks.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Talk{},
		&model.QuizQuestion{},
		&model.QuizAnswer{},
		&model.Distribution{},
		&model.Confirmation{},
		&model.TestDistribution{},
		&model.Recipient{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}

	repo := sqliterepo.NewTalkRepository(db)
	notifier := &fakeNotifier{}
	svc := NewService(
		repo,
		sqliteuow.NewUnitOfWork(db),
		sqliterepo.NewRecipientDirectory(db),
		notifier,
		files,
		Config{
			BaseURL:           "http://hub.local",
			QuizPassThreshold: 80,
			NotifyTimeout:     time.Second,
			SMSMaxLength:      160,
			MaxUploadBytes:    1 << 20,
			Templates:         notify.DefaultTemplates(),
		},
	)
	return &testEnv{svc: svc, repo: repo, db: db, notifier: notifier}
}

func seedRecipient(t *testing.T, env *testEnv, name string, email string, phone string) uint64 {
	t.Helper()
	row := model.Recipient{Name: name, Email: email, Phone: phone, GroupName: "crew"}
	if err := env.db.Create(&row).Error; err != nil {
		t.Fatalf("seed recipient %q: %v", name, err)
	}
	return row.RecipientID
}

func createDraftTalk(t *testing.T, env *testEnv, title string, quiz []talk.QuizQuestionInput) uint64 {
	t.Helper()
	talkID, err := env.svc.CreateTalk(context.Background(), adminActor, CreateTalkInput{
		Title: title,
		Body:  "Always maintain three points of contact.",
		Quiz:  quiz,
	})
	if err != nil {
		t.Fatalf("create talk %q: %v", title, err)
	}
	return talkID
}

func sampleQuiz() []talk.QuizQuestionInput {
	return []talk.QuizQuestionInput{
		{
			Text: "What is the maximum ladder angle?",
			Answers: []talk.QuizAnswerInput{
				{Text: "75 degrees", Correct: true},
				{Text: "90 degrees"},
			},
		},
		{
			Text: "Who inspects the ladder before use?",
			Answers: []talk.QuizAnswerInput{
				{Text: "The user", Correct: true},
				{Text: "Nobody"},
			},
		},
	}
}

func countRows(t *testing.T, env *testEnv, m any) int64 {
	t.Helper()
	var n int64
	if err := env.db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestCreateTalkValidation(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	if _, err := env.svc.CreateTalk(ctx, adminActor, CreateTalkInput{Title: "  ", Body: "b"}); !errors.Is(err, talk.ErrTitleRequired) {
		t.Fatalf("CreateTalk(blank title) error = %v", err)
	}
	if _, err := env.svc.CreateTalk(ctx, adminActor, CreateTalkInput{Title: "t", Body: ""}); !errors.Is(err, talk.ErrBodyRequired) {
		t.Fatalf("CreateTalk(blank body) error = %v", err)
	}
	if _, err := env.svc.CreateTalk(ctx, employeeActor, CreateTalkInput{Title: "t", Body: "b"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("CreateTalk(employee) error = %v", err)
	}
	if n := countRows(t, env, &model.Talk{}); n != 0 {
		t.Fatalf("talk rows after rejected creates = %d", n)
	}
}

func TestCreateTalkWithQuizPersistsQuestions(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", sampleQuiz())

	got, err := env.repo.GetTalk(ctx, talkID)
	if err != nil {
		t.Fatalf("GetTalk() error = %v", err)
	}
	if got.Status != string(talk.StatusDraft) {
		t.Fatalf("new talk status = %q", got.Status)
	}
	if !got.HasQuiz {
		t.Fatalf("new talk has_quiz = false")
	}

	questions, err := env.repo.ListQuizQuestions(ctx, talkID)
	if err != nil {
		t.Fatalf("ListQuizQuestions() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("quiz questions = %d", len(questions))
	}
	if len(questions[0].Answers) != 2 {
		t.Fatalf("question answers = %d", len(questions[0].Answers))
	}
}

func TestUpdateTalkReplacesQuizWholesale(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", sampleQuiz())

	replacement := []talk.QuizQuestionInput{{
		Text: "Replacement question?",
		Answers: []talk.QuizAnswerInput{
			{Text: "yes", Correct: true},
			{Text: "no"},
		},
	}}
	err := env.svc.UpdateTalk(ctx, adminActor, talkID, UpdateTalkInput{
		Title: "Ladder Safety v2",
		Body:  "Updated body.",
		Quiz:  &replacement,
	})
	if err != nil {
		t.Fatalf("UpdateTalk() error = %v", err)
	}

	questions, err := env.repo.ListQuizQuestions(ctx, talkID)
	if err != nil {
		t.Fatalf("ListQuizQuestions() error = %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "Replacement question?" {
		t.Fatalf("quiz after replace = %+v", questions)
	}
	if n := countRows(t, env, &model.QuizAnswer{}); n != 2 {
		t.Fatalf("answer rows after replace = %d", n)
	}
}

func TestUpdateTalkKeepsQuizWhenNil(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", sampleQuiz())

	err := env.svc.UpdateTalk(ctx, adminActor, talkID, UpdateTalkInput{
		Title: "Ladder Safety v2",
		Body:  "Updated body.",
	})
	if err != nil {
		t.Fatalf("UpdateTalk() error = %v", err)
	}

	questions, err := env.repo.ListQuizQuestions(ctx, talkID)
	if err != nil {
		t.Fatalf("ListQuizQuestions() error = %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("quiz after nil update = %d questions", len(questions))
	}
}

func TestUpdateTalkRejectsDistributed(t *testing.T) {
	env := setupService(t)
	ctx := context.Background()

	talkID := createDraftTalk(t, env, "Ladder Safety", nil)
	recipientID := seedRecipient(t, env, "Ana Gomez", "ana@example.com", "")

	if _, err := env.svc.Distribute(ctx, adminActor, talkID, []uint64{recipientID}); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	err := env.svc.UpdateTalk(ctx, adminActor, talkID, UpdateTalkInput{Title: "x", Body: "y"})
	if !errors.Is(err, talk.ErrTalkNotDraft) {
		t.Fatalf("UpdateTalk(distributed) error = %v", err)
	}
}

// confirmDistribution signs one distribution directly through the service.
func confirmDistribution(t *testing.T, env *testEnv, token string, score *int) ports.Confirmation {
	t.Helper()
	created, err := env.svc.Confirm(context.Background(), ConfirmInput{
		Token:         token,
		Understood:    true,
		SignatureMode: talk.SignatureTyped,
		TypedName:     "Ana Gomez",
		QuizScore:     score,
		SubmitterIP:   "10.0.0.5",
	})
	if err != nil {
		t.Fatalf("confirm token %q: %v", token, err)
	}
	return created
}

func distributionTokenFor(t *testing.T, env *testEnv, talkID uint64, recipientID uint64) string {
	t.Helper()
	d, err := env.repo.GetDistribution(context.Background(), talkID, recipientID)
	if err != nil {
		t.Fatalf("get distribution: %v", err)
	}
	return d.Token
}

func intPtr(v int) *int { return &v }
