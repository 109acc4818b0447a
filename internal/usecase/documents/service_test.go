package documents

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "safetyhub/internal/infrastructure/persistence/sqlite/repository"
	"safetyhub/internal/infrastructure/storage"
	"safetyhub/internal/ports"
)

var (
	adminActor    = auth.Context{UserID: 1, Role: auth.RoleAdmin}
	employeeActor = auth.Context{UserID: 9, Role: auth.RoleEmployee}
)

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "documents.sqlite")
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
		&model.Document{},
		&model.DocumentRevision{},
		&model.DocumentTag{},
		&model.DocumentFavorite{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	files, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new local store: %v", err)
	}
	return NewService(sqliterepo.NewDocumentRepository(db), files)
}

func createDocument(t *testing.T, svc *Service, title string, tags []string) ports.Document {
	t.Helper()
	doc, err := svc.CreateDocument(context.Background(), adminActor, CreateDocumentInput{
		Title:    title,
		FileName: "handbook.pdf",
		File:     strings.NewReader("pdf-bytes"),
		Note:     "initial upload",
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("create document %q: %v", title, err)
	}
	return doc
}

func TestCreateDocumentWithFirstRevision(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc := createDocument(t, svc, "Site Handbook", []string{"policy", "onboarding"})
	if doc.Revision != 1 {
		t.Fatalf("revision = %d", doc.Revision)
	}
	if len(doc.Tags) != 2 {
		t.Fatalf("tags = %v", doc.Tags)
	}
	if doc.FileName == "" || doc.FileName == "handbook.pdf" {
		t.Fatalf("stored file name = %q", doc.FileName)
	}

	revisions, err := svc.ListRevisions(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("ListRevisions() error = %v", err)
	}
	if len(revisions) != 1 || revisions[0].Revision != 1 {
		t.Fatalf("revisions = %+v", revisions)
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.CreateDocument(ctx, adminActor, CreateDocumentInput{Title: " ", File: strings.NewReader("x")}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("CreateDocument(blank title) error = %v", err)
	}
	if _, err := svc.CreateDocument(ctx, adminActor, CreateDocumentInput{Title: "t"}); !errors.Is(err, ErrFileRequired) {
		t.Fatalf("CreateDocument(no file) error = %v", err)
	}
	if _, err := svc.CreateDocument(ctx, employeeActor, CreateDocumentInput{Title: "t", File: strings.NewReader("x")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("CreateDocument(employee) error = %v", err)
	}
}

func TestAddRevisionBumpsCounter(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc := createDocument(t, svc, "Site Handbook", nil)

	rev, err := svc.AddRevision(ctx, adminActor, AddRevisionInput{
		DocumentID: doc.DocumentID,
		FileName:   "handbook-v2.pdf",
		File:       strings.NewReader("pdf-bytes-v2"),
		Note:       "updated after audit",
	})
	if err != nil {
		t.Fatalf("AddRevision() error = %v", err)
	}
	if rev.Revision != 2 {
		t.Fatalf("new revision = %d", rev.Revision)
	}

	got, err := svc.GetDocument(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.Revision != 2 {
		t.Fatalf("document revision = %d", got.Revision)
	}
	if got.FileName != rev.FileName {
		t.Fatalf("document serves %q, latest revision is %q", got.FileName, rev.FileName)
	}
}

func TestListDocumentsPinnedFirstAndFilters(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	alpha := createDocument(t, svc, "Alpha", []string{"policy"})
	zulu := createDocument(t, svc, "Zulu", nil)
	archived := createDocument(t, svc, "Old Policy", []string{"policy"})

	if err := svc.SetPinned(ctx, adminActor, zulu.DocumentID, true); err != nil {
		t.Fatalf("SetPinned() error = %v", err)
	}
	if err := svc.SetArchived(ctx, adminActor, archived.DocumentID, true); err != nil {
		t.Fatalf("SetArchived() error = %v", err)
	}

	items, err := svc.ListDocuments(ctx, ports.DocumentFilter{})
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("listing len = %d", len(items))
	}
	if items[0].DocumentID != zulu.DocumentID {
		t.Fatalf("pinned document not first: %+v", items)
	}

	tagged, err := svc.ListDocuments(ctx, ports.DocumentFilter{Tag: "policy"})
	if err != nil {
		t.Fatalf("ListDocuments(tag) error = %v", err)
	}
	if len(tagged) != 1 || tagged[0].DocumentID != alpha.DocumentID {
		t.Fatalf("tag filter = %+v", tagged)
	}

	all, err := svc.ListDocuments(ctx, ports.DocumentFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("ListDocuments(archived) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("archived listing len = %d", len(all))
	}
}

func TestFavorites(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc := createDocument(t, svc, "Site Handbook", nil)
	createDocument(t, svc, "Other", nil)

	// Any role may favorite.
	if err := svc.SetFavorite(ctx, employeeActor, doc.DocumentID, true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}

	favs, err := svc.ListDocuments(ctx, ports.DocumentFilter{FavoritesOf: employeeActor.UserID})
	if err != nil {
		t.Fatalf("ListDocuments(favorites) error = %v", err)
	}
	if len(favs) != 1 || favs[0].DocumentID != doc.DocumentID {
		t.Fatalf("favorites = %+v", favs)
	}

	if err := svc.SetFavorite(ctx, employeeActor, doc.DocumentID, false); err != nil {
		t.Fatalf("SetFavorite(off) error = %v", err)
	}
	favs, err = svc.ListDocuments(ctx, ports.DocumentFilter{FavoritesOf: employeeActor.UserID})
	if err != nil {
		t.Fatalf("ListDocuments(favorites) error = %v", err)
	}
	if len(favs) != 0 {
		t.Fatalf("favorites after unfavorite = %+v", favs)
	}
}

func TestTags(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	doc := createDocument(t, svc, "Site Handbook", nil)

	if err := svc.AddTag(ctx, adminActor, doc.DocumentID, "policy"); err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	// Re-adding the same tag is a no-op, not an error.
	if err := svc.AddTag(ctx, adminActor, doc.DocumentID, "policy"); err != nil {
		t.Fatalf("AddTag(duplicate) error = %v", err)
	}

	got, err := svc.GetDocument(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "policy" {
		t.Fatalf("tags = %v", got.Tags)
	}

	if err := svc.RemoveTag(ctx, adminActor, doc.DocumentID, "policy"); err != nil {
		t.Fatalf("RemoveTag() error = %v", err)
	}
	got, err = svc.GetDocument(ctx, doc.DocumentID)
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if len(got.Tags) != 0 {
		t.Fatalf("tags after remove = %v", got.Tags)
	}
}
