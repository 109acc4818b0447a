package ports

import (
	"context"
	"errors"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is a library entry; the stored file of the latest revision is
// what the viewer serves.
type Document struct {
	DocumentID uint64
	Title      string
	Pinned     bool
	Archived   bool
	Revision   int
	FileName   string
	CreatedAt  string
	UpdatedAt  string
	Tags       []string
}

type DocumentRevision struct {
	RevisionID uint64
	DocumentID uint64
	Revision   int
	FileName   string
	Note       string
	CreatedAt  string
}

type DocumentFilter struct {
	Tag             string
	FavoritesOf     uint64 // user id; zero means no favorite filter
	IncludeArchived bool
}

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc Document, firstRevision DocumentRevision) (Document, error)
	GetDocument(ctx context.Context, documentID uint64) (Document, error)
	// ListDocuments returns pinned documents first, then by title.
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error)
	AddRevision(ctx context.Context, rev DocumentRevision) (DocumentRevision, error)
	ListRevisions(ctx context.Context, documentID uint64) ([]DocumentRevision, error)
	SetPinned(ctx context.Context, documentID uint64, pinned bool) error
	SetArchived(ctx context.Context, documentID uint64, archived bool) error
	AddTag(ctx context.Context, documentID uint64, tag string) error
	RemoveTag(ctx context.Context, documentID uint64, tag string) error
	SetFavorite(ctx context.Context, documentID uint64, userID uint64, favorite bool) error
}
