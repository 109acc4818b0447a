package documents

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/errs"
	"safetyhub/internal/ports"
)

var (
	ErrForbidden     = errors.New("operation not allowed for this role")
	ErrTitleRequired = errors.New("document title is required")
	ErrFileRequired  = errors.New("document file is required")
)

// Service manages the document library: uploads, revisions, tags,
// favorites, and pins.
type Service struct {
	repo  ports.DocumentRepository
	files ports.FileStore
}

func NewService(repo ports.DocumentRepository, files ports.FileStore) *Service {
	return &Service{repo: repo, files: files}
}

type CreateDocumentInput struct {
	Title    string
	FileName string
	File     io.Reader
	Note     string
	Tags     []string
}

func (s *Service) CreateDocument(ctx context.Context, actor auth.Context, input CreateDocumentInput) (ports.Document, error) {
	if ctx == nil {
		return ports.Document{}, errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ports.Document{}, ErrForbidden
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ports.Document{}, ErrTitleRequired
	}
	if input.File == nil {
		return ports.Document{}, ErrFileRequired
	}

	stored, err := s.files.Save(ctx, input.FileName, input.File)
	if err != nil {
		return ports.Document{}, errs.Wrap(err, "store document upload")
	}

	now := nowUTCString()
	created, err := s.repo.CreateDocument(ctx,
		ports.Document{
			Title:     title,
			FileName:  stored.Name,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ports.DocumentRevision{
			FileName:  stored.Name,
			Note:      strings.TrimSpace(input.Note),
			CreatedAt: now,
		},
	)
	if err != nil {
		return ports.Document{}, errs.Wrap(err, "persist document")
	}

	for _, tag := range input.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if err := s.repo.AddTag(ctx, created.DocumentID, tag); err != nil {
			return ports.Document{}, errs.Wrap(err, "tag document")
		}
	}
	return s.repo.GetDocument(ctx, created.DocumentID)
}

type AddRevisionInput struct {
	DocumentID uint64
	FileName   string
	File       io.Reader
	Note       string
}

func (s *Service) AddRevision(ctx context.Context, actor auth.Context, input AddRevisionInput) (ports.DocumentRevision, error) {
	if ctx == nil {
		return ports.DocumentRevision{}, errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ports.DocumentRevision{}, ErrForbidden
	}
	if input.File == nil {
		return ports.DocumentRevision{}, ErrFileRequired
	}

	stored, err := s.files.Save(ctx, input.FileName, input.File)
	if err != nil {
		return ports.DocumentRevision{}, errs.Wrap(err, "store revision upload")
	}

	return s.repo.AddRevision(ctx, ports.DocumentRevision{
		DocumentID: input.DocumentID,
		FileName:   stored.Name,
		Note:       strings.TrimSpace(input.Note),
		CreatedAt:  nowUTCString(),
	})
}

func (s *Service) GetDocument(ctx context.Context, documentID uint64) (ports.Document, error) {
	if ctx == nil {
		return ports.Document{}, errors.New("context is required")
	}
	return s.repo.GetDocument(ctx, documentID)
}

func (s *Service) ListDocuments(ctx context.Context, filter ports.DocumentFilter) ([]ports.Document, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.repo.ListDocuments(ctx, filter)
}

func (s *Service) ListRevisions(ctx context.Context, documentID uint64) ([]ports.DocumentRevision, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	return s.repo.ListRevisions(ctx, documentID)
}

func (s *Service) SetPinned(ctx context.Context, actor auth.Context, documentID uint64, pinned bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ErrForbidden
	}
	return s.repo.SetPinned(ctx, documentID, pinned)
}

func (s *Service) SetArchived(ctx context.Context, actor auth.Context, documentID uint64, archived bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ErrForbidden
	}
	return s.repo.SetArchived(ctx, documentID, archived)
}

func (s *Service) AddTag(ctx context.Context, actor auth.Context, documentID uint64, tag string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ErrForbidden
	}
	return s.repo.AddTag(ctx, documentID, tag)
}

func (s *Service) RemoveTag(ctx context.Context, actor auth.Context, documentID uint64, tag string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if !auth.CanAdminister(actor.Role) {
		return ErrForbidden
	}
	return s.repo.RemoveTag(ctx, documentID, tag)
}

// SetFavorite toggles the acting user's own favorite flag; any role may
// favorite documents.
func (s *Service) SetFavorite(ctx context.Context, actor auth.Context, documentID uint64, favorite bool) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	return s.repo.SetFavorite(ctx, documentID, actor.UserID, favorite)
}

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
