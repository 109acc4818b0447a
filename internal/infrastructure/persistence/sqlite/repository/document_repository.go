package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"safetyhub/internal/errs"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	"safetyhub/internal/ports"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc ports.Document, firstRevision ports.DocumentRevision) (ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Document{}, err
	}

	row := model.Document{
		Title:     doc.Title,
		Pinned:    doc.Pinned,
		Archived:  doc.Archived,
		Revision:  1,
		FileName:  doc.FileName,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Document{}, errs.Wrap(err, "insert document")
	}

	revisionRow := model.DocumentRevision{
		DocumentID: row.DocumentID,
		Revision:   1,
		FileName:   firstRevision.FileName,
		Note:       firstRevision.Note,
		CreatedAt:  firstRevision.CreatedAt,
	}
	if err := db.Create(&revisionRow).Error; err != nil {
		return ports.Document{}, errs.Wrap(err, "insert first revision")
	}

	created := mapDocument(row)
	created.Tags = nil
	return created, nil
}

func (r *DocumentRepository) GetDocument(ctx context.Context, documentID uint64) (ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Document{}, err
	}

	var row model.Document
	if err := db.First(&row, "document_id = ?", documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Document{}, ports.ErrDocumentNotFound
		}
		return ports.Document{}, errs.Wrap(err, "query document")
	}

	doc := mapDocument(row)
	tags, err := r.listTags(db, row.DocumentID)
	if err != nil {
		return ports.Document{}, err
	}
	doc.Tags = tags
	return doc, nil
}

func (r *DocumentRepository) ListDocuments(ctx context.Context, filter ports.DocumentFilter) ([]ports.Document, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Document{})
	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		sub := db.Model(&model.DocumentTag{}).Select("document_id").Where("tag = ?", tag)
		query = query.Where("document_id IN (?)", sub)
	}
	if filter.FavoritesOf != 0 {
		sub := db.Model(&model.DocumentFavorite{}).Select("document_id").Where("user_id = ?", filter.FavoritesOf)
		query = query.Where("document_id IN (?)", sub)
	}

	var rows []model.Document
	if err := query.Order("pinned desc, title asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query documents")
	}

	items := make([]ports.Document, 0, len(rows))
	for _, row := range rows {
		doc := mapDocument(row)
		tags, err := r.listTags(db, row.DocumentID)
		if err != nil {
			return nil, err
		}
		doc.Tags = tags
		items = append(items, doc)
	}
	return items, nil
}

func (r *DocumentRepository) AddRevision(ctx context.Context, rev ports.DocumentRevision) (ports.DocumentRevision, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.DocumentRevision{}, err
	}

	var out ports.DocumentRevision
	if err := db.Transaction(func(tx *gorm.DB) error {
		var doc model.Document
		if err := tx.First(&doc, "document_id = ?", rev.DocumentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrDocumentNotFound
			}
			return errs.Wrap(err, "query document")
		}

		next := doc.Revision + 1
		row := model.DocumentRevision{
			DocumentID: rev.DocumentID,
			Revision:   next,
			FileName:   rev.FileName,
			Note:       rev.Note,
			CreatedAt:  rev.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert revision")
		}

		if err := tx.Model(&model.Document{}).
			Where("document_id = ?", rev.DocumentID).
			Updates(map[string]any{
				"revision":   next,
				"file_name":  rev.FileName,
				"updated_at": rev.CreatedAt,
			}).Error; err != nil {
			return errs.Wrap(err, "bump document revision")
		}

		out = ports.DocumentRevision{
			RevisionID: row.RevisionID,
			DocumentID: row.DocumentID,
			Revision:   row.Revision,
			FileName:   row.FileName,
			Note:       row.Note,
			CreatedAt:  row.CreatedAt,
		}
		return nil
	}); err != nil {
		return ports.DocumentRevision{}, err
	}
	return out, nil
}

func (r *DocumentRepository) ListRevisions(ctx context.Context, documentID uint64) ([]ports.DocumentRevision, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.DocumentRevision
	if err := db.Where("document_id = ?", documentID).Order("revision desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query revisions")
	}

	items := make([]ports.DocumentRevision, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.DocumentRevision{
			RevisionID: row.RevisionID,
			DocumentID: row.DocumentID,
			Revision:   row.Revision,
			FileName:   row.FileName,
			Note:       row.Note,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

func (r *DocumentRepository) SetPinned(ctx context.Context, documentID uint64, pinned bool) error {
	return r.setFlag(ctx, documentID, "pinned", pinned)
}

func (r *DocumentRepository) SetArchived(ctx context.Context, documentID uint64, archived bool) error {
	return r.setFlag(ctx, documentID, "archived", archived)
}

func (r *DocumentRepository) setFlag(ctx context.Context, documentID uint64, column string, value bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Document{}).Where("document_id = ?", documentID).Update(column, value)
	if result.Error != nil {
		return errs.Wrapf(result.Error, "update document %s", column)
	}
	if result.RowsAffected == 0 {
		return ports.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) AddTag(ctx context.Context, documentID uint64, tag string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.DocumentTag{DocumentID: documentID, Tag: strings.TrimSpace(tag)}
	if row.Tag == "" {
		return errors.New("tag is required")
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert document tag")
	}
	return nil
}

func (r *DocumentRepository) RemoveTag(ctx context.Context, documentID uint64, tag string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("document_id = ? AND tag = ?", documentID, strings.TrimSpace(tag)).
		Delete(&model.DocumentTag{}).Error; err != nil {
		return errs.Wrap(err, "delete document tag")
	}
	return nil
}

func (r *DocumentRepository) SetFavorite(ctx context.Context, documentID uint64, userID uint64, favorite bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if favorite {
		row := model.DocumentFavorite{DocumentID: documentID, UserID: userID}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert favorite")
		}
		return nil
	}

	if err := db.Where("document_id = ? AND user_id = ?", documentID, userID).
		Delete(&model.DocumentFavorite{}).Error; err != nil {
		return errs.Wrap(err, "delete favorite")
	}
	return nil
}

func (r *DocumentRepository) listTags(db *gorm.DB, documentID uint64) ([]string, error) {
	var tags []string
	if err := db.Model(&model.DocumentTag{}).
		Where("document_id = ?", documentID).
		Order("tag asc").
		Pluck("tag", &tags).Error; err != nil {
		return nil, errs.Wrap(err, "query document tags")
	}
	return tags, nil
}

func mapDocument(row model.Document) ports.Document {
	return ports.Document{
		DocumentID: row.DocumentID,
		Title:      row.Title,
		Pinned:     row.Pinned,
		Archived:   row.Archived,
		Revision:   row.Revision,
		FileName:   row.FileName,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}
