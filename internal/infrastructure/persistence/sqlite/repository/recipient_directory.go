package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"safetyhub/internal/errs"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	"safetyhub/internal/ports"
)

// RecipientDirectory backs the read-only directory port with the local
// recipients table. Seeding goes through SeedRecipients, which sits
// outside the port on purpose: the workflow itself never writes here.
type RecipientDirectory struct {
	db *gorm.DB
}

func NewRecipientDirectory(db *gorm.DB) *RecipientDirectory {
	return &RecipientDirectory{db: db}
}

func (d *RecipientDirectory) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return d.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (d *RecipientDirectory) GetRecipient(ctx context.Context, recipientID uint64) (ports.Recipient, error) {
	db, err := d.dbFromContext(ctx)
	if err != nil {
		return ports.Recipient{}, err
	}

	var row model.Recipient
	if err := db.First(&row, "recipient_id = ?", recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Recipient{}, ports.ErrRecipientNotFound
		}
		return ports.Recipient{}, errs.Wrap(err, "query recipient")
	}
	return mapRecipient(row), nil
}

func (d *RecipientDirectory) ListRecipients(ctx context.Context, group string) ([]ports.Recipient, error) {
	db, err := d.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Recipient{})
	if trimmed := strings.TrimSpace(group); trimmed != "" {
		query = query.Where("group_name = ?", trimmed)
	}

	var rows []model.Recipient
	if err := query.Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recipients")
	}

	items := make([]ports.Recipient, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRecipient(row))
	}
	return items, nil
}

// SeedRecipients inserts directory entries, used by the seed command and
// by tests.
func (d *RecipientDirectory) SeedRecipients(ctx context.Context, recipients []ports.Recipient) error {
	db, err := d.dbFromContext(ctx)
	if err != nil {
		return err
	}

	for _, recipient := range recipients {
		row := model.Recipient{
			RecipientID: recipient.RecipientID,
			Name:        recipient.Name,
			Email:       recipient.Email,
			Phone:       recipient.Phone,
			GroupName:   recipient.Group,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrapf(err, "insert recipient %q", recipient.Name)
		}
	}
	return nil
}

func mapRecipient(row model.Recipient) ports.Recipient {
	return ports.Recipient{
		RecipientID: row.RecipientID,
		Name:        row.Name,
		Email:       row.Email,
		Phone:       row.Phone,
		Group:       row.GroupName,
	}
}
