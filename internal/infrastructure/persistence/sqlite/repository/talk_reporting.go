package repository

import (
	"context"

	"safetyhub/internal/errs"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	"safetyhub/internal/ports"
)

// PendingSignatures returns, for every talk first distributed at or after
// sentAfter, the distributed/signed counts and the names of recipients
// who have a distribution but no confirmation. Talks with zero
// distributions never appear. RFC3339 strings compare lexicographically,
// so the cutoff is a plain string comparison.
func (r *TalkRepository) PendingSignatures(ctx context.Context, sentAfter string) ([]ports.PendingTalkReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var talks []model.Talk
	query := db.Model(&model.Talk{}).
		Where("status = ?", "distributed").
		Where("first_distributed_at <> ''").
		Order("first_distributed_at desc")
	if sentAfter != "" {
		query = query.Where("first_distributed_at >= ?", sentAfter)
	}
	if err := query.Find(&talks).Error; err != nil {
		return nil, errs.Wrap(err, "query distributed talks")
	}

	reports := make([]ports.PendingTalkReport, 0, len(talks))
	for _, t := range talks {
		var distributed int64
		if err := db.Model(&model.Distribution{}).
			Where("talk_id = ?", t.TalkID).
			Count(&distributed).Error; err != nil {
			return nil, errs.Wrap(err, "count distributions")
		}
		if distributed == 0 {
			continue
		}

		var signed int64
		if err := db.Model(&model.Confirmation{}).
			Joins("JOIN distributions ON distributions.distribution_id = confirmations.distribution_id").
			Where("distributions.talk_id = ?", t.TalkID).
			Count(&signed).Error; err != nil {
			return nil, errs.Wrap(err, "count confirmations")
		}

		var pendingNames []string
		if err := db.Model(&model.Distribution{}).
			Select("recipients.name").
			Joins("JOIN recipients ON recipients.recipient_id = distributions.recipient_id").
			Joins("LEFT JOIN confirmations ON confirmations.distribution_id = distributions.distribution_id").
			Where("distributions.talk_id = ?", t.TalkID).
			Where("confirmations.confirmation_id IS NULL").
			Order("recipients.name asc").
			Pluck("recipients.name", &pendingNames).Error; err != nil {
			return nil, errs.Wrap(err, "query pending recipient names")
		}

		reports = append(reports, ports.PendingTalkReport{
			TalkID:           t.TalkID,
			Title:            t.Title,
			FirstDistributed: t.FirstDistributedAt,
			TotalDistributed: int(distributed),
			TotalSigned:      int(signed),
			PendingNames:     pendingNames,
		})
	}
	return reports, nil
}

// TalkHistory aggregates per-talk distribution and confirmation counts.
func (r *TalkRepository) TalkHistory(ctx context.Context) ([]ports.TalkHistoryRow, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var talks []model.Talk
	if err := db.Model(&model.Talk{}).Order("talk_id desc").Find(&talks).Error; err != nil {
		return nil, errs.Wrap(err, "query talks")
	}

	rows := make([]ports.TalkHistoryRow, 0, len(talks))
	for _, t := range talks {
		var distributed int64
		if err := db.Model(&model.Distribution{}).
			Where("talk_id = ?", t.TalkID).
			Count(&distributed).Error; err != nil {
			return nil, errs.Wrap(err, "count distributions")
		}

		var confirmed int64
		if err := db.Model(&model.Confirmation{}).
			Joins("JOIN distributions ON distributions.distribution_id = confirmations.distribution_id").
			Where("distributions.talk_id = ?", t.TalkID).
			Count(&confirmed).Error; err != nil {
			return nil, errs.Wrap(err, "count confirmations")
		}

		var lastSentAt string
		if distributed > 0 {
			if err := db.Model(&model.Distribution{}).
				Where("talk_id = ?", t.TalkID).
				Select("COALESCE(MAX(CASE WHEN last_sent_at <> '' THEN last_sent_at ELSE sent_at END), '')").
				Scan(&lastSentAt).Error; err != nil {
				return nil, errs.Wrap(err, "query last sent timestamp")
			}
		}

		rows = append(rows, ports.TalkHistoryRow{
			TalkID:             t.TalkID,
			Title:              t.Title,
			CreatedAt:          t.CreatedAt,
			FirstDistributedAt: t.FirstDistributedAt,
			LastSentAt:         lastSentAt,
			TotalDistributed:   int(distributed),
			TotalConfirmed:     int(confirmed),
		})
	}
	return rows, nil
}
