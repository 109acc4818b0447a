package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"safetyhub/internal/errs"
	"safetyhub/internal/infrastructure/persistence/sqlite/model"
	"safetyhub/internal/ports"
)

type TalkRepository struct {
	db *gorm.DB
}

func NewTalkRepository(db *gorm.DB) *TalkRepository {
	return &TalkRepository{db: db}
}

func (r *TalkRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *TalkRepository) GetTalk(ctx context.Context, talkID uint64) (ports.Talk, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Talk{}, err
	}

	var row model.Talk
	if err := db.First(&row, "talk_id = ?", talkID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Talk{}, ports.ErrTalkNotFound
		}
		return ports.Talk{}, errs.Wrap(err, "query talk")
	}
	return mapTalk(row), nil
}

func (r *TalkRepository) ListTalks(ctx context.Context, filter ports.TalkFilter) ([]ports.Talk, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Talk{})
	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var rows []model.Talk
	if err := query.Order("talk_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query talks")
	}

	items := make([]ports.Talk, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTalk(row))
	}
	return items, nil
}

func (r *TalkRepository) CreateTalk(ctx context.Context, talk ports.Talk, questions []ports.QuizQuestion) (ports.Talk, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Talk{}, err
	}

	row := talkRow(talk)
	if err := db.Create(&row).Error; err != nil {
		return ports.Talk{}, errs.Wrap(err, "insert talk")
	}

	if err := insertQuiz(db, row.TalkID, questions); err != nil {
		return ports.Talk{}, err
	}
	return mapTalk(row), nil
}

func (r *TalkRepository) UpdateTalk(ctx context.Context, talk ports.Talk, questions []ports.QuizQuestion, replaceQuiz bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := talkRow(talk)
	result := db.Model(&model.Talk{}).Where("talk_id = ?", talk.TalkID).Updates(map[string]any{
		"title":           row.Title,
		"body":            row.Body,
		"attachment_kind": row.AttachmentKind,
		"attachment_path": row.AttachmentPath,
		"attachment_ext":  row.AttachmentExt,
		"attachment_url":  row.AttachmentURL,
		"has_quiz":        row.HasQuiz,
	})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update talk")
	}
	if result.RowsAffected == 0 {
		return ports.ErrTalkNotFound
	}

	if !replaceQuiz {
		return nil
	}
	if err := deleteQuiz(db, talk.TalkID); err != nil {
		return err
	}
	return insertQuiz(db, talk.TalkID, questions)
}

func (r *TalkRepository) SetTalkArchived(ctx context.Context, talkID uint64, archived bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Talk{}).Where("talk_id = ?", talkID).Update("archived", archived)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update talk archived flag")
	}
	if result.RowsAffected == 0 {
		return ports.ErrTalkNotFound
	}
	return nil
}

func (r *TalkRepository) DeleteTalkCascade(ctx context.Context, talkID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var distributionIDs []uint64
		if err := tx.Model(&model.Distribution{}).
			Where("talk_id = ?", talkID).
			Pluck("distribution_id", &distributionIDs).Error; err != nil {
			return errs.Wrap(err, "query distribution ids")
		}

		if len(distributionIDs) > 0 {
			if err := tx.Where("distribution_id IN ?", distributionIDs).
				Delete(&model.Confirmation{}).Error; err != nil {
				return errs.Wrap(err, "delete confirmations")
			}
		}
		if err := tx.Where("talk_id = ?", talkID).Delete(&model.Distribution{}).Error; err != nil {
			return errs.Wrap(err, "delete distributions")
		}
		if err := tx.Where("talk_id = ?", talkID).Delete(&model.TestDistribution{}).Error; err != nil {
			return errs.Wrap(err, "delete test distributions")
		}
		if err := deleteQuiz(tx, talkID); err != nil {
			return err
		}

		result := tx.Where("talk_id = ?", talkID).Delete(&model.Talk{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete talk")
		}
		if result.RowsAffected == 0 {
			return ports.ErrTalkNotFound
		}
		return nil
	})
}

func (r *TalkRepository) ListQuizQuestions(ctx context.Context, talkID uint64) ([]ports.QuizQuestion, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var questionRows []model.QuizQuestion
	if err := db.Where("talk_id = ?", talkID).Order("position asc").Find(&questionRows).Error; err != nil {
		return nil, errs.Wrap(err, "query quiz questions")
	}
	if len(questionRows) == 0 {
		return nil, nil
	}

	questionIDs := make([]uint64, 0, len(questionRows))
	for _, q := range questionRows {
		questionIDs = append(questionIDs, q.QuestionID)
	}

	var answerRows []model.QuizAnswer
	if err := db.Where("question_id IN ?", questionIDs).Order("position asc").Find(&answerRows).Error; err != nil {
		return nil, errs.Wrap(err, "query quiz answers")
	}

	answersByQuestion := make(map[uint64][]ports.QuizAnswer, len(questionRows))
	for _, a := range answerRows {
		answersByQuestion[a.QuestionID] = append(answersByQuestion[a.QuestionID], ports.QuizAnswer{
			AnswerID:   a.AnswerID,
			QuestionID: a.QuestionID,
			Position:   a.Position,
			Text:       a.Text,
			Correct:    a.Correct,
		})
	}

	questions := make([]ports.QuizQuestion, 0, len(questionRows))
	for _, q := range questionRows {
		questions = append(questions, ports.QuizQuestion{
			QuestionID: q.QuestionID,
			TalkID:     q.TalkID,
			Position:   q.Position,
			Text:       q.Text,
			Answers:    answersByQuestion[q.QuestionID],
		})
	}
	return questions, nil
}

func (r *TalkRepository) HasDistribution(ctx context.Context, talkID uint64, recipientID uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Distribution{}).
		Where("talk_id = ? AND recipient_id = ?", talkID, recipientID).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count distributions")
	}
	return count > 0, nil
}

func (r *TalkRepository) CreateDistribution(ctx context.Context, d ports.Distribution) (ports.Distribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Distribution{}, err
	}

	row := model.Distribution{
		TalkID:         d.TalkID,
		RecipientID:    d.RecipientID,
		Token:          d.Token,
		SentAt:         d.SentAt,
		NotifyAttempts: d.NotifyAttempts,
		LastSentAt:     d.LastSentAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "talk_id"}, {Name: "recipient_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.Distribution{}, errs.Wrap(result.Error, "insert distribution")
	}
	if result.RowsAffected == 0 {
		return ports.Distribution{}, ports.ErrDuplicateDistribution
	}
	return mapDistribution(row), nil
}

func (r *TalkRepository) GetDistributionByToken(ctx context.Context, token string) (ports.Distribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Distribution{}, err
	}

	var row model.Distribution
	if err := db.First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Distribution{}, ports.ErrDistributionNotFound
		}
		return ports.Distribution{}, errs.Wrap(err, "query distribution by token")
	}
	return mapDistribution(row), nil
}

func (r *TalkRepository) GetDistribution(ctx context.Context, talkID uint64, recipientID uint64) (ports.Distribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Distribution{}, err
	}

	var row model.Distribution
	if err := db.First(&row, "talk_id = ? AND recipient_id = ?", talkID, recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Distribution{}, ports.ErrDistributionNotFound
		}
		return ports.Distribution{}, errs.Wrap(err, "query distribution")
	}
	return mapDistribution(row), nil
}

func (r *TalkRepository) ListDistributions(ctx context.Context, talkID uint64) ([]ports.Distribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Distribution
	if err := db.Where("talk_id = ?", talkID).Order("distribution_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query distributions")
	}

	items := make([]ports.Distribution, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapDistribution(row))
	}
	return items, nil
}

func (r *TalkRepository) RecordNotifyAttempt(ctx context.Context, distributionID uint64, sentAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Distribution{}).
		Where("distribution_id = ?", distributionID).
		Updates(map[string]any{
			"notify_attempts": gorm.Expr("notify_attempts + 1"),
			"last_sent_at":    sentAt,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "record notify attempt")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDistributionNotFound
	}
	return nil
}

// MarkTalkDistributed is the serialization point for concurrent
// distribute calls: the conditional WHERE makes exactly one caller win.
func (r *TalkRepository) MarkTalkDistributed(ctx context.Context, talkID uint64, at string) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	result := db.Model(&model.Talk{}).
		Where("talk_id = ? AND status = ?", talkID, "draft").
		Updates(map[string]any{
			"status": "distributed",
			"first_distributed_at": gorm.Expr(
				"CASE WHEN first_distributed_at = '' THEN ? ELSE first_distributed_at END", at,
			),
		})
	if result.Error != nil {
		return false, errs.Wrap(result.Error, "mark talk distributed")
	}
	return result.RowsAffected > 0, nil
}

func (r *TalkRepository) HasConfirmation(ctx context.Context, distributionID uint64) (bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return false, err
	}

	var count int64
	if err := db.Model(&model.Confirmation{}).
		Where("distribution_id = ?", distributionID).
		Count(&count).Error; err != nil {
		return false, errs.Wrap(err, "count confirmations")
	}
	return count > 0, nil
}

func (r *TalkRepository) CreateConfirmation(ctx context.Context, c ports.Confirmation) (ports.Confirmation, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Confirmation{}, err
	}

	row := model.Confirmation{
		DistributionID: c.DistributionID,
		SignatureData:  c.SignatureData,
		SubmitterIP:    c.SubmitterIP,
		Understood:     c.Understood,
		QuizScore:      c.QuizScore,
		SubmittedAt:    c.SubmittedAt,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "distribution_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.Confirmation{}, errs.Wrap(result.Error, "insert confirmation")
	}
	if result.RowsAffected == 0 {
		return ports.Confirmation{}, ports.ErrDuplicateConfirmation
	}

	c.ConfirmationID = row.ConfirmationID
	return c, nil
}

func (r *TalkRepository) CreateTestDistribution(ctx context.Context, td ports.TestDistribution) (ports.TestDistribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TestDistribution{}, err
	}

	row := model.TestDistribution{
		TalkID:       td.TalkID,
		Token:        td.Token,
		Email:        td.Email,
		Phone:        td.Phone,
		EmailSent:    td.EmailSent,
		SMSSent:      td.SMSSent,
		SentAt:       td.SentAt,
		LastViewedAt: td.LastViewedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.TestDistribution{}, errs.Wrap(err, "insert test distribution")
	}
	td.TestID = row.TestID
	return td, nil
}

func (r *TalkRepository) GetTestDistributionByToken(ctx context.Context, token string) (ports.TestDistribution, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.TestDistribution{}, err
	}

	var row model.TestDistribution
	if err := db.First(&row, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.TestDistribution{}, ports.ErrDistributionNotFound
		}
		return ports.TestDistribution{}, errs.Wrap(err, "query test distribution by token")
	}
	return mapTestDistribution(row), nil
}

func (r *TalkRepository) TouchTestViewed(ctx context.Context, testID uint64, viewedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.TestDistribution{}).
		Where("test_id = ?", testID).
		Update("last_viewed_at", viewedAt).Error; err != nil {
		return errs.Wrap(err, "touch test viewed")
	}
	return nil
}

func (r *TalkRepository) SetTestDelivery(ctx context.Context, testID uint64, emailSent bool, smsSent bool) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.TestDistribution{}).
		Where("test_id = ?", testID).
		Updates(map[string]any{"email_sent": emailSent, "sms_sent": smsSent}).Error; err != nil {
		return errs.Wrap(err, "set test delivery flags")
	}
	return nil
}

func (r *TalkRepository) PurgeTestDistributions(ctx context.Context, talkID uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("talk_id = ?", talkID).Delete(&model.TestDistribution{}).Error; err != nil {
		return errs.Wrap(err, "purge test distributions")
	}
	return nil
}

func talkRow(t ports.Talk) model.Talk {
	return model.Talk{
		TalkID:             t.TalkID,
		Title:              t.Title,
		Body:               t.Body,
		AuthorID:           t.AuthorID,
		AttachmentKind:     t.AttachmentKind,
		AttachmentPath:     t.AttachmentPath,
		AttachmentExt:      t.AttachmentExt,
		AttachmentURL:      t.AttachmentURL,
		HasQuiz:            t.HasQuiz,
		Status:             t.Status,
		Archived:           t.Archived,
		CreatedAt:          t.CreatedAt,
		FirstDistributedAt: t.FirstDistributedAt,
	}
}

func mapTalk(row model.Talk) ports.Talk {
	return ports.Talk{
		TalkID:             row.TalkID,
		Title:              row.Title,
		Body:               row.Body,
		AuthorID:           row.AuthorID,
		AttachmentKind:     row.AttachmentKind,
		AttachmentPath:     row.AttachmentPath,
		AttachmentExt:      row.AttachmentExt,
		AttachmentURL:      row.AttachmentURL,
		HasQuiz:            row.HasQuiz,
		Status:             row.Status,
		Archived:           row.Archived,
		CreatedAt:          row.CreatedAt,
		FirstDistributedAt: row.FirstDistributedAt,
	}
}

func mapDistribution(row model.Distribution) ports.Distribution {
	return ports.Distribution{
		DistributionID: row.DistributionID,
		TalkID:         row.TalkID,
		RecipientID:    row.RecipientID,
		Token:          row.Token,
		SentAt:         row.SentAt,
		NotifyAttempts: row.NotifyAttempts,
		LastSentAt:     row.LastSentAt,
	}
}

func mapTestDistribution(row model.TestDistribution) ports.TestDistribution {
	return ports.TestDistribution{
		TestID:       row.TestID,
		TalkID:       row.TalkID,
		Token:        row.Token,
		Email:        row.Email,
		Phone:        row.Phone,
		EmailSent:    row.EmailSent,
		SMSSent:      row.SMSSent,
		SentAt:       row.SentAt,
		LastViewedAt: row.LastViewedAt,
	}
}

func insertQuiz(db *gorm.DB, talkID uint64, questions []ports.QuizQuestion) error {
	for i, q := range questions {
		questionRow := model.QuizQuestion{
			TalkID:   talkID,
			Position: i + 1,
			Text:     q.Text,
		}
		if err := db.Create(&questionRow).Error; err != nil {
			return errs.Wrap(err, "insert quiz question")
		}

		for j, a := range q.Answers {
			answerRow := model.QuizAnswer{
				QuestionID: questionRow.QuestionID,
				Position:   j + 1,
				Text:       a.Text,
				Correct:    a.Correct,
			}
			if err := db.Create(&answerRow).Error; err != nil {
				return errs.Wrap(err, "insert quiz answer")
			}
		}
	}
	return nil
}

func deleteQuiz(db *gorm.DB, talkID uint64) error {
	sub := db.Model(&model.QuizQuestion{}).Select("question_id").Where("talk_id = ?", talkID)
	if err := db.Where("question_id IN (?)", sub).Delete(&model.QuizAnswer{}).Error; err != nil {
		return errs.Wrap(err, "delete quiz answers")
	}
	if err := db.Where("talk_id = ?", talkID).Delete(&model.QuizQuestion{}).Error; err != nil {
		return errs.Wrap(err, "delete quiz questions")
	}
	return nil
}
