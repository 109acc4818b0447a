package talks

import (
	"context"
	"errors"
	"time"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/errs"
)

type PendingReportRow struct {
	TalkID                uint64
	TalkTitle             string
	TotalDistributed      int
	TotalSigned           int
	PendingNames          []string
	DaysSinceDistribution int
}

// PendingSignatures lists talks distributed within the trailing window
// that still have unsigned recipients, plus fully signed ones for
// completeness of the admin view.
func (s *Service) PendingSignatures(ctx context.Context, actor auth.Context, windowDays int) ([]PendingReportRow, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -windowDays).Format(time.RFC3339Nano)

	reports, err := s.repo.PendingSignatures(ctx, cutoff)
	if err != nil {
		return nil, errs.Wrap(err, "query pending signatures")
	}

	rows := make([]PendingReportRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, PendingReportRow{
			TalkID:                r.TalkID,
			TalkTitle:             r.Title,
			TotalDistributed:      r.TotalDistributed,
			TotalSigned:           r.TotalSigned,
			PendingNames:          r.PendingNames,
			DaysSinceDistribution: daysSince(r.FirstDistributed, now),
		})
	}
	return rows, nil
}

// History status labels. Derived, never stored.
const (
	HistoryStatusNever      = "Never Distributed"
	HistoryStatusComplete   = "Complete"
	HistoryStatusInProgress = "In Progress"
)

type HistoryRow struct {
	TalkID             uint64
	Title              string
	CreatedAt          string
	FirstDistributedAt string
	LastSentAt         string
	TotalDistributed   int
	TotalConfirmed     int
	Status             string
	CompletionPercent  int
}

// TalkHistory aggregates per-talk distribution and confirmation counts
// into the admin history view.
func (s *Service) TalkHistory(ctx context.Context, actor auth.Context) ([]HistoryRow, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	aggregates, err := s.repo.TalkHistory(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "query talk history")
	}

	rows := make([]HistoryRow, 0, len(aggregates))
	for _, a := range aggregates {
		row := HistoryRow{
			TalkID:             a.TalkID,
			Title:              a.Title,
			CreatedAt:          a.CreatedAt,
			FirstDistributedAt: a.FirstDistributedAt,
			LastSentAt:         a.LastSentAt,
			TotalDistributed:   a.TotalDistributed,
			TotalConfirmed:     a.TotalConfirmed,
		}

		switch {
		case a.TotalDistributed == 0:
			row.Status = HistoryStatusNever
		case a.TotalConfirmed == a.TotalDistributed:
			row.Status = HistoryStatusComplete
		default:
			row.Status = HistoryStatusInProgress
		}

		// Zero distributions means 0%, never a divide-by-zero.
		if a.TotalDistributed > 0 {
			row.CompletionPercent = a.TotalConfirmed * 100 / a.TotalDistributed
		}
		rows = append(rows, row)
	}
	return rows, nil
}
