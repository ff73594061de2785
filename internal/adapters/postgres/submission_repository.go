package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Insert(ctx context.Context, submission domain.Submission) (domain.Submission, error) {
	rec := toSubmissionModel(submission)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Submission{}, err
	}
	return toDomainSubmission(rec), nil
}

func (r *submissionRepository) GetByID(ctx context.Context, submissionID uuid.UUID) (domain.Submission, error) {
	var rec submissionModel
	if err := r.db.WithContext(ctx).Where("submission_id = ?", submissionID).Take(&rec).Error; err != nil {
		return domain.Submission{}, mapLookupError(err)
	}
	return toDomainSubmission(rec), nil
}

func (r *submissionRepository) List(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainSubmission(row))
	}
	return result, nil
}

func (r *submissionRepository) ListAll(ctx context.Context) ([]domain.Submission, error) {
	var rows []submissionModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainSubmission(row))
	}
	return result, nil
}

func (r *submissionRepository) Stats(ctx context.Context) (ports.SubmissionStats, error) {
	var stats ports.SubmissionStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = ?) AS active,
		       COUNT(*) FILTER (WHERE status = ?) AS inactive,
		       COUNT(*) FILTER (WHERE category = ?) AS regional,
		       COUNT(*) FILTER (WHERE category = ?) AS national,
		       COUNT(*) FILTER (WHERE category = ?) AS other_category
		FROM submissions`,
		domain.StatusActive, domain.StatusInactive,
		domain.CategoryRegional, domain.CategoryNational, domain.CategoryOther,
	).Scan(&stats).Error
	if err != nil {
		return ports.SubmissionStats{}, err
	}
	return stats, nil
}
