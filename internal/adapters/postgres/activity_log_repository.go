package postgres

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

type activityLogRepository struct {
	db *gorm.DB
}

func (r *activityLogRepository) Insert(ctx context.Context, record domain.ActivityRecord) error {
	rec := activityLogModel{
		Action:      record.Action,
		SubjectType: record.SubjectType,
		SubjectID:   record.SubjectID,
		ActorID:     record.ActorID,
		IPAddress:   record.IPAddress,
		UserAgent:   record.UserAgent,
		RecordedAt:  record.RecordedAt,
	}
	if len(record.Metadata) > 0 {
		raw, err := json.Marshal(record.Metadata)
		if err == nil {
			s := string(raw)
			rec.Metadata = &s
		}
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityRecord, error) {
	var rows []activityLogModel
	if err := r.db.WithContext(ctx).Order("recorded_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainActivityRecord(row))
	}
	return result, nil
}

func (r *activityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("recorded_at < ?", cutoff).Delete(&activityLogModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
