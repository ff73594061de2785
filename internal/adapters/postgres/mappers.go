package postgres

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

func toDomainAccount(row accountModel) domain.Account {
	return domain.Account{
		AccountID:     row.AccountID,
		Username:      row.Username,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash,
		LoginAttempts: row.LoginAttempts,
		LockedUntil:   row.LockedUntil,
		LastLoginAt:   row.LastLoginAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func toDomainSubmission(row submissionModel) domain.Submission {
	return domain.Submission{
		SubmissionID:   row.SubmissionID,
		AgencyName:     row.AgencyName,
		AppName:        row.AppName,
		Description:    row.Description,
		DomainURL:      row.DomainURL,
		Category:       row.Category,
		Status:         row.Status,
		InactiveReason: row.InactiveReason,
		ManagerName:    row.ManagerName,
		ManagerPhone:   row.ManagerPhone,
		IPAddress:      row.IPAddress,
		UserAgent:      row.UserAgent,
		CreatedAt:      row.CreatedAt,
	}
}

func toSubmissionModel(s domain.Submission) submissionModel {
	return submissionModel{
		SubmissionID:   s.SubmissionID,
		AgencyName:     s.AgencyName,
		AppName:        s.AppName,
		Description:    s.Description,
		DomainURL:      s.DomainURL,
		Category:       s.Category,
		Status:         s.Status,
		InactiveReason: s.InactiveReason,
		ManagerName:    s.ManagerName,
		ManagerPhone:   s.ManagerPhone,
		IPAddress:      s.IPAddress,
		UserAgent:      s.UserAgent,
		CreatedAt:      s.CreatedAt,
	}
}

func toDomainActivityRecord(row activityLogModel) domain.ActivityRecord {
	var meta map[string]any
	if row.Metadata != nil && *row.Metadata != "" {
		_ = json.Unmarshal([]byte(*row.Metadata), &meta)
	}
	return domain.ActivityRecord{
		ID:          row.ID,
		Action:      row.Action,
		SubjectType: row.SubjectType,
		SubjectID:   row.SubjectID,
		ActorID:     row.ActorID,
		IPAddress:   row.IPAddress,
		UserAgent:   row.UserAgent,
		Metadata:    meta,
		RecordedAt:  row.RecordedAt,
	}
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
