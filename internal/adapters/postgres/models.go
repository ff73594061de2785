package postgres

import (
	"time"

	"github.com/google/uuid"
)

type accountModel struct {
	AccountID     uuid.UUID  `gorm:"column:account_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username      string     `gorm:"column:username"`
	Email         string     `gorm:"column:email"`
	PasswordHash  string     `gorm:"column:password_hash"`
	LoginAttempts int        `gorm:"column:login_attempts"`
	LockedUntil   *time.Time `gorm:"column:locked_until"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (accountModel) TableName() string { return "admin_accounts" }

type submissionModel struct {
	SubmissionID   uuid.UUID `gorm:"column:submission_id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgencyName     string    `gorm:"column:agency_name"`
	AppName        string    `gorm:"column:app_name"`
	Description    string    `gorm:"column:description"`
	DomainURL      string    `gorm:"column:domain_url"`
	Category       string    `gorm:"column:category"`
	Status         string    `gorm:"column:status"`
	InactiveReason string    `gorm:"column:inactive_reason"`
	ManagerName    string    `gorm:"column:manager_name"`
	ManagerPhone   string    `gorm:"column:manager_phone"`
	IPAddress      string    `gorm:"column:ip_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (submissionModel) TableName() string { return "submissions" }

type activityLogModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	Action      string     `gorm:"column:action"`
	SubjectType string     `gorm:"column:subject_type"`
	SubjectID   string     `gorm:"column:subject_id"`
	ActorID     *uuid.UUID `gorm:"column:actor_id"`
	IPAddress   string     `gorm:"column:ip_address"`
	UserAgent   string     `gorm:"column:user_agent"`
	Metadata    *string    `gorm:"column:metadata;type:jsonb"`
	RecordedAt  time.Time  `gorm:"column:recorded_at"`
}

func (activityLogModel) TableName() string { return "activity_logs" }
