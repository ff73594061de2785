package postgres

import (
	"gorm.io/gorm"

	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

type Repositories struct {
	Accounts    ports.AccountRepository
	Submissions ports.SubmissionRepository
	Activity    ports.ActivityLogRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts:    &accountRepository{db: db},
		Submissions: &submissionRepository{db: db},
		Activity:    &activityLogRepository{db: db},
	}
}
