package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
	"github.com/dinkominfo-madiun/appcensus/internal/ports"
)

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&rec).Error; err != nil {
		return domain.Account{}, mapLookupError(err)
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (domain.Account, error) {
	var rec accountModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		return domain.Account{}, mapLookupError(err)
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var rows []accountModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainAccount(row))
	}
	return result, nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&accountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *accountRepository) Create(ctx context.Context, params ports.CreateAccountParams) (domain.Account, error) {
	rec := accountModel{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAt,
		UpdatedAt:    params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrConflict
		}
		return domain.Account{}, err
	}
	return toDomainAccount(rec), nil
}

// RecordFailure performs the counter increment and conditional lock in one
// statement. The active-lock guard lives inside the UPDATE itself, so
// concurrent failed logins that raced past a stale read still converge on
// the same counter and lock deadline as sequential execution would.
func (r *accountRepository) RecordFailure(ctx context.Context, accountID uuid.UUID, now time.Time, maxAttempts int, lockout time.Duration) (domain.Account, error) {
	var rec accountModel
	err := r.db.WithContext(ctx).Raw(`
		UPDATE admin_accounts
		SET login_attempts = CASE
		        WHEN locked_until IS NOT NULL AND locked_until > ?::timestamptz THEN login_attempts
		        ELSE login_attempts + 1
		    END,
		    locked_until = CASE
		        WHEN locked_until IS NOT NULL AND locked_until > ?::timestamptz THEN locked_until
		        WHEN login_attempts + 1 >= ? THEN ?::timestamptz
		        ELSE locked_until
		    END,
		    updated_at = ?
		WHERE account_id = ?
		RETURNING account_id, username, email, password_hash, login_attempts,
		          locked_until, last_login_at, created_at, updated_at`,
		now, now, maxAttempts, now.Add(lockout), now, accountID,
	).Scan(&rec).Error
	if err != nil {
		return domain.Account{}, fmt.Errorf("record login failure: %w", err)
	}
	if rec.AccountID == uuid.Nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return toDomainAccount(rec), nil
}

func (r *accountRepository) RecordSuccess(ctx context.Context, accountID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
			"last_login_at":  now,
			"updated_at":     now,
		}).Error
}

func (r *accountRepository) UpdatePassword(ctx context.Context, accountID uuid.UUID, passwordHash string, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"password_hash":  passwordHash,
			"login_attempts": 0,
			"locked_until":   nil,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) Unlock(ctx context.Context, accountID uuid.UUID, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&accountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"login_attempts": 0,
			"locked_until":   nil,
			"updated_at":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&accountModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
