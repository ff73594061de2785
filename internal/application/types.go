package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CSRFToken string `json:"csrf_token"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	// PriorSessionID is the anonymous session carrying the CSRF token. It is
	// destroyed on success so a fixated pre-login identifier never becomes an
	// authenticated one.
	PriorSessionID *uuid.UUID `json:"-"`
}

type LoginResponse struct {
	Token     string         `json:"token"`
	Session   domain.Session `json:"-"`
	CSRFToken string         `json:"csrf_token"`
	Username  string         `json:"username"`
}

type SubmissionRequest struct {
	AgencyName     string `json:"agency_name"`
	AppName        string `json:"app_name"`
	Description    string `json:"description"`
	DomainURL      string `json:"domain_url"`
	Category       string `json:"category"`
	Status         string `json:"status"`
	InactiveReason string `json:"inactive_reason"`
	ManagerName    string `json:"manager_name"`
	ManagerPhone   string `json:"manager_phone"`
	CSRFToken      string `json:"csrf_token"`
	IPAddress      string `json:"-"`
	UserAgent      string `json:"-"`
}

type SubmissionItem struct {
	SubmissionID   uuid.UUID `json:"submission_id"`
	AgencyName     string    `json:"agency_name"`
	AppName        string    `json:"app_name"`
	Description    string    `json:"description,omitempty"`
	DomainURL      string    `json:"domain_url,omitempty"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	InactiveReason string    `json:"inactive_reason,omitempty"`
	ManagerName    string    `json:"manager_name"`
	ManagerPhone   string    `json:"manager_phone"`
	CreatedAt      time.Time `json:"created_at"`
}

type AdminItem struct {
	AccountID     uuid.UUID  `json:"account_id"`
	Username      string     `json:"username"`
	Email         string     `json:"email,omitempty"`
	LoginAttempts int        `json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type MaintenanceStatus struct {
	Enabled   bool      `json:"enabled"`
	Message   string    `json:"message,omitempty"`
	Initiator string    `json:"initiator,omitempty"`
	EnabledAt time.Time `json:"enabled_at,omitempty"`
}

func toSubmissionItem(s domain.Submission) SubmissionItem {
	return SubmissionItem{
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
		CreatedAt:      s.CreatedAt,
	}
}

func toAdminItem(a domain.Account) AdminItem {
	return AdminItem{
		AccountID:     a.AccountID,
		Username:      a.Username,
		Email:         a.Email,
		LoginAttempts: a.LoginAttempts,
		LockedUntil:   a.LockedUntil,
		LastLoginAt:   a.LastLoginAt,
		CreatedAt:     a.CreatedAt,
	}
}
