package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Application categories accepted by the census form.
const (
	CategoryRegional = "Aplikasi Khusus/Daerah"
	CategoryNational = "Aplikasi Pusat/Umum"
	CategoryOther    = "Aplikasi Lainnya"
)

// Application statuses.
const (
	StatusActive   = "Aktif"
	StatusInactive = "Tidak Aktif"
)

var phonePattern = regexp.MustCompile(`^(\+628|628|08)[0-9]{7,12}$`)

// Submission is one application record reported by a regional agency.
type Submission struct {
	SubmissionID   uuid.UUID
	AgencyName     string
	AppName        string
	Description    string
	DomainURL      string
	Category       string
	Status         string
	InactiveReason string
	ManagerName    string
	ManagerPhone   string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

// Fields returns every free-text field of the submission for attack scanning.
func (s Submission) Fields() map[string]string {
	return map[string]string{
		"agency_name":     s.AgencyName,
		"app_name":        s.AppName,
		"description":     s.Description,
		"domain_url":      s.DomainURL,
		"category":        s.Category,
		"status":          s.Status,
		"inactive_reason": s.InactiveReason,
		"manager_name":    s.ManagerName,
		"manager_phone":   s.ManagerPhone,
	}
}

// Validate enforces the census form rules. agencies is the configured list of
// reporting agencies; an empty list disables the membership check.
func (s Submission) Validate(agencies []string) error {
	if strings.TrimSpace(s.AgencyName) == "" {
		return fmt.Errorf("%w: agency name is required", ErrInvalidInput)
	}
	if len(agencies) > 0 && !contains(agencies, s.AgencyName) {
		return fmt.Errorf("%w: unknown agency", ErrInvalidInput)
	}
	if len(strings.TrimSpace(s.AppName)) < 3 {
		return fmt.Errorf("%w: application name must be at least 3 characters", ErrInvalidInput)
	}
	if len(s.AppName) > 255 {
		return fmt.Errorf("%w: application name must be <= 255 characters", ErrInvalidInput)
	}
	if s.DomainURL != "" {
		if err := validateURL(s.DomainURL); err != nil {
			return err
		}
	}
	switch s.Category {
	case CategoryRegional, CategoryNational, CategoryOther:
	default:
		return fmt.Errorf("%w: invalid application category", ErrInvalidInput)
	}
	switch s.Status {
	case StatusActive:
	case StatusInactive:
		if strings.TrimSpace(s.InactiveReason) == "" {
			return fmt.Errorf("%w: inactive reason is required for inactive applications", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: invalid application status", ErrInvalidInput)
	}
	if len(strings.TrimSpace(s.ManagerName)) < 3 {
		return fmt.Errorf("%w: manager name must be at least 3 characters", ErrInvalidInput)
	}
	if !phonePattern.MatchString(strings.TrimSpace(s.ManagerPhone)) {
		return fmt.Errorf("%w: manager phone must be 08xxxxxxxxxx or +628xxxxxxxxxx", ErrInvalidInput)
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("%w: invalid domain url", ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: domain url must use http or https", ErrInvalidInput)
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
