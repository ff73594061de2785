package domain

import (
	"errors"
	"testing"
)

func validSubmission() Submission {
	return Submission{
		AgencyName:   "Dinas Pendidikan",
		AppName:      "Sistem Informasi Sekolah",
		Description:  "Aplikasi manajemen data sekolah",
		DomainURL:    "https://sekolah.example.go.id",
		Category:     CategoryRegional,
		Status:       StatusActive,
		ManagerName:  "Budi Santoso",
		ManagerPhone: "081234567890",
	}
}

func TestSubmissionValidate(t *testing.T) {
	t.Parallel()

	agencies := []string{"Dinas Pendidikan", "Dinas Kesehatan"}

	if err := validSubmission().Validate(agencies); err != nil {
		t.Fatalf("valid submission rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Submission)
	}{
		{"empty agency", func(s *Submission) { s.AgencyName = "  " }},
		{"unlisted agency", func(s *Submission) { s.AgencyName = "Dinas Fiktif" }},
		{"short app name", func(s *Submission) { s.AppName = "ab" }},
		{"url without scheme", func(s *Submission) { s.DomainURL = "sekolah.go.id" }},
		{"ftp url", func(s *Submission) { s.DomainURL = "ftp://sekolah.go.id" }},
		{"unknown category", func(s *Submission) { s.Category = "Aplikasi Rahasia" }},
		{"unknown status", func(s *Submission) { s.Status = "Ditunda" }},
		{"inactive without reason", func(s *Submission) { s.Status = StatusInactive; s.InactiveReason = "" }},
		{"short manager name", func(s *Submission) { s.ManagerName = "Bu" }},
		{"landline phone", func(s *Submission) { s.ManagerPhone = "0351464123" }},
		{"alpha phone", func(s *Submission) { s.ManagerPhone = "hubungi saja" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := validSubmission()
			tc.mutate(&s)
			if err := s.Validate(agencies); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestSubmissionValidateAcceptedVariants(t *testing.T) {
	t.Parallel()

	agencies := []string{"Dinas Pendidikan"}

	// Empty URL is optional.
	s := validSubmission()
	s.DomainURL = ""
	if err := s.Validate(agencies); err != nil {
		t.Fatalf("empty url rejected: %v", err)
	}

	// Country-prefixed mobile numbers.
	for _, phone := range []string{"+6281234567890", "6281234567890", "08123456789"} {
		s := validSubmission()
		s.ManagerPhone = phone
		if err := s.Validate(agencies); err != nil {
			t.Fatalf("phone %q rejected: %v", phone, err)
		}
	}

	// Inactive with a reason is complete.
	s = validSubmission()
	s.Status = StatusInactive
	s.InactiveReason = "Server lama dimatikan"
	if err := s.Validate(agencies); err != nil {
		t.Fatalf("inactive with reason rejected: %v", err)
	}

	// Empty agency list disables the membership check.
	s = validSubmission()
	s.AgencyName = "Dinas Mana Saja"
	if err := s.Validate(nil); err != nil {
		t.Fatalf("membership check should be disabled: %v", err)
	}
}

func TestSubmissionFieldsCoverFreeText(t *testing.T) {
	t.Parallel()

	fields := validSubmission().Fields()
	for _, name := range []string{"agency_name", "app_name", "description", "domain_url", "inactive_reason", "manager_name", "manager_phone"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("field %q missing from scan set", name)
		}
	}
	if _, ok := fields["ip_address"]; ok {
		t.Errorf("transport metadata must not be scanned")
	}
}
