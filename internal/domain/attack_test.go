package domain

import "testing"

func TestDetectAttack(t *testing.T) {
	t.Parallel()

	hostile := []string{
		"../../etc/passwd",
		`..\..\windows\system32`,
		"1 UNION SELECT username, password FROM users",
		"' or 1=1 --",
		"'; DROP TABLE submissions; --",
		"INSERT INTO accounts VALUES ('x')",
		"1; DELETE FROM activity_logs",
		"<script>document.location='http://evil'</script>",
		"<SCRIPT src=x.js>",
		"javascript:alert(document.cookie)",
		`<img src=x onerror=alert(1)>`,
		`<iframe src="http://evil">`,
		"; cat /etc/shadow",
		"x | cat /etc/passwd",
		"<?php echo shell_exec($_GET['c']); ?>",
		"eval (atob(payload))",
		"base64_decode('cGF5bG9hZA==')",
		"file_get_contents('/etc/passwd')",
	}
	for _, value := range hostile {
		if !DetectAttack(value) {
			t.Errorf("expected detection for %q", value)
		}
	}

	benign := []string{
		"",
		"Sistem Informasi Manajemen Kepegawaian",
		"Aplikasi untuk input dan update data sekolah",
		"Versi 2.0, dipakai sejak 2019. Kontak: 0812-3456-7890",
		"https://sekolah.madiun.go.id/login",
		"Server lama sudah dimatikan, data dipindah ke pusat",
		"Delete old files from server",
		"Aplikasi kasir dengan diskon 1+1",
	}
	for _, value := range benign {
		if DetectAttack(value) {
			t.Errorf("false positive for %q", value)
		}
	}
}

func TestScanFieldsNamesOffendingField(t *testing.T) {
	t.Parallel()

	field, hit := ScanFields(map[string]string{
		"app_name":    "Sistem Informasi Sekolah",
		"description": "' or 1=1 --",
	})
	if !hit || field != "description" {
		t.Fatalf("expected hit on description, got %q hit=%v", field, hit)
	}

	if field, hit := ScanFields(map[string]string{"app_name": "E-Arsip"}); hit {
		t.Fatalf("unexpected hit on %q", field)
	}
}
