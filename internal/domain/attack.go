package domain

import "regexp"

// attackPatterns is the fixed signature list, in evaluation order.
// The set is heuristic on purpose: it can false-positive on text resembling a
// payload and false-negative on novel payloads. Do not broaden or narrow it
// without revisiting the detection policy as a whole. Cheap literal-anchored
// patterns come first; each entry is an independent hazard class.
var attackPatterns = []*regexp.Regexp{
	// Path traversal
	regexp.MustCompile(`\.\./`),
	regexp.MustCompile(`\.\.\\`),

	// SQL injection fragments
	regexp.MustCompile(`(?i)union\s+select`),
	regexp.MustCompile(`(?i)or\s+1\s*=\s*1`),
	regexp.MustCompile(`(?i)drop\s+table`),
	regexp.MustCompile(`(?i)insert\s+into`),
	regexp.MustCompile(`(?i)update\s+set`),
	regexp.MustCompile(`(?i)delete\s+from`),

	// Script injection fragments
	regexp.MustCompile(`(?i)<script[^>]*>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<iframe[^>]*>`),

	// Shell meta-sequences
	regexp.MustCompile(`(?i);\s*cat\s+`),
	regexp.MustCompile(`(?i);\s*ls\s+`),
	regexp.MustCompile(`(?i);\s*rm\s+`),
	regexp.MustCompile(`(?i)\|\s*cat\s+`),

	// Server-side code injection markers
	regexp.MustCompile(`(?i)<\?php`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)base64_decode`),
	regexp.MustCompile(`(?i)file_get_contents`),
}

// DetectAttack reports whether value matches any known attack signature.
// Evaluation short-circuits on the first match. The function is pure; the
// caller decides whether to audit and block.
func DetectAttack(value string) bool {
	for _, pattern := range attackPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// ScanFields runs DetectAttack over every field of a state-changing
// submission. A single match condemns the whole request; the offending field
// name is returned for the audit trail.
func ScanFields(fields map[string]string) (string, bool) {
	for name, value := range fields {
		if DetectAttack(value) {
			return name, true
		}
	}
	return "", false
}
