// Package logfile is the fallback sink for audit records that could not
// reach the database. An append-only file needs no working dependencies, so
// the trail survives a store outage.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SecurityLog appends incident lines to a plain text file.
type SecurityLog struct {
	path string
	mu   sync.Mutex
}

func NewSecurityLog(path string) (*SecurityLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &SecurityLog{path: path}, nil
}

// Write appends one line. The file is opened per write; incident writes are
// rare and must not hold a descriptor hostage between them.
func (l *SecurityLog) Write(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open security log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append security log: %w", err)
	}
	return nil
}
