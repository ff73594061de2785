// Package flagfile persists the maintenance gate as a JSON flag file next to
// the binary. A file on disk survives process restarts and can be flipped by
// the management CLI without talking to the server.
package flagfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dinkominfo-madiun/appcensus/internal/domain"
)

type flagPayload struct {
	EnabledAt string `json:"enabled_at"`
	EnabledBy string `json:"enabled_by"`
	Message   string `json:"message"`
}

// MaintenanceFlag reads and writes the flag file. The current state is cached
// under a mutex and refreshed by an fsnotify watcher, so the per-request read
// is a memory access, not disk I/O.
type MaintenanceFlag struct {
	path string

	mu     sync.RWMutex
	state  domain.MaintenanceState
	loaded bool
}

func NewMaintenanceFlag(path string) *MaintenanceFlag {
	return &MaintenanceFlag{path: path}
}

// State returns the cached flag state, loading from disk on first use.
func (f *MaintenanceFlag) State() (domain.MaintenanceState, error) {
	f.mu.RLock()
	if f.loaded {
		state := f.state
		f.mu.RUnlock()
		return state, nil
	}
	f.mu.RUnlock()
	return f.reload()
}

func (f *MaintenanceFlag) Enable(message, initiator string, at time.Time) error {
	payload := flagPayload{
		EnabledAt: at.Format("2006-01-02 15:04:05"),
		EnabledBy: initiator,
		Message:   message,
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode maintenance flag: %w", err)
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return fmt.Errorf("write maintenance flag: %w", err)
	}
	f.mu.Lock()
	f.state = domain.MaintenanceState{Enabled: true, Message: message, Initiator: initiator, EnabledAt: at}
	f.loaded = true
	f.mu.Unlock()
	return nil
}

func (f *MaintenanceFlag) Disable() (domain.MaintenanceState, error) {
	prior, err := f.State()
	if err != nil {
		return domain.MaintenanceState{}, err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.MaintenanceState{}, fmt.Errorf("remove maintenance flag: %w", err)
	}
	f.mu.Lock()
	f.state = domain.MaintenanceState{}
	f.loaded = true
	f.mu.Unlock()
	return prior, nil
}

// reload reads the flag file into the cache. A missing file means the gate is
// open; a present but malformed file means the gate is closed with no detail,
// since an operator put something there on purpose.
func (f *MaintenanceFlag) reload() (domain.MaintenanceState, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		state := domain.MaintenanceState{}
		f.store(state)
		return state, nil
	}
	if err != nil {
		return domain.MaintenanceState{}, fmt.Errorf("read maintenance flag: %w", err)
	}

	var payload flagPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		state := domain.MaintenanceState{Enabled: true}
		f.store(state)
		return state, nil
	}
	state := domain.MaintenanceState{
		Enabled:   true,
		Message:   payload.Message,
		Initiator: payload.EnabledBy,
	}
	if payload.EnabledAt != "" {
		if t, parseErr := time.Parse("2006-01-02 15:04:05", payload.EnabledAt); parseErr == nil {
			state.EnabledAt = t
		}
	}
	f.store(state)
	return state, nil
}

func (f *MaintenanceFlag) store(state domain.MaintenanceState) {
	f.mu.Lock()
	f.state = state
	f.loaded = true
	f.mu.Unlock()
}

// Watch keeps the cache in sync with out-of-process flips of the flag file,
// typically from the management CLI. onChange, when set, receives the new
// enabled state. Watch blocks until ctx is done.
func (f *MaintenanceFlag) Watch(ctx context.Context, onChange func(enabled bool)) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Default().WarnContext(ctx, "maintenance flag watcher unavailable",
			"module", "flagfile",
			"layer", "adapter",
			"operation", "watch",
			"outcome", "failure",
			"error", err,
		)
		return
	}
	defer func() {
		_ = w.Close()
	}()

	// Watch the directory, not the file: the flag file is created and removed
	// while the watch runs.
	dir := filepath.Dir(f.path)
	if err := w.Add(dir); err != nil {
		slog.Default().WarnContext(ctx, "maintenance flag watch add failed",
			"module", "flagfile",
			"layer", "adapter",
			"operation", "watch",
			"outcome", "failure",
			"dir", dir,
			"error", err,
		)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			state, reloadErr := f.reload()
			if reloadErr != nil {
				continue
			}
			slog.Default().InfoContext(ctx, "maintenance flag changed",
				"module", "flagfile",
				"layer", "adapter",
				"operation", "watch",
				"outcome", "success",
				"enabled", state.Enabled,
			)
			if onChange != nil {
				onChange(state.Enabled)
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
		}
	}
}
