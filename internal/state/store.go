package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/natefinch/atomic"

	"CryptoNewsRelay/internal/domain"
	"CryptoNewsRelay/internal/ports"
)

// FileStore persists the run history as a single JSON document
// {"timestamp": ..., "all_news": [...]}. The file is replaced atomically
// so a failed write never leaves the store worse than before.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.StateStore = (*FileStore)(nil)

// NewFileStore wires the history file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger, now: time.Now}
}

// Load reads the persisted history. A missing or unreadable file yields
// an empty history; corruption is logged and treated the same, never fatal.
func (s *FileStore) Load(ctx context.Context) (domain.RunHistory, error) {
	empty := domain.RunHistory{Items: []domain.NewsItem{}}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Warn("state file unreadable, starting empty", "path", s.path, "error", err)
		}
		return empty, nil
	}

	var history domain.RunHistory
	if err := json.Unmarshal(raw, &history); err != nil {
		if s.logger != nil {
			s.logger.Warn("state file corrupt, starting empty", "path", s.path, "error", err)
		}
		return empty, nil
	}

	if history.Items == nil {
		history.Items = []domain.NewsItem{}
	}
	return history, nil
}

// Save atomically overwrites the history file. Saving an empty item list
// is a no-op that preserves the existing file: an upstream outage must
// never truncate history.
func (s *FileStore) Save(ctx context.Context, history domain.RunHistory) error {
	if len(history.Items) == 0 {
		if s.logger != nil {
			s.logger.Info("empty history, keeping existing state", "path", s.path)
		}
		return nil
	}

	if history.Timestamp == "" {
		history.Timestamp = s.now().Format(domain.HistoryTimeFormat)
	}

	raw, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}

	if s.logger != nil {
		s.logger.Info("history persisted", "path", s.path, "items", len(history.Items))
	}
	return nil
}
