// Package history is the durable conversation transcript shared by every
// memory-aware provider.
//
// The transcript is a JSON array of {"role","content"} records. System turns
// are never stored; they are injected by providers at call time.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"belle/internal/llm"
)

var ErrSystemTurn = errors.New("system turns are not persisted")

// PersistError reports a failure to write the transcript to disk.
type PersistError struct {
	Path string
	Op   string // "mkdir", "write", "rename"
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("history persist error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Store holds one session's transcript. All mutations go through a single
// mutex and are written to disk before they return.
type Store struct {
	path   string
	logger *zap.Logger

	mu    sync.Mutex
	turns []llm.Message
}

// Open creates a store backed by path and loads it.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the in-memory transcript with the persisted one. A missing or
// unreadable file starts a fresh, empty transcript which becomes the new
// baseline on disk. Only a failure to write that baseline is returned.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("transcript unreadable, starting fresh", zap.String("path", s.path), zap.Error(err))
		}
		return s.resetLocked()
	}

	var turns []llm.Message
	if err := json.Unmarshal(data, &turns); err != nil {
		s.logger.Warn("transcript corrupt, starting fresh", zap.String("path", s.path), zap.Error(err))
		return s.resetLocked()
	}

	kept := turns[:0]
	for _, t := range turns {
		if t.Role == llm.RoleUser || t.Role == llm.RoleAssistant {
			kept = append(kept, t)
		}
	}
	s.turns = kept
	s.logger.Debug("transcript loaded", zap.String("path", s.path), zap.Int("turns", len(kept)))
	return nil
}

// Append adds one turn and persists the transcript.
func (s *Store) Append(turn llm.Message) error {
	if turn.Role == llm.RoleSystem {
		return ErrSystemTurn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(turn)
}

// AppendExchange records a user prompt and the assistant answer as one
// critical section, so concurrent writers never interleave their pairs.
func (s *Store) AppendExchange(user, assistant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(
		llm.Message{Role: llm.RoleUser, Content: user},
		llm.Message{Role: llm.RoleAssistant, Content: assistant},
	)
}

// Snapshot returns a copy of the transcript in order.
func (s *Store) Snapshot() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Message, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

func (s *Store) Path() string { return s.path }

// Reset clears the transcript on disk and in memory.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked()
}

func (s *Store) resetLocked() error {
	if err := s.writeLocked([]llm.Message{}); err != nil {
		return err
	}
	s.turns = []llm.Message{}
	return nil
}

func (s *Store) appendLocked(turns ...llm.Message) error {
	next := make([]llm.Message, 0, len(s.turns)+len(turns))
	next = append(next, s.turns...)
	next = append(next, turns...)
	if err := s.writeLocked(next); err != nil {
		return err
	}
	s.turns = next
	return nil
}

// writeLocked replaces the file atomically via a temp file in the same dir.
func (s *Store) writeLocked(turns []llm.Message) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistError{Path: s.path, Op: "mkdir", Err: err}
	}
	data, err := json.MarshalIndent(turns, "", "    ")
	if err != nil {
		return &PersistError{Path: s.path, Op: "write", Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &PersistError{Path: s.path, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Op: "write", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Op: "rename", Err: err}
	}
	return nil
}

// Backup writes the current transcript to a timestamped copy in dir and
// returns its path.
func (s *Store) Backup(dir string, now time.Time) (string, error) {
	turns := s.Snapshot()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup dir: %w", err)
	}
	data, err := json.MarshalIndent(turns, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}
	ext := filepath.Ext(s.path)
	name := strings.TrimSuffix(filepath.Base(s.path), ext) + "-" + now.UTC().Format("20060102-150405") + ext
	dst := filepath.Join(dir, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return dst, nil
}
