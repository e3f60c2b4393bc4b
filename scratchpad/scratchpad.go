// Package scratchpad implements a working-notes store for agents. Each
// (project, agent) pair owns at most one pad, persisted as a single JSON
// file. Pads are free-form text that agents overwrite wholesale, so a
// vector store would be overkill here.
package scratchpad

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/memalpha/memalpha-go/memory"
)

// Pad is a single scratchpad owned by one (project, agent) pair.
type Pad struct {
	ProjectID string    `json:"project_id"`
	AgentID   string    `json:"agent_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists scratchpads as JSON files under a base directory.
// All operations are safe for concurrent use within a single process.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use this for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a scratchpad store rooted at dir, creating the directory
// if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create scratchpad directory",
			goerr.T(memory.TagStorage), goerr.V("dir", dir))
	}
	s := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create makes a new pad for the pair. It returns (nil, nil) when a pad
// already exists; callers distinguish that from I/O failure via the error.
func (s *Store) Create(projectID, agentID, content string) (*Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(projectID, agentID)
	if _, err := os.Stat(path); err == nil {
		return nil, nil
	}

	now := s.now()
	pad := &Pad{
		ProjectID: projectID,
		AgentID:   agentID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(path, pad); err != nil {
		return nil, err
	}
	return pad, nil
}

// Get returns the pad for the pair, or (nil, nil) when none exists.
func (s *Store) Get(projectID, agentID string) (*Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(s.path(projectID, agentID))
}

// Update replaces the pad content, preserving CreatedAt. It returns
// (nil, nil) when no pad exists for the pair.
func (s *Store) Update(projectID, agentID, content string) (*Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(projectID, agentID)
	existing, err := s.load(path)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	existing.Content = content
	existing.UpdatedAt = s.now()
	if err := s.save(path, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes the pad for the pair. It reports whether a pad existed.
func (s *Store) Delete(projectID, agentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(projectID, agentID)
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, goerr.Wrap(err, "failed to delete scratchpad",
			goerr.T(memory.TagStorage), goerr.V("path", path))
	}
	return true, nil
}

// List returns all pads, optionally filtered by project and/or agent.
// Empty filter values match everything. Unreadable or corrupt files are
// skipped.
func (s *Store) List(projectID, agentID string) ([]*Pad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scratchpad directory",
			goerr.T(memory.TagStorage), goerr.V("dir", s.dir))
	}

	var pads []*Pad
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		pad, err := s.load(filepath.Join(s.dir, entry.Name()))
		if err != nil || pad == nil {
			continue
		}
		if projectID != "" && pad.ProjectID != projectID {
			continue
		}
		if agentID != "" && pad.AgentID != agentID {
			continue
		}
		pads = append(pads, pad)
	}
	return pads, nil
}

func (s *Store) path(projectID, agentID string) string {
	name := sanitize(projectID) + "_" + sanitize(agentID) + ".json"
	return filepath.Join(s.dir, name)
}

func (s *Store) save(path string, pad *Pad) error {
	data, err := json.MarshalIndent(pad, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode scratchpad",
			goerr.T(memory.TagStorage))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write scratchpad",
			goerr.T(memory.TagStorage), goerr.V("path", path))
	}
	return nil
}

func (s *Store) load(path string) (*Pad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read scratchpad",
			goerr.T(memory.TagStorage), goerr.V("path", path))
	}
	var pad Pad
	if err := json.Unmarshal(data, &pad); err != nil {
		return nil, nil
	}
	return &pad, nil
}

// sanitize maps an identifier onto a filename-safe form. Word characters,
// hyphens and dots pass through, everything else becomes an underscore.
func sanitize(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
