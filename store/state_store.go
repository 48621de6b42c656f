package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/agentify-dev/agentify/internal/wizard"
)

const (
	// StateDirName is the workspace-local directory holding Agentify data.
	StateDirName = ".agentify"
	// StateFileName is the persisted wizard session inside StateDirName.
	StateFileName = "wizard-state.json"

	gitignoreName = ".gitignore"
	// configEntry is the sibling ignore entry the state entry is grouped with.
	configEntry = ".agentify/config.yaml"

	defaultDebounce = 500 * time.Millisecond
)

// shrinkLadder is the sequence of history limits tried when a snapshot
// exceeds the size ceiling. The last rung drops the history entirely.
var shrinkLadder = []int{10, 5, 2, 0}

// StateStore is the file-backed WizardStateStore. It writes a single JSON
// document under <root>/.agentify/ and keeps the workspace .gitignore
// covering it.
type StateStore struct {
	fs           afero.Fs
	rootDir      string
	historyLimit int

	mu      sync.Mutex
	timer   *time.Timer
	pending *wizard.WizardState
	gen     uint64
	closed  bool

	// writeMu serializes file writes so a debounce timer that has already
	// fired cannot land a stale snapshot after a newer immediate save.
	writeMu sync.Mutex

	debounce time.Duration
	warnf    func(format string, args ...any)
}

// NewStateStore builds a store rooted at the workspace directory. Pass
// afero.NewOsFs() outside tests. historyLimit <= 0 falls back to the
// default.
func NewStateStore(fsys afero.Fs, rootDir string, historyLimit int) *StateStore {
	if historyLimit <= 0 {
		historyLimit = wizard.DefaultHistoryLimit
	}
	return &StateStore{
		fs:           fsys,
		rootDir:      rootDir,
		historyLimit: historyLimit,
		debounce:     defaultDebounce,
		warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
	}
}

func (s *StateStore) statePath() string {
	return filepath.Join(s.rootDir, StateDirName, StateFileName)
}

// Save schedules a debounced write of the snapshot. The latest snapshot
// wins; earlier pending ones are discarded.
func (s *StateStore) Save(state *wizard.WizardState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.pending = state
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.flushPending(gen) })
}

// flushPending runs from the debounce timer. The generation check makes a
// fired timer whose snapshot has since been superseded (by Save,
// SaveImmediate, or Close) back off instead of writing stale state.
func (s *StateStore) flushPending(gen uint64) {
	s.mu.Lock()
	if s.gen != gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	state := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Re-check: an immediate save may have taken writeMu first and bumped
	// the generation while this flush was waiting.
	s.mu.Lock()
	stale := s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}
	if err := s.write(state); err != nil {
		s.warnf("failed to persist wizard state: %v", err)
	}
}

// SaveImmediate cancels any pending debounced write and persists now. It
// waits for an in-flight debounce flush so its snapshot always lands last.
func (s *StateStore) SaveImmediate(state *wizard.WizardState) error {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.write(state)
}

// write serializes the snapshot, shrinking conversation history until the
// document fits under the size ceiling. When even a history-free snapshot
// is too large the write is abandoned with a warning rather than
// producing a file that cannot be loaded back.
func (s *StateStore) write(state *wizard.WizardState) error {
	var data []byte
	fitted := false
	for _, limit := range shrinkLadder {
		if limit > s.historyLimit {
			limit = s.historyLimit
		}
		persisted := wizard.ToPersisted(state, limit)
		encoded, err := json.MarshalIndent(persisted, "", "  ")
		if err != nil {
			return fmt.Errorf("encode wizard state: %w", err)
		}
		if len(encoded) <= wizard.MaxPersistedBytes {
			data = encoded
			fitted = true
			break
		}
	}
	if !fitted {
		s.warnf("wizard state exceeds %d bytes even without history; skipping persist", wizard.MaxPersistedBytes)
		return nil
	}

	dir := filepath.Dir(s.statePath())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(s.fs, s.statePath(), data, 0o644); err != nil {
		return fmt.Errorf("write wizard state: %w", err)
	}
	if err := s.ensureGitignore(); err != nil {
		// The state itself is saved; a gitignore problem is not fatal.
		s.warnf("failed to update .gitignore: %v", err)
	}
	return nil
}

// Load reads the persisted session back. Decoding problems are reported
// through the status, not the error: only I/O failures surface as errors.
func (s *StateStore) Load() (*wizard.WizardState, LoadStatus, error) {
	data, err := afero.ReadFile(s.fs, s.statePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, StatusNotFound, nil
		}
		return nil, StatusNotFound, fmt.Errorf("read wizard state: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, StatusNotFound, nil
	}
	if trimmed[0] != '{' {
		return nil, StatusCorrupted, nil
	}

	var persisted wizard.PersistedWizardState
	if err := json.Unmarshal(trimmed, &persisted); err != nil {
		return nil, StatusCorrupted, nil
	}
	if persisted.SchemaVersion != wizard.SchemaVersion {
		return nil, StatusVersionMismatch, nil
	}
	return wizard.ToWizardState(persisted), StatusLoaded, nil
}

// Clear removes the state file. Missing files are tolerated so Clear is
// safe to call unconditionally.
func (s *StateStore) Clear() error {
	err := s.fs.Remove(s.statePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove wizard state: %w", err)
	}
	return nil
}

// Exists reports whether a state file is present.
func (s *StateStore) Exists() (bool, error) {
	return afero.Exists(s.fs, s.statePath())
}

// Close flushes any pending debounced write synchronously.
func (s *StateStore) Close() error {
	s.mu.Lock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	state := s.pending
	s.pending = nil
	s.closed = true
	s.mu.Unlock()

	if state != nil {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		return s.write(state)
	}
	return nil
}

// ensureGitignore keeps the workspace .gitignore covering the state file.
// The entry is grouped next to the config entry when one exists, appended
// otherwise, and never duplicated.
func (s *StateStore) ensureGitignore() error {
	stateEntry := StateDirName + "/" + StateFileName
	path := filepath.Join(s.rootDir, gitignoreName)

	data, err := afero.ReadFile(s.fs, path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		content := "# Agentify local state\n" + stateEntry + "\n"
		return afero.WriteFile(s.fs, path, []byte(content), 0o644)
	}

	lines := strings.Split(string(data), "\n")
	siblingIdx := -1
	for i, line := range lines {
		switch strings.TrimSpace(line) {
		case stateEntry:
			return nil // already covered
		case configEntry:
			siblingIdx = i
		}
	}

	if siblingIdx >= 0 {
		lines = append(lines[:siblingIdx+1], append([]string{stateEntry}, lines[siblingIdx+1:]...)...)
	} else {
		// Append at the end, keeping exactly one trailing newline.
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, stateEntry, "")
	}
	return afero.WriteFile(s.fs, path, []byte(strings.Join(lines, "\n")), 0o644)
}
