// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stacklok/skillpkg/logger"
	"github.com/stacklok/skillpkg/sources"
)

const (
	stateDirName  = ".skillpkg"
	stateFileName = "state.json"

	dirPerm  = 0o750
	filePerm = 0o600
)

// SkillRecord is the caller-supplied portion of a skill install record.
type SkillRecord struct {
	Version     string
	Source      string
	InstalledBy InstalledBy
}

// Store owns the persisted ledger document for one project.
//
// Every mutation is a full load-mutate-save cycle against the whole
// document, serialized by a process-local mutex: the document is
// last-write-wins, not a merge, so concurrent in-process callers must never
// interleave. Saves go through a temporary file in the same directory
// followed by a rename, so readers never observe a torn write.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore creates a ledger store for the project rooted at projectPath.
func NewStore(projectPath string) *Store {
	return &Store{
		path: filepath.Join(projectPath, stateDirName, stateFileName),
		now:  time.Now,
	}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current ledger. A missing, unreadable, or
// unrecognized-schema file degrades to a freshly-initialized empty ledger;
// corruption never raises. The Recovered flag on the result distinguishes a
// discarded document from a truly absent one.
func (s *Store) Load() *Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() *Ledger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		ledger := NewLedger()
		if !os.IsNotExist(err) {
			logger.Warnf("discarding unreadable ledger at %s: %v", s.path, err)
			ledger.Recovered = true
		}
		return ledger
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		logger.Warnf("discarding corrupt ledger at %s: %v", s.path, err)
		recovered := NewLedger()
		recovered.Recovered = true
		return recovered
	}
	if ledger.SchemaVersion != SchemaVersion {
		logger.Warnf("discarding ledger at %s with unrecognized schema %q", s.path, ledger.SchemaVersion)
		recovered := NewLedger()
		recovered.Recovered = true
		return recovered
	}

	if ledger.Skills == nil {
		ledger.Skills = make(map[string]*SkillEntry)
	}
	if ledger.Tools == nil {
		ledger.Tools = make(map[string]*ToolEntry)
	}
	if ledger.SyncHistory == nil {
		ledger.SyncHistory = make(map[string]time.Time)
	}
	return &ledger
}

// Save persists the ledger atomically.
func (s *Store) Save(ledger *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ledger)
}

func (s *Store) saveLocked(ledger *Ledger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing ledger: %w", err)
	}
	data = append(data, '\n')

	// Temp file in the same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp ledger file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting ledger permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing ledger: %w", err)
	}
	return nil
}

// mutate runs one load-mutate-save cycle under the store lock.
func (s *Store) mutate(fn func(*Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.loadLocked()
	if err := fn(ledger); err != nil {
		return err
	}
	return s.saveLocked(ledger)
}

// RecordSkillInstall creates or overwrites the entry for name with a fresh
// timestamp and an empty dependedBy set.
func (s *Store) RecordSkillInstall(name string, rec SkillRecord) error {
	if err := sources.ValidateName(name); err != nil {
		return err
	}
	return s.mutate(func(l *Ledger) error {
		l.recordSkillInstall(name, rec, s.now().UTC())
		return nil
	})
}

// RecordSkillUninstall deletes the entry for name and prunes name from
// every remaining entry's dependedBy set. A no-op when name is absent.
func (s *Store) RecordSkillUninstall(name string) error {
	return s.mutate(func(l *Ledger) error {
		l.removeSkill(name)
		return nil
	})
}

// RecordToolInstall records a surfaced external tool. installedBySkill may
// be empty when the requiring skill is unknown.
func (s *Store) RecordToolInstall(name, packageIdentifier, installedBySkill string) error {
	return s.mutate(func(l *Ledger) error {
		entry := &ToolEntry{
			PackageIdentifier: packageIdentifier,
			InstalledAt:       s.now().UTC(),
		}
		if installedBySkill != "" {
			entry.InstalledBySkill = &installedBySkill
		}
		l.Tools[name] = entry
		return nil
	})
}

// AddDependency records that dependent requires dependency. It fails with
// ErrDependencyNotFound when dependency has no ledger entry; a duplicate
// add is a no-op.
func (s *Store) AddDependency(dependent, dependency string) error {
	return s.mutate(func(l *Ledger) error {
		return l.addDependency(dependent, dependency)
	})
}

// RemoveDependency removes the dependent-to-dependency relation. A no-op
// when the entry or the relation is absent.
func (s *Store) RemoveDependency(dependent, dependency string) error {
	return s.mutate(func(l *Ledger) error {
		l.removeDependency(dependent, dependency)
		return nil
	})
}

// UpdateSkillVersion sets the recorded version for name without touching
// its dependency adjacency.
func (s *Store) UpdateSkillVersion(name, version string) error {
	return s.mutate(func(l *Ledger) error {
		entry, ok := l.Skills[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSkillNotFound, name)
		}
		entry.Version = version
		return nil
	})
}

// CanUninstall reports whether name can be removed; see Ledger.CanUninstall.
func (s *Store) CanUninstall(name string) (bool, []string) {
	return s.Load().CanUninstall(name)
}

// OrphanDependencies returns reclaimable dependency installs; see
// Ledger.OrphanDependencies.
func (s *Store) OrphanDependencies() []string {
	return s.Load().OrphanDependencies()
}

// OrphanLedgerEntries returns ledger entries with no corresponding physical
// skill in diskNames.
func (s *Store) OrphanLedgerEntries(diskNames []string) []string {
	return s.Load().OrphanEntries(toSet(diskNames))
}

// CleanOrphanLedgerEntries removes every ledger entry with no corresponding
// physical skill and prunes the removed names out of every remaining
// entry's dependedBy set. Returns the removed names.
func (s *Store) CleanOrphanLedgerEntries(diskNames []string) ([]string, error) {
	var removed []string
	err := s.mutate(func(l *Ledger) error {
		removed = l.cleanOrphanEntries(toSet(diskNames))
		return nil
	})
	return removed, err
}

// CleanDanglingReferences removes every dependedBy reference pointing at a
// name with no ledger entry. Returns how many references were pruned.
func (s *Store) CleanDanglingReferences() (int, error) {
	pruned := 0
	err := s.mutate(func(l *Ledger) error {
		pruned = l.cleanDanglingReferences()
		return nil
	})
	return pruned, err
}

// RecordSync stamps the sync history for target with the current time.
func (s *Store) RecordSync(target string) error {
	return s.mutate(func(l *Ledger) error {
		l.SyncHistory[target] = s.now().UTC()
		return nil
	})
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
