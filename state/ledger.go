// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"fmt"
	"slices"
	"time"
)

// SchemaVersion identifies the persisted ledger document format. A document
// with any other value is discarded on load.
const SchemaVersion = "skillpkg-state-v1"

// SkillEntry is the persisted record of one installed skill.
type SkillEntry struct {
	Version     string      `json:"version"`
	Source      string      `json:"source"`
	InstalledBy InstalledBy `json:"installedBy"`
	InstalledAt time.Time   `json:"installedAt"`

	// DependedBy is the sorted set of skill names that require this one.
	// It is the inverse of the install-time "required by" edges: a skill
	// must never be removed while this set is non-empty.
	DependedBy []string `json:"dependedBy"`
}

// ToolEntry is the persisted record of one surfaced external tool.
type ToolEntry struct {
	PackageIdentifier string    `json:"packageIdentifier"`
	InstalledBySkill  *string   `json:"installedBySkill"`
	InstalledAt       time.Time `json:"installedAt"`
}

// Ledger is the installation-state document. It is persisted as a single
// JSON file and always written whole; see Store for the persistence rules.
type Ledger struct {
	SchemaVersion string                 `json:"schemaVersion"`
	Skills        map[string]*SkillEntry `json:"skills"`
	Tools         map[string]*ToolEntry  `json:"tools"`
	SyncHistory   map[string]time.Time   `json:"syncHistory"`

	// Recovered is true when Load discarded an unreadable or unrecognized
	// document and degraded to an empty ledger. It distinguishes real data
	// loss from a ledger that was truly empty.
	Recovered bool `json:"-"`
}

// NewLedger returns an empty ledger at the current schema version.
func NewLedger() *Ledger {
	return &Ledger{
		SchemaVersion: SchemaVersion,
		Skills:        make(map[string]*SkillEntry),
		Tools:         make(map[string]*ToolEntry),
		SyncHistory:   make(map[string]time.Time),
	}
}

// SkillNames returns the installed skill names, sorted.
func (l *Ledger) SkillNames() []string {
	names := make([]string, 0, len(l.Skills))
	for name := range l.Skills {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HasSkill reports whether the ledger has an entry for name.
func (l *Ledger) HasSkill(name string) bool {
	_, ok := l.Skills[name]
	return ok
}

// InstalledSet returns the installed names as a set, in the shape the
// resolver and planner consume.
func (l *Ledger) InstalledSet() map[string]bool {
	set := make(map[string]bool, len(l.Skills))
	for name := range l.Skills {
		set[name] = true
	}
	return set
}

// CanUninstall reports whether name can be removed. It is false, with the
// sorted list of dependents, while any other skill still depends on name.
// This is the single safety gate consulted before any destructive removal.
func (l *Ledger) CanUninstall(name string) (bool, []string) {
	entry, ok := l.Skills[name]
	if !ok || len(entry.DependedBy) == 0 {
		return true, nil
	}
	dependents := slices.Clone(entry.DependedBy)
	slices.Sort(dependents)
	return false, dependents
}

// OrphanDependencies returns skills that were installed as a dependency,
// are no longer depended on by anything, and whose installer has no ledger
// entry anymore. These are reclaimable.
//
// The check is one hop deep: only the immediate installer's entry is
// consulted, not whether that installer is still reachable from a
// user-level root. A multi-hop orphan may take more than one pass to find.
func (l *Ledger) OrphanDependencies() []string {
	var orphans []string
	for name, entry := range l.Skills {
		if entry.InstalledBy.IsUser() || len(entry.DependedBy) > 0 {
			continue
		}
		if !l.HasSkill(entry.InstalledBy.Skill()) {
			orphans = append(orphans, name)
		}
	}
	slices.Sort(orphans)
	return orphans
}

// OrphanEntries returns ledger entries with no corresponding physical skill
// on disk.
func (l *Ledger) OrphanEntries(diskNames map[string]bool) []string {
	var orphans []string
	for name := range l.Skills {
		if !diskNames[name] {
			orphans = append(orphans, name)
		}
	}
	slices.Sort(orphans)
	return orphans
}

// DanglingReferences returns, per entry, the dependedBy references that
// point at names with no ledger entry at all. Keys and values are sorted.
func (l *Ledger) DanglingReferences() map[string][]string {
	dangling := make(map[string][]string)
	for name, entry := range l.Skills {
		for _, ref := range entry.DependedBy {
			if !l.HasSkill(ref) {
				dangling[name] = append(dangling[name], ref)
			}
		}
		slices.Sort(dangling[name])
	}
	for name, refs := range dangling {
		if len(refs) == 0 {
			delete(dangling, name)
		}
	}
	return dangling
}

// recordSkillInstall creates or overwrites the entry for name with a fresh
// timestamp and an empty dependedBy set.
func (l *Ledger) recordSkillInstall(name string, rec SkillRecord, now time.Time) {
	l.Skills[name] = &SkillEntry{
		Version:     rec.Version,
		Source:      rec.Source,
		InstalledBy: rec.InstalledBy,
		InstalledAt: now,
		DependedBy:  []string{},
	}
}

// removeSkill deletes the entry for name and prunes name from every
// remaining entry's dependedBy set, keeping the inverse-adjacency
// invariant intact.
func (l *Ledger) removeSkill(name string) {
	delete(l.Skills, name)
	for _, entry := range l.Skills {
		entry.DependedBy = without(entry.DependedBy, name)
	}
}

// addDependency appends dependent to dependency's dependedBy set. A
// duplicate add is a no-op.
func (l *Ledger) addDependency(dependent, dependency string) error {
	entry, ok := l.Skills[dependency]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDependencyNotFound, dependency)
	}
	if slices.Contains(entry.DependedBy, dependent) {
		return nil
	}
	entry.DependedBy = append(entry.DependedBy, dependent)
	slices.Sort(entry.DependedBy)
	return nil
}

// removeDependency is the inverse of addDependency; a no-op when the entry
// or the relation is absent.
func (l *Ledger) removeDependency(dependent, dependency string) {
	entry, ok := l.Skills[dependency]
	if !ok {
		return
	}
	entry.DependedBy = without(entry.DependedBy, dependent)
}

// cleanOrphanEntries removes every entry with no physical skill on disk and
// prunes the removed names out of every remaining entry's dependedBy set.
// Returns the removed names, sorted.
func (l *Ledger) cleanOrphanEntries(diskNames map[string]bool) []string {
	removed := l.OrphanEntries(diskNames)
	for _, name := range removed {
		delete(l.Skills, name)
	}
	for _, entry := range l.Skills {
		for _, name := range removed {
			entry.DependedBy = without(entry.DependedBy, name)
		}
	}
	return removed
}

// cleanDanglingReferences removes every dependedBy reference that points at
// a name with no ledger entry. Returns how many references were pruned.
func (l *Ledger) cleanDanglingReferences() int {
	pruned := 0
	for _, entry := range l.Skills {
		kept := entry.DependedBy[:0]
		for _, ref := range entry.DependedBy {
			if l.HasSkill(ref) {
				kept = append(kept, ref)
			} else {
				pruned++
			}
		}
		entry.DependedBy = kept
	}
	return pruned
}

func without(list []string, s string) []string {
	kept := list[:0]
	for _, v := range list {
		if v != s {
			kept = append(kept, v)
		}
	}
	return kept
}
