// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"slices"
	"time"

	"github.com/stacklok/skillpkg/manifest"
	"github.com/stacklok/skillpkg/sources"
	"github.com/stacklok/skillpkg/state"
	"github.com/stacklok/skillpkg/store"
)

// Doctor reconciles the four views of installation state: the ledger, the
// physical skill store, the store registry, and the user manifest. It never
// edits any document by hand; every repair goes through the owning
// component's own operations so their persistence invariants hold.
type Doctor struct {
	ledger      *state.Store
	skills      *store.Store
	projectPath string

	now func() time.Time
}

// New creates a doctor for the project at projectPath.
// Panics if ledger or skills is nil.
func New(ledger *state.Store, skills *store.Store, projectPath string) *Doctor {
	if ledger == nil {
		panic("doctor: New called with nil ledger store")
	}
	if skills == nil {
		panic("doctor: New called with nil skill store")
	}
	return &Doctor{
		ledger:      ledger,
		skills:      skills,
		projectPath: projectPath,
		now:         time.Now,
	}
}

// DiagnoseOptions configures a diagnosis pass.
type DiagnoseOptions struct {
	// Resync enables the sync-outdated check, which is skipped by default.
	Resync bool
}

// Diagnose compares the ledger, the physical store, the store registry, and
// the manifest, and reports every drift condition found. It is read-only
// and deterministic: the same state always yields the same issue list.
func (d *Doctor) Diagnose(opts DiagnoseOptions) (*DiagnosisResult, error) {
	ledger := d.ledger.Load()

	diskNames, err := d.skills.ListSkillNames()
	if err != nil {
		return nil, fmt.Errorf("listing physical skills: %w", err)
	}
	diskSet := toSet(diskNames)

	registry := d.skills.LoadRegistry()

	mf, err := manifest.Load(d.projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}

	var issues []Issue

	// Ledger entries with no physical skill.
	for _, name := range ledger.OrphanEntries(diskSet) {
		issues = append(issues, Issue{
			Type:        IssueLedgerWithoutDisk,
			Severity:    SeverityError,
			SkillName:   name,
			Message:     fmt.Sprintf("skill %q is tracked in the state ledger but has no files on disk", name),
			Suggestion:  "run repair to remove the stale ledger entry",
			AutoFixable: true,
		})
	}

	// Registry entries with no physical skill.
	for _, name := range sortedKeys(registry.Skills) {
		if !diskSet[name] {
			issues = append(issues, Issue{
				Type:        IssueRegistryWithoutDisk,
				Severity:    SeverityError,
				SkillName:   name,
				Message:     fmt.Sprintf("skill %q is tracked in the store registry but has no files on disk", name),
				Suggestion:  "run repair to remove the stale registry entry",
				AutoFixable: true,
			})
		}
	}

	// Physical skills absent from the registry.
	for _, name := range diskNames {
		if _, ok := registry.Skills[name]; !ok {
			issues = append(issues, Issue{
				Type:        IssueDiskWithoutRegistry,
				Severity:    SeverityWarning,
				SkillName:   name,
				Message:     fmt.Sprintf("skill %q exists on disk but is missing from the store registry", name),
				Suggestion:  "run repair to rebuild the registry entry from the skill's SKILL.md",
				AutoFixable: true,
			})
		}
	}

	// Tracked names that fail validation.
	for _, name := range invalidNames(ledger, registry) {
		issues = append(issues, Issue{
			Type:        IssueInvalidName,
			Severity:    SeverityError,
			SkillName:   name,
			Message:     fmt.Sprintf("tracked skill name %q is invalid", name),
			Suggestion:  "run repair to remove the invalid entry",
			AutoFixable: true,
		})
	}

	// Version disagreements between ledger and registry.
	for _, name := range ledger.SkillNames() {
		regEntry, ok := registry.Skills[name]
		if !ok {
			continue
		}
		ledgerVersion := ledger.Skills[name].Version
		if regEntry.Version != "" && ledgerVersion != regEntry.Version {
			issues = append(issues, Issue{
				Type:      IssueVersionMismatch,
				Severity:  SeverityWarning,
				SkillName: name,
				Message: fmt.Sprintf(
					"skill %q has version %q in the ledger but %q in the registry",
					name, ledgerVersion, regEntry.Version,
				),
				Suggestion:  "run repair to sync the ledger version from the registry",
				AutoFixable: true,
			})
		}
	}

	// User-installed skills absent from the manifest.
	for _, name := range ledger.SkillNames() {
		entry := ledger.Skills[name]
		if !entry.InstalledBy.IsUser() {
			continue
		}
		if mf == nil || mf.Skills[name] == "" {
			issues = append(issues, Issue{
				Type:        IssueMissingManifestEntry,
				Severity:    SeverityInfo,
				SkillName:   name,
				Message:     fmt.Sprintf("user-installed skill %q is not declared in %s", name, manifest.FileName),
				Suggestion:  fmt.Sprintf("add %q to the manifest to make the install reproducible", name),
				AutoFixable: false,
			})
		}
	}

	// dependedBy references to skills with no ledger entry.
	dangling := ledger.DanglingReferences()
	for _, name := range sortedKeys(dangling) {
		issues = append(issues, Issue{
			Type:      IssueDanglingDependency,
			Severity:  SeverityWarning,
			SkillName: name,
			Message: fmt.Sprintf(
				"skill %q is marked as depended on by nonexistent skills: %v",
				name, dangling[name],
			),
			Suggestion:  "run repair to prune the dangling references",
			AutoFixable: true,
		})
	}

	// Dependency installs nothing requires anymore.
	for _, name := range ledger.OrphanDependencies() {
		issues = append(issues, Issue{
			Type:        IssueOrphanDependency,
			Severity:    SeverityWarning,
			SkillName:   name,
			Message:     fmt.Sprintf("skill %q was installed as a dependency but nothing requires it anymore", name),
			Suggestion:  "run repair with orphan removal enabled to reclaim it",
			AutoFixable: true,
		})
	}

	// Sync staleness, only under a resync pass.
	if opts.Resync {
		for _, name := range outdatedSyncs(ledger) {
			issues = append(issues, Issue{
				Type:        IssueSyncOutdated,
				Severity:    SeverityWarning,
				SkillName:   name,
				Message:     fmt.Sprintf("skill %q was reinstalled after its last sync", name),
				Suggestion:  "run repair with resync enabled to refresh the sync record",
				AutoFixable: true,
			})
		}
	}

	return &DiagnosisResult{
		Healthy: errorCount(issues) == 0,
		Issues:  issues,
		Stats: Stats{
			LedgerCount:   len(ledger.Skills),
			RegistryCount: len(registry.Skills),
			DiskCount:     len(diskNames),
			SyncedCount:   len(ledger.Skills) - len(outdatedSyncs(ledger)) - len(neverSynced(ledger)),
		},
	}, nil
}

// invalidNames returns every tracked name, from ledger or registry, that
// fails name validation. Sorted, deduplicated.
func invalidNames(ledger *state.Ledger, registry *store.Registry) []string {
	seen := make(map[string]bool)
	var invalid []string
	check := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		if err := sources.ValidateName(name); err != nil {
			invalid = append(invalid, name)
		}
	}
	for name := range ledger.Skills {
		check(name)
	}
	for name := range registry.Skills {
		check(name)
	}
	slices.Sort(invalid)
	return invalid
}

// outdatedSyncs returns ledger skills whose sync record predates their
// install time. Sorted.
func outdatedSyncs(ledger *state.Ledger) []string {
	var outdated []string
	for name, entry := range ledger.Skills {
		syncedAt, ok := ledger.SyncHistory[name]
		if ok && syncedAt.Before(entry.InstalledAt) {
			outdated = append(outdated, name)
		}
	}
	slices.Sort(outdated)
	return outdated
}

// neverSynced returns ledger skills with no sync record at all.
func neverSynced(ledger *state.Ledger) []string {
	var missing []string
	for name := range ledger.Skills {
		if _, ok := ledger.SyncHistory[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
