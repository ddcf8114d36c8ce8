// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"

	"github.com/stacklok/skillpkg/logger"
	"github.com/stacklok/skillpkg/store"
)

// RepairOptions configures a repair pass.
type RepairOptions struct {
	// AutoOnly restricts repair to auto-fixable issues. Issues that are not
	// auto-fixable are never repaired regardless of this flag; they are only
	// ever reported.
	AutoOnly bool

	// DryRun computes the action list without performing any writes.
	DryRun bool

	// RemoveOrphans permits removal of orphaned dependency installs,
	// including their on-disk content.
	RemoveOrphans bool

	// Resync enables the sync-outdated check and refreshes stale sync
	// records.
	Resync bool
}

// RepairResult reports what a repair pass did, or in dry-run mode, what it
// would do.
type RepairResult struct {
	// Actions describes each repair, one entry per issue addressed.
	Actions []string

	// Errors collects per-issue repair failures. A failed repair never
	// aborts the remaining repairs.
	Errors []error

	IssuesFixed     int
	IssuesRemaining int
}

// Repair diagnoses the project and fixes every issue it is permitted to
// touch, preferring the batch ledger and registry operations over per-issue
// edits because the batch paths already maintain the adjacency invariants.
// Repair is idempotent: a second invocation with the same options finds
// nothing left to do.
func (d *Doctor) Repair(opts RepairOptions) (*RepairResult, error) {
	diag, err := d.Diagnose(DiagnoseOptions{Resync: opts.Resync})
	if err != nil {
		return nil, err
	}

	result := &RepairResult{}

	var planned []Issue
	for _, issue := range diag.Issues {
		if !permitted(issue, opts) {
			continue
		}
		planned = append(planned, issue)
		result.Actions = append(result.Actions, actionFor(issue))
	}

	if opts.DryRun {
		result.IssuesFixed = len(planned)
		result.IssuesRemaining = len(diag.Issues) - len(planned)
		return result, nil
	}

	d.execute(planned, opts, result)

	after, err := d.Diagnose(DiagnoseOptions{Resync: opts.Resync})
	if err != nil {
		return nil, fmt.Errorf("re-diagnosing after repair: %w", err)
	}
	result.IssuesRemaining = len(after.Issues)
	result.IssuesFixed = len(diag.Issues) - len(after.Issues)
	if result.IssuesFixed < 0 {
		result.IssuesFixed = 0
	}

	return result, nil
}

// permitted reports whether repair may touch the issue under the options.
func permitted(issue Issue, opts RepairOptions) bool {
	if !issue.AutoFixable {
		return false
	}
	switch issue.Type {
	case IssueOrphanDependency:
		return opts.RemoveOrphans
	case IssueSyncOutdated:
		return opts.Resync
	default:
		return true
	}
}

// actionFor renders the repair description for an issue.
func actionFor(issue Issue) string {
	switch issue.Type {
	case IssueLedgerWithoutDisk:
		return fmt.Sprintf("remove ledger entry for %q", issue.SkillName)
	case IssueRegistryWithoutDisk:
		return fmt.Sprintf("remove registry entry for %q", issue.SkillName)
	case IssueDiskWithoutRegistry:
		return fmt.Sprintf("rebuild registry entry for %q", issue.SkillName)
	case IssueInvalidName:
		return fmt.Sprintf("remove invalid entry %q", issue.SkillName)
	case IssueVersionMismatch:
		return fmt.Sprintf("sync ledger version for %q from registry", issue.SkillName)
	case IssueDanglingDependency:
		return fmt.Sprintf("prune dangling dependency references on %q", issue.SkillName)
	case IssueOrphanDependency:
		return fmt.Sprintf("remove orphaned dependency %q", issue.SkillName)
	case IssueSyncOutdated:
		return fmt.Sprintf("refresh sync record for %q", issue.SkillName)
	default:
		return fmt.Sprintf("fix %s for %q", issue.Type, issue.SkillName)
	}
}

// execute performs the planned repairs. Steps are ordered so that disk
// removals happen before the ledger and registry are reconciled against the
// disk, and reference pruning runs last.
func (d *Doctor) execute(planned []Issue, opts RepairOptions, result *RepairResult) {
	byType := make(map[IssueType][]Issue)
	for _, issue := range planned {
		byType[issue.Type] = append(byType[issue.Type], issue)
	}

	fail := func(err error) {
		logger.Warnf("repair: %v", err)
		result.Errors = append(result.Errors, err)
	}

	// Invalid entries are deleted wherever they are tracked.
	if issues := byType[IssueInvalidName]; len(issues) > 0 {
		d.removeInvalidEntries(issues, fail)
	}

	// Ledger versions are synced up from the registry.
	if issues := byType[IssueVersionMismatch]; len(issues) > 0 {
		registry := d.skills.LoadRegistry()
		for _, issue := range issues {
			entry, ok := registry.Skills[issue.SkillName]
			if !ok {
				continue
			}
			if err := d.ledger.UpdateSkillVersion(issue.SkillName, entry.Version); err != nil {
				fail(fmt.Errorf("syncing version for %q: %w", issue.SkillName, err))
			}
		}
	}

	// Orphaned dependencies lose their content and their ledger entry; the
	// registry catches up in the disk reconciliation below.
	orphansRemoved := false
	for _, issue := range byType[IssueOrphanDependency] {
		if _, err := d.skills.RemoveSkill(issue.SkillName); err != nil {
			fail(fmt.Errorf("removing orphan %q from store: %w", issue.SkillName, err))
			continue
		}
		if err := d.ledger.RecordSkillUninstall(issue.SkillName); err != nil {
			fail(fmt.Errorf("removing orphan %q from ledger: %w", issue.SkillName, err))
			continue
		}
		orphansRemoved = true
	}

	// Reconcile the ledger against the disk in one batch; the batch path
	// also prunes the removed names out of every dependedBy set.
	if len(byType[IssueLedgerWithoutDisk]) > 0 {
		diskNames, err := d.skills.ListSkillNames()
		if err != nil {
			fail(fmt.Errorf("listing physical skills: %w", err))
		} else if _, err := d.ledger.CleanOrphanLedgerEntries(diskNames); err != nil {
			fail(fmt.Errorf("cleaning stale ledger entries: %w", err))
		}
	}

	// Reconcile the registry against the disk.
	if len(byType[IssueRegistryWithoutDisk]) > 0 || orphansRemoved {
		if _, err := d.skills.CleanOrphanRegistryEntries(); err != nil {
			fail(fmt.Errorf("cleaning stale registry entries: %w", err))
		}
	}

	// Rebuild missing registry entries from on-disk frontmatter.
	if issues := byType[IssueDiskWithoutRegistry]; len(issues) > 0 {
		d.rebuildRegistryEntries(issues, fail)
	}

	// Prune dependedBy references to nonexistent skills.
	if len(byType[IssueDanglingDependency]) > 0 {
		if _, err := d.ledger.CleanDanglingReferences(); err != nil {
			fail(fmt.Errorf("pruning dangling references: %w", err))
		}
	}

	if opts.Resync {
		for _, issue := range byType[IssueSyncOutdated] {
			if err := d.ledger.RecordSync(issue.SkillName); err != nil {
				fail(fmt.Errorf("refreshing sync record for %q: %w", issue.SkillName, err))
			}
		}
	}
}

// removeInvalidEntries deletes invalidly named entries from the ledger and
// the registry.
func (d *Doctor) removeInvalidEntries(issues []Issue, fail func(error)) {
	registry := d.skills.LoadRegistry()
	registryDirty := false

	for _, issue := range issues {
		if err := d.ledger.RecordSkillUninstall(issue.SkillName); err != nil {
			fail(fmt.Errorf("removing invalid ledger entry %q: %w", issue.SkillName, err))
		}
		if _, ok := registry.Skills[issue.SkillName]; ok {
			delete(registry.Skills, issue.SkillName)
			registryDirty = true
		}
	}

	if registryDirty {
		if err := d.skills.SaveRegistry(registry); err != nil {
			fail(fmt.Errorf("saving registry: %w", err))
		}
	}
}

// rebuildRegistryEntries recreates registry entries for physical skills
// from their SKILL.md frontmatter.
func (d *Doctor) rebuildRegistryEntries(issues []Issue, fail func(error)) {
	registry := d.skills.LoadRegistry()
	registryDirty := false

	for _, issue := range issues {
		skillFile, err := d.skills.ReadSkillFile(issue.SkillName)
		if err != nil {
			fail(fmt.Errorf("reading SKILL.md for %q: %w", issue.SkillName, err))
			continue
		}
		registry.Skills[issue.SkillName] = &store.RegistryEntry{
			Version:     skillFile.Version,
			Description: skillFile.Description,
			InstalledAt: d.now().UTC(),
		}
		registryDirty = true
	}

	if registryDirty {
		if err := d.skills.SaveRegistry(registry); err != nil {
			fail(fmt.Errorf("saving registry: %w", err))
		}
	}
}
