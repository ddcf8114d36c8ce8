// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package doctor

// IssueType classifies a consistency problem found by diagnosis.
type IssueType string

// Issue types, one per drift condition between the ledger, the physical
// store, the store registry, and the manifest.
const (
	// IssueLedgerWithoutDisk is a ledger entry with no physical skill.
	IssueLedgerWithoutDisk IssueType = "ledger-without-disk"

	// IssueRegistryWithoutDisk is a registry entry with no physical skill.
	IssueRegistryWithoutDisk IssueType = "registry-without-disk"

	// IssueDiskWithoutRegistry is a physical skill absent from the registry.
	IssueDiskWithoutRegistry IssueType = "disk-without-registry"

	// IssueInvalidName is a tracked name that fails name validation,
	// indicating an upstream identity-extraction bug.
	IssueInvalidName IssueType = "invalid-name"

	// IssueVersionMismatch is a skill whose ledger and registry versions
	// disagree.
	IssueVersionMismatch IssueType = "version-mismatch"

	// IssueMissingManifestEntry is a user-installed skill absent from the
	// manifest. Informational only; the manifest is never silently edited.
	IssueMissingManifestEntry IssueType = "missing-manifest-entry"

	// IssueDanglingDependency is a dependedBy reference to a skill with no
	// ledger entry.
	IssueDanglingDependency IssueType = "dangling-dependency"

	// IssueOrphanDependency is a dependency install that nothing requires
	// anymore.
	IssueOrphanDependency IssueType = "orphan-dependency"

	// IssueSyncOutdated is a skill whose last sync predates its install.
	// Only evaluated during a resync pass.
	IssueSyncOutdated IssueType = "sync-outdated"
)

// Severity grades an issue.
type Severity string

// Issue severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is one consistency problem. Issues are ephemeral diagnosis output
// and are never persisted.
type Issue struct {
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	SkillName   string    `json:"skillName"`
	Message     string    `json:"message"`
	Suggestion  string    `json:"suggestion,omitempty"`
	AutoFixable bool      `json:"autoFixable"`
}

// Stats counts the four views of the world compared by diagnosis.
type Stats struct {
	LedgerCount   int `json:"ledgerCount"`
	RegistryCount int `json:"registryCount"`
	DiskCount     int `json:"diskCount"`
	SyncedCount   int `json:"syncedCount"`
}

// DiagnosisResult is the output of one diagnosis pass.
type DiagnosisResult struct {
	// Healthy is true iff no issue has error severity.
	Healthy bool    `json:"healthy"`
	Issues  []Issue `json:"issues"`
	Stats   Stats   `json:"stats"`
}

// errorCount returns how many issues carry error severity.
func errorCount(issues []Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}
