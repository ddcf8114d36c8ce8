// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestLoad_AbsentFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ledger := s.Load()

	assert.Equal(t, SchemaVersion, ledger.SchemaVersion)
	assert.Empty(t, ledger.Skills)
	assert.False(t, ledger.Recovered, "an absent file is not a recovery")
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o750))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	ledger := s.Load()
	assert.Empty(t, ledger.Skills, "corruption degrades to an empty ledger")
	assert.True(t, ledger.Recovered)
}

func TestLoad_UnrecognizedSchema(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o750))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"schemaVersion":"something-else","skills":{"x":{}}}`), 0o600))

	ledger := s.Load()
	assert.Empty(t, ledger.Skills)
	assert.True(t, ledger.Recovered)
}

func TestSaveLoad_RoundTripIsByteIdentical(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{Version: "1.0.0", Source: "owner/skill-b", InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{Version: "2.0.0", Source: "owner/skill-a", InstalledBy: BySkill("skill-b")}))
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))

	first, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	// save(load(p)) applied twice with no mutation in between.
	require.NoError(t, s.Save(s.Load()))
	second, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NoError(t, s.Save(s.Load()))
	third, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, second, third)
}

func TestRecordSkillInstall(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{Version: "1.0.0", Source: "owner/skill-a", InstalledBy: ByUser()}))

	ledger := s.Load()
	entry := ledger.Skills["skill-a"]
	require.NotNil(t, entry)
	assert.Equal(t, "1.0.0", entry.Version)
	assert.Equal(t, "owner/skill-a", entry.Source)
	assert.True(t, entry.InstalledBy.IsUser())
	assert.False(t, entry.InstalledAt.IsZero())
	assert.NotNil(t, entry.DependedBy)
	assert.Empty(t, entry.DependedBy)
}

func TestRecordSkillInstall_RejectsInvalidName(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.RecordSkillInstall("bad/name", SkillRecord{InstalledBy: ByUser()})
	assert.ErrorContains(t, err, "path separator")
}

func TestRecordSkillInstall_OverwriteResetsDependedBy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{Version: "1.0.0", InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{Version: "1.0.0", InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))

	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{Version: "2.0.0", InstalledBy: ByUser()}))

	entry := s.Load().Skills["skill-a"]
	assert.Equal(t, "2.0.0", entry.Version)
	assert.Empty(t, entry.DependedBy)
}

func TestAddDependency(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: BySkill("skill-b")}))
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{InstalledBy: ByUser()}))

	require.NoError(t, s.AddDependency("skill-b", "skill-a"))
	assert.Equal(t, []string{"skill-b"}, s.Load().Skills["skill-a"].DependedBy)

	// Duplicate add is a no-op.
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))
	assert.Equal(t, []string{"skill-b"}, s.Load().Skills["skill-a"].DependedBy)
}

func TestAddDependency_MissingTarget(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.AddDependency("skill-b", "skill-a")
	assert.ErrorIs(t, err, ErrDependencyNotFound)
}

func TestRemoveDependency(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))

	require.NoError(t, s.RemoveDependency("skill-b", "skill-a"))
	assert.Empty(t, s.Load().Skills["skill-a"].DependedBy)

	// Absent entry and absent relation are both no-ops.
	require.NoError(t, s.RemoveDependency("skill-b", "skill-a"))
	require.NoError(t, s.RemoveDependency("skill-b", "no-such-skill"))
}

func TestCanUninstall(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: BySkill("skill-b")}))
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))

	ok, dependents := s.CanUninstall("skill-a")
	assert.False(t, ok)
	assert.Equal(t, []string{"skill-b"}, dependents)

	ok, dependents = s.CanUninstall("skill-b")
	assert.True(t, ok)
	assert.Empty(t, dependents)

	ok, _ = s.CanUninstall("not-installed")
	assert.True(t, ok)
}

func TestRecordSkillUninstall_PrunesDependedBy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: BySkill("skill-b")}))
	require.NoError(t, s.RecordSkillInstall("skill-b", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("skill-c", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("skill-b", "skill-a"))
	require.NoError(t, s.AddDependency("skill-c", "skill-a"))

	require.NoError(t, s.RecordSkillUninstall("skill-b"))

	ledger := s.Load()
	assert.False(t, ledger.HasSkill("skill-b"))
	for name, entry := range ledger.Skills {
		assert.NotContains(t, entry.DependedBy, "skill-b", "entry %s still references the removed skill", name)
	}
	assert.Equal(t, []string{"skill-c"}, ledger.Skills["skill-a"].DependedBy)
}

func TestOrphanDependencies_OneHop(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	// skill-a was installed by skill-b; skill-b is gone; nothing depends on skill-a.
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: BySkill("skill-b")}))
	// user-installed skills are never orphans.
	require.NoError(t, s.RecordSkillInstall("skill-u", SkillRecord{InstalledBy: ByUser()}))
	// still depended on: not an orphan even though its installer is gone.
	require.NoError(t, s.RecordSkillInstall("skill-d", SkillRecord{InstalledBy: BySkill("skill-gone")}))
	require.NoError(t, s.AddDependency("skill-u", "skill-d"))
	// installer still present: not an orphan.
	require.NoError(t, s.RecordSkillInstall("skill-k", SkillRecord{InstalledBy: BySkill("skill-u")}))

	assert.Equal(t, []string{"skill-a"}, s.OrphanDependencies())
}

func TestOrphanLedgerEntries(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("on-disk", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("ghost", SkillRecord{InstalledBy: ByUser()}))

	assert.Equal(t, []string{"ghost"}, s.OrphanLedgerEntries([]string{"on-disk"}))
}

func TestCleanOrphanLedgerEntries_PrunesReferences(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("keep", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("dep", SkillRecord{InstalledBy: BySkill("ghost")}))
	require.NoError(t, s.RecordSkillInstall("ghost", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("ghost", "dep"))

	removed, err := s.CleanOrphanLedgerEntries([]string{"keep", "dep"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, removed)

	ledger := s.Load()
	assert.False(t, ledger.HasSkill("ghost"))
	assert.Empty(t, ledger.Skills["dep"].DependedBy, "references to removed entries are pruned transitively")
}

func TestCleanDanglingReferences(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSkillInstall("skill-a", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.RecordSkillInstall("helper", SkillRecord{InstalledBy: ByUser()}))
	require.NoError(t, s.AddDependency("helper", "skill-a"))

	// Simulate an external edit leaving a reference behind.
	ledger := s.Load()
	ledger.Skills["skill-a"].DependedBy = append(ledger.Skills["skill-a"].DependedBy, "never-installed")
	require.NoError(t, s.Save(ledger))

	pruned, err := s.CleanDanglingReferences()
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)
	assert.Equal(t, []string{"helper"}, s.Load().Skills["skill-a"].DependedBy)

	// Converged: a second pass prunes nothing.
	pruned, err = s.CleanDanglingReferences()
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestRecordToolInstall(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordToolInstall("ripgrep", "ripgrep", "skill-a"))
	require.NoError(t, s.RecordToolInstall("standalone", "pkg:standalone", ""))

	ledger := s.Load()
	require.NotNil(t, ledger.Tools["ripgrep"].InstalledBySkill)
	assert.Equal(t, "skill-a", *ledger.Tools["ripgrep"].InstalledBySkill)
	assert.Nil(t, ledger.Tools["standalone"].InstalledBySkill)
}

func TestRecordSync(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.RecordSync("claude"))

	ledger := s.Load()
	assert.False(t, ledger.SyncHistory["claude"].IsZero())
}
