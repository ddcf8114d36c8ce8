// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Absent(t *testing.T) {
	t.Parallel()

	m, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("skills: [not a map"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "parsing manifest")
}

func TestAddSkill_CreatesManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, AddSkill(dir, "my-skill", "owner/my-skill"))

	m, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "owner/my-skill", m.Skills["my-skill"])
}

func TestAddSkill_Overwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, AddSkill(dir, "my-skill", "owner/my-skill"))
	require.NoError(t, AddSkill(dir, "my-skill", "oci://ghcr.io/org/my-skill:v2"))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "oci://ghcr.io/org/my-skill:v2", m.Skills["my-skill"])
	assert.Len(t, m.Skills, 1)
}

func TestRemoveSkill(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, AddSkill(dir, "my-skill", "owner/my-skill"))
	require.NoError(t, AddSkill(dir, "other", "owner/other"))

	require.NoError(t, RemoveSkill(dir, "my-skill"))

	m, err := Load(dir)
	require.NoError(t, err)
	assert.NotContains(t, m.Skills, "my-skill")
	assert.Contains(t, m.Skills, "other")
}

func TestRemoveSkill_NoOpWhenAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, RemoveSkill(dir, "never-added"), "no manifest at all")

	require.NoError(t, AddSkill(dir, "other", "owner/other"))
	require.NoError(t, RemoveSkill(dir, "never-added"), "manifest without the entry")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := &Manifest{
		Name: "my-project",
		Skills: map[string]string{
			"skill-a": "owner/skill-a",
			"skill-b": "oci://ghcr.io/org/skill-b:v1",
		},
	}
	require.NoError(t, Save(dir, in))

	out, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
