// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillFile(t *testing.T) {
	t.Parallel()

	sf, err := ParseSkillFile([]byte(`---
name: my-skill
description: Does things
version: 1.2.3
license: Apache-2.0
allowed-tools: Bash, Read
dependencies:
  skills:
    - owner/helper
    - oci://ghcr.io/org/other:v1
  tools: ripgrep jq
metadata:
  category: testing
---

# Body
`))
	require.NoError(t, err)
	assert.Equal(t, "my-skill", sf.Name)
	assert.Equal(t, "Does things", sf.Description)
	assert.Equal(t, "1.2.3", sf.Version)
	assert.Equal(t, "Apache-2.0", sf.License)
	assert.Equal(t, []string{"Bash", "Read"}, []string(sf.AllowedTools))
	assert.Equal(t, []string{"owner/helper", "oci://ghcr.io/org/other:v1"}, sf.Dependencies.Skills)
	assert.Equal(t, []string{"ripgrep", "jq"}, []string(sf.Dependencies.Tools))
	assert.Equal(t, "testing", sf.Metadata["category"])
}

func TestParseSkillFile_ToolsAsSequence(t *testing.T) {
	t.Parallel()

	sf, err := ParseSkillFile([]byte(`---
name: my-skill
dependencies:
  tools:
    - ripgrep
    - jq
---
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"ripgrep", "jq"}, []string(sf.Dependencies.Tools))
}

func TestParseSkillFile_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no frontmatter", "# Just markdown\n", "must start with YAML frontmatter"},
		{"unclosed frontmatter", "---\nname: x\n", "missing closing delimiter"},
		{"missing name", "---\ndescription: x\n---\n", "name is required"},
		{"bad yaml", "---\nname: [unclosed\n---\n", "parsing frontmatter YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSkillFile([]byte(tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParseSkillFile_OversizedFrontmatter(t *testing.T) {
	t.Parallel()

	content := "---\nname: my-skill\ndescription: " + strings.Repeat("x", maxFrontmatterSize) + "\n---\n"
	_, err := ParseSkillFile([]byte(content))
	assert.ErrorContains(t, err, "exceeds maximum size")
}
