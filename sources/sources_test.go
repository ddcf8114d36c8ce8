// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   SourceKind
	}{
		{"oci prefix", "oci://ghcr.io/org/my-skill:v1", KindOCI},
		{"gist prefix", "gist:abc123def", KindGist},
		{"gist url", "https://gist.github.com/user/abc123def", KindGist},
		{"github prefix", "github:owner/repo", KindGitHub},
		{"github shorthand", "owner/repo", KindGitHub},
		{"plain url", "https://example.com/skills/my-skill", KindURL},
		{"archive url", "https://example.com/my-skill.tar.gz", KindArchive},
		{"local archive", "./downloads/my-skill.zip", KindArchive},
		{"relative path", "./skills/my-skill", KindLocal},
		{"parent path", "../my-skill", KindLocal},
		{"absolute path", "/home/user/skills/my-skill", KindLocal},
		{"bare name", "my-skill", KindLocal},
		{"deep path is not shorthand", "a/b/c", KindLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Kind(tt.source))
		})
	}
}

func TestSkillNameFromSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"github shorthand", "owner/my-skill", "my-skill"},
		{"github prefix", "github:owner/my-skill", "my-skill"},
		{"github with git suffix", "owner/my-skill.git", "my-skill"},
		{"gist id", "gist:abc123def", "abc123def"},
		{"gist url", "https://gist.github.com/user/abc123def", "abc123def"},
		{"plain url", "https://example.com/skills/my-skill", "my-skill"},
		{"archive url", "https://example.com/dist/my-skill.tar.gz", "my-skill"},
		{"zip url", "https://example.com/dist/my-skill.zip", "my-skill"},
		{"oci ref with tag", "oci://ghcr.io/org/my-skill:v1.0.0", "my-skill"},
		{"oci ref with digest", "oci://ghcr.io/org/my-skill@sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", "my-skill"},
		{"oci ref nested repo", "oci://ghcr.io/org/team/my-skill:latest", "my-skill"},
		{"local relative", "./skills/my-skill", "my-skill"},
		{"local absolute", "/home/user/skills/my-skill", "my-skill"},
		{"local trailing slash", "./skills/my-skill/", "my-skill"},
		{"local archive", "./downloads/my-skill.tgz", "my-skill"},
		{"bare name", "my-skill", "my-skill"},
		{"whitespace trimmed", "  owner/my-skill  ", "my-skill"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SkillNameFromSource(tt.source))
		})
	}
}

func TestSkillNameFromSource_SameNameSameSkill(t *testing.T) {
	t.Parallel()

	// Two different locators for the same skill normalize identically.
	a := SkillNameFromSource("owner/my-skill")
	b := SkillNameFromSource("https://example.com/dist/my-skill.tar.gz")
	assert.Equal(t, a, b)
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		skill   string
		wantErr string
	}{
		{"valid", "my-skill", ""},
		{"valid with dots", "my.skill.v2", ""},
		{"empty", "", "cannot be empty"},
		{"forward slash", "org/skill", "path separator"},
		{"backslash", `org\skill`, "path separator"},
		{"dot", ".", "invalid skill name"},
		{"dotdot", "..", "invalid skill name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tt.skill)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHostedURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid https", "https://example.com/skills/my-skill", false},
		{"valid http", "http://example.com/my-skill", false},
		{"empty", "", true},
		{"no scheme", "example.com/my-skill", true},
		{"ftp scheme", "ftp://example.com/my-skill", true},
		{"no host", "https:///my-skill", true},
		{"fragment", "https://example.com/my-skill#frag", true},
		{"crlf injection", "https://example.com/my-skill\r\nX-Evil: 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateHostedURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
