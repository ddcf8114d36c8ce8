// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxFrontmatterSize limits frontmatter to prevent YAML parsing attacks.
const maxFrontmatterSize = 64 * 1024

// SkillFile is the parsed YAML frontmatter of a SKILL.md file.
type SkillFile struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description"`
	Version      string            `yaml:"version,omitempty"`
	Dependencies SkillFileDeps     `yaml:"dependencies,omitempty"`
	AllowedTools stringOrSlice     `yaml:"allowed-tools,omitempty"`
	License      string            `yaml:"license,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
}

// SkillFileDeps declares what a skill requires.
type SkillFileDeps struct {
	// Skills are source locators of other skills.
	Skills []string `yaml:"skills,omitempty"`

	// Tools are external tool names, surfaced but never auto-installed.
	Tools stringOrSlice `yaml:"tools,omitempty"`
}

// stringOrSlice is a YAML type that can unmarshal from a string or a sequence.
type stringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *stringOrSlice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		str := value.Value
		if str == "" {
			*s = nil
			return nil
		}
		var parts []string
		if strings.Contains(str, ",") {
			parts = strings.Split(str, ",")
		} else {
			parts = strings.Fields(str)
		}
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		*s = result
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := value.Decode(&arr); err != nil {
			return fmt.Errorf("decoding list: %w", err)
		}
		*s = arr
		return nil
	case yaml.DocumentNode, yaml.MappingNode, yaml.AliasNode:
		return fmt.Errorf("expected string or array, got unsupported YAML node type")
	}
	return fmt.Errorf("unexpected YAML node kind %d", value.Kind)
}

// ParseSkillFile extracts and parses the YAML frontmatter from SKILL.md
// content. The frontmatter must open the file between "---" delimiters and
// carry a non-empty name.
func ParseSkillFile(content []byte) (*SkillFile, error) {
	content = bytes.TrimSpace(content)

	delimiter := []byte("---")
	if !bytes.HasPrefix(content, delimiter) {
		return nil, fmt.Errorf("SKILL.md must start with YAML frontmatter (---)")
	}

	rest := content[len(delimiter):]
	rest = bytes.TrimPrefix(rest, []byte("\n"))

	endIdx := bytes.Index(rest, delimiter)
	if endIdx == -1 {
		return nil, fmt.Errorf("SKILL.md frontmatter missing closing delimiter (---)")
	}

	fmBytes := rest[:endIdx]
	if len(fmBytes) > maxFrontmatterSize {
		return nil, fmt.Errorf("frontmatter exceeds maximum size of %d bytes", maxFrontmatterSize)
	}

	var sf SkillFile
	if err := yaml.Unmarshal(fmBytes, &sf); err != nil {
		return nil, fmt.Errorf("parsing frontmatter YAML: %w", err)
	}
	if sf.Name == "" {
		return nil, fmt.Errorf("skill name is required in SKILL.md frontmatter")
	}

	return &sf, nil
}
