// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest file name at the project root.
const FileName = "skillpkg.yaml"

const filePerm = 0o600

// Manifest is the user's declared skill list for a project. It records what
// the user asked for, by name and source locator; transitively installed
// dependencies never appear here.
type Manifest struct {
	Name   string            `yaml:"name,omitempty"`
	Skills map[string]string `yaml:"skills,omitempty"`
}

// Path returns the manifest path for a project.
func Path(projectPath string) string {
	return filepath.Join(projectPath, FileName)
}

// Load reads the project manifest. An absent manifest is (nil, nil), not an
// error: a project without a manifest simply has no declared skills.
func Load(projectPath string) (*Manifest, error) {
	data, err := os.ReadFile(Path(projectPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Save persists the manifest atomically (temp file + rename).
func Save(projectPath string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}

	dir := projectPath
	tmp, err := os.CreateTemp(dir, ".skillpkg-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp manifest file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp manifest file: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting manifest permissions: %w", err)
	}
	if err := os.Rename(tmpName, Path(projectPath)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

// AddSkill records a skill in the manifest, creating the manifest when
// absent.
func AddSkill(projectPath, skillName, source string) error {
	m, err := Load(projectPath)
	if err != nil {
		return err
	}
	if m == nil {
		m = &Manifest{}
	}
	if m.Skills == nil {
		m.Skills = make(map[string]string)
	}
	m.Skills[skillName] = source
	return Save(projectPath, m)
}

// RemoveSkill removes a skill from the manifest. A no-op when the manifest
// or the entry is absent.
func RemoveSkill(projectPath, skillName string) error {
	m, err := Load(projectPath)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	if _, ok := m.Skills[skillName]; !ok {
		return nil
	}
	delete(m.Skills, skillName)
	return Save(projectPath, m)
}
