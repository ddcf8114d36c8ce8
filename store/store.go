// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"

	"github.com/stacklok/skillpkg/env"
	"github.com/stacklok/skillpkg/sources"
)

const (
	skillsDirName = "skills"
	skillFileName = "SKILL.md"

	dirPerm  = 0o750
	filePerm = 0o600
)

// Store provides access to the physical skill store: a directory tree of
// installed skills plus the store's own registry document.
type Store struct {
	root string
}

// New creates a store rooted at the given directory. The directory is
// created lazily on first write.
func New(root string) *Store {
	return &Store{root: root}
}

// StoreRoot returns the skill store root within the given data home
// directory. This is the injectable, testable form; for the standard
// location use DefaultRoot.
func StoreRoot(dataHome string) string {
	return filepath.Join(dataHome, "skillpkg")
}

// DefaultRoot returns the default store root. SKILLPKG_HOME overrides the
// XDG data home convention.
func DefaultRoot(envReader env.Reader) string {
	if home := envReader.Getenv("SKILLPKG_HOME"); home != "" {
		return home
	}
	return StoreRoot(xdg.DataHome)
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// SkillDir returns the directory holding the named skill's content.
func (s *Store) SkillDir(skillName string) string {
	return filepath.Join(s.root, skillsDirName, skillName)
}

// HasSkill reports whether the named skill is physically present.
func (s *Store) HasSkill(skillName string) bool {
	if sources.ValidateName(skillName) != nil {
		return false
	}
	info, err := os.Stat(s.SkillDir(skillName))
	return err == nil && info.IsDir()
}

// ListSkillNames returns the names of all physically present skills,
// sorted. An absent skills directory is an empty store, not an error.
func (s *Store) ListSkillNames() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, skillsDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing skills: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ReadSkillFile reads and parses the named skill's SKILL.md frontmatter.
func (s *Store) ReadSkillFile(skillName string) (*SkillFile, error) {
	if err := sources.ValidateName(skillName); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.SkillDir(skillName), skillFileName))
	if err != nil {
		return nil, fmt.Errorf("reading SKILL.md for %s: %w", skillName, err)
	}
	return ParseSkillFile(data)
}

// AddSkill writes a skill's content into the store. files maps relative
// paths to content and must include SKILL.md. An existing skill with the
// same name is replaced.
func (s *Store) AddSkill(skillName string, files map[string][]byte) error {
	if err := sources.ValidateName(skillName); err != nil {
		return err
	}
	if _, ok := files[skillFileName]; !ok {
		return fmt.Errorf("skill %s has no %s", skillName, skillFileName)
	}

	dir := s.SkillDir(skillName)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing skill directory: %w", err)
	}

	for rel, content := range files {
		clean := filepath.Clean(rel)
		if filepath.IsAbs(clean) || clean == ".." || len(clean) > 1 && clean[:2] == ".." {
			return fmt.Errorf("invalid skill file path %q", rel)
		}
		dst := filepath.Join(dir, clean)
		if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
			return fmt.Errorf("creating skill directory: %w", err)
		}
		if err := os.WriteFile(dst, content, filePerm); err != nil {
			return fmt.Errorf("writing %s: %w", rel, err)
		}
	}
	return nil
}

// RemoveSkill deletes the named skill's content. Returns false when the
// skill was not present.
func (s *Store) RemoveSkill(skillName string) (bool, error) {
	if err := sources.ValidateName(skillName); err != nil {
		return false, err
	}
	dir := s.SkillDir(skillName)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking skill directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("removing skill %s: %w", skillName, err)
	}
	return true, nil
}
