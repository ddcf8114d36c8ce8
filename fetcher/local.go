// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stacklok/skillpkg/resolver"
	"github.com/stacklok/skillpkg/store"
)

// Local fetches skills from filesystem directories. The source locator is
// the path of a directory containing a SKILL.md file.
type Local struct{}

// NewLocal creates a filesystem fetcher.
func NewLocal() *Local {
	return &Local{}
}

// FetchMetadata implements resolver.Fetcher. A missing directory or a
// directory without SKILL.md reports "not found" rather than an error.
func (*Local) FetchMetadata(_ context.Context, source string) (*resolver.SkillMetadata, error) {
	skillFile, err := readLocalSkillFile(source)
	if err != nil || skillFile == nil {
		return nil, err
	}
	return metadataFromSkillFile(skillFile), nil
}

// FetchSkill implements ContentFetcher.
func (*Local) FetchSkill(_ context.Context, source string) (*Skill, error) {
	skillFile, err := readLocalSkillFile(source)
	if err != nil || skillFile == nil {
		return nil, err
	}

	files, err := collectFiles(filepath.Clean(source))
	if err != nil {
		return nil, fmt.Errorf("reading skill directory: %w", err)
	}

	return &Skill{
		Metadata: *metadataFromSkillFile(skillFile),
		Files:    files,
	}, nil
}

// readLocalSkillFile parses <source>/SKILL.md. Returns nil, nil when the
// directory or file does not exist.
func readLocalSkillFile(source string) (*store.SkillFile, error) {
	dir := filepath.Clean(source)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("accessing skill directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	content, err := os.ReadFile(filepath.Join(dir, "SKILL.md")) //#nosec G304 -- path constructed from user-provided skill directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading SKILL.md: %w", err)
	}

	skillFile, err := store.ParseSkillFile(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(dir, "SKILL.md"), err)
	}
	return skillFile, nil
}

// metadataFromSkillFile maps parsed frontmatter to resolver metadata.
func metadataFromSkillFile(skillFile *store.SkillFile) *resolver.SkillMetadata {
	return &resolver.SkillMetadata{
		Name:    skillFile.Name,
		Version: skillFile.Version,
		Dependencies: resolver.SkillDependencies{
			Skills: skillFile.Dependencies.Skills,
			Tools:  skillFile.Dependencies.Tools,
		},
	}
}

// collectFiles walks a skill directory and returns all regular files keyed
// by slash-separated relative path. Hidden files and directories are
// skipped; symlinks and other non-regular files are rejected.
func collectFiles(dir string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == dir {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		if strings.HasPrefix(filepath.Base(relPath), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// WalkDir follows symlinked directories silently; reject them.
		if d.Type()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks not allowed in skill directory: %s", relPath)
		}

		if d.IsDir() {
			return nil
		}

		info, err := os.Lstat(path)
		if err != nil {
			return fmt.Errorf("checking file type for %s: %w", relPath, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("non-regular file not allowed in skill directory: %s", relPath)
		}

		content, err := os.ReadFile(path) //#nosec G304 -- path from WalkDir, symlink-checked
		if err != nil {
			return fmt.Errorf("reading %s: %w", relPath, err)
		}

		files[relPath] = content
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
