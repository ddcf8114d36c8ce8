// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stacklok/skillpkg/fetcher"
	"github.com/stacklok/skillpkg/logger"
	"github.com/stacklok/skillpkg/manifest"
	"github.com/stacklok/skillpkg/plan"
	"github.com/stacklok/skillpkg/state"
	"github.com/stacklok/skillpkg/store"
)

// Installer executes install plans and uninstalls skills, keeping the
// physical store, the store registry, the state ledger, and the manifest in
// step with each other.
type Installer struct {
	fetcher     fetcher.ContentFetcher
	skills      *store.Store
	ledger      *state.Store
	projectPath string
}

// New creates an installer for the project at projectPath.
// Panics if any collaborator is nil.
func New(contentFetcher fetcher.ContentFetcher, skills *store.Store, ledger *state.Store, projectPath string) *Installer {
	if contentFetcher == nil {
		panic("installer: New called with nil fetcher")
	}
	if skills == nil {
		panic("installer: New called with nil skill store")
	}
	if ledger == nil {
		panic("installer: New called with nil ledger store")
	}
	return &Installer{
		fetcher:     contentFetcher,
		skills:      skills,
		ledger:      ledger,
		projectPath: projectPath,
	}
}

// Result reports what an install run did.
type Result struct {
	// Installed lists installed skill names in execution order.
	Installed []string

	// Skipped lists skills the plan skipped as already installed.
	Skipped []string

	// Tools are the surfaced external tool requirements. They are recorded
	// in the ledger but never auto-installed.
	Tools []plan.ToolRequirement
}

// Install executes the plan's steps strictly in plan order. Steps run
// sequentially: every ledger write is a whole-document read-modify-write
// cycle, so two in-flight steps would lose one writer's update.
//
// The first failing step aborts the run; completed steps stay installed and
// the returned Result reports how far execution got.
func (i *Installer) Install(ctx context.Context, p *plan.InstallPlan) (*Result, error) {
	if len(p.CircularChain) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCircularPlan, strings.Join(p.CircularChain, " -> "))
	}

	result := &Result{}

	for _, step := range p.Steps {
		if step.Action == plan.ActionSkip {
			result.Skipped = append(result.Skipped, step.Name)
			// An already-installed dependency still gains the new
			// depended-by edge.
			if step.Transitive && step.RequiredBy != "" {
				if err := i.ledger.AddDependency(step.RequiredBy, step.Name); err != nil {
					return result, fmt.Errorf("recording dependency on %s: %w", step.Name, err)
				}
			}
			continue
		}

		if err := i.installStep(ctx, step); err != nil {
			return result, err
		}
		result.Installed = append(result.Installed, step.Name)
	}

	for _, tool := range p.ToolRequirements {
		requiredBy := ""
		if len(tool.RequiredBy) > 0 {
			requiredBy = tool.RequiredBy[0]
		}
		if err := i.ledger.RecordToolInstall(tool.Name, tool.Name, requiredBy); err != nil {
			return result, fmt.Errorf("recording tool %s: %w", tool.Name, err)
		}
		result.Tools = append(result.Tools, tool)
	}

	return result, nil
}

// installStep performs one install: fetch, store write, registry entry,
// ledger entry, dependency edge, and manifest update for a user-level root.
func (i *Installer) installStep(ctx context.Context, step plan.Step) error {
	skill, err := i.fetcher.FetchSkill(ctx, step.Source)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", step.Source, err)
	}
	if skill == nil {
		return fmt.Errorf("skill not found: %s", step.Source)
	}

	if err := i.skills.AddSkill(step.Name, skill.Files); err != nil {
		return fmt.Errorf("writing %s to store: %w", step.Name, err)
	}

	if err := i.recordRegistryEntry(step.Name, skill); err != nil {
		return err
	}

	installedBy := state.ByUser()
	if step.Transitive {
		installedBy = state.BySkill(step.RequiredBy)
	}
	err = i.ledger.RecordSkillInstall(step.Name, state.SkillRecord{
		Version:     skill.Metadata.Version,
		Source:      step.Source,
		InstalledBy: installedBy,
	})
	if err != nil {
		return fmt.Errorf("recording %s in ledger: %w", step.Name, err)
	}

	if step.Transitive && step.RequiredBy != "" {
		if err := i.ledger.AddDependency(step.RequiredBy, step.Name); err != nil {
			return fmt.Errorf("recording dependency on %s: %w", step.Name, err)
		}
	}

	if !step.Transitive {
		if err := manifest.AddSkill(i.projectPath, step.Name, step.Source); err != nil {
			return fmt.Errorf("recording %s in manifest: %w", step.Name, err)
		}
	}

	logger.Infof("installed %s %s", step.Name, skill.Metadata.Version)
	return nil
}

// recordRegistryEntry writes the store's own metadata for a fresh install.
// The description comes from the skill's frontmatter.
func (i *Installer) recordRegistryEntry(name string, skill *fetcher.Skill) error {
	description := ""
	if skillFile, err := store.ParseSkillFile(skill.Files["SKILL.md"]); err == nil {
		description = skillFile.Description
	}

	reg := i.skills.LoadRegistry()
	reg.Skills[name] = &store.RegistryEntry{
		Version:     skill.Metadata.Version,
		Description: description,
		InstalledAt: time.Now().UTC(),
	}
	if err := i.skills.SaveRegistry(reg); err != nil {
		return fmt.Errorf("recording %s in registry: %w", name, err)
	}
	return nil
}

// UninstallResult reports the outcome of an uninstall.
type UninstallResult struct {
	// Removed is true when physical content was deleted from the store.
	Removed bool

	// Dependents lists the skills that blocked the uninstall. Only set on
	// an ErrHasDependents failure.
	Dependents []string

	// NewOrphans lists dependency installs that nothing requires anymore
	// now that the skill is gone. They are reported, not removed; doctor
	// repair reclaims them on request.
	NewOrphans []string
}

// Uninstall removes a skill from the store, the registry, the ledger, and
// the manifest. It refuses while other skills depend on the target unless
// force is set.
func (i *Installer) Uninstall(name string, force bool) (*UninstallResult, error) {
	ledger := i.ledger.Load()
	if !ledger.HasSkill(name) && !i.skills.HasSkill(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	if ok, dependents := ledger.CanUninstall(name); !ok {
		if !force {
			return &UninstallResult{Dependents: dependents}, fmt.Errorf(
				"%w: %s is required by %s", ErrHasDependents, name, strings.Join(dependents, ", "),
			)
		}
		logger.Warnf("force removing %s despite dependents: %s", name, strings.Join(dependents, ", "))
	}

	removed, err := i.skills.RemoveSkill(name)
	if err != nil {
		return nil, fmt.Errorf("removing %s from store: %w", name, err)
	}

	if err := i.ledger.RecordSkillUninstall(name); err != nil {
		return nil, fmt.Errorf("removing %s from ledger: %w", name, err)
	}

	if _, err := i.skills.CleanOrphanRegistryEntries(); err != nil {
		return nil, fmt.Errorf("cleaning registry: %w", err)
	}

	if err := manifest.RemoveSkill(i.projectPath, name); err != nil {
		return nil, fmt.Errorf("removing %s from manifest: %w", name, err)
	}

	return &UninstallResult{
		Removed:    removed,
		NewOrphans: i.ledger.OrphanDependencies(),
	}, nil
}
