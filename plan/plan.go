// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"github.com/stacklok/skillpkg/resolver"
)

// Action is what an install step does.
type Action string

// Step actions.
const (
	// ActionInstall installs the dependency.
	ActionInstall Action = "install"

	// ActionSkip skips the dependency; Step.Reason says why.
	ActionSkip Action = "skip"
)

// Step is a single entry in an install plan.
type Step struct {
	resolver.ResolvedDependency

	Action Action

	// Reason explains a skip. Empty for installs.
	Reason string
}

// ToolRequirement is an external tool surfaced by the plan. Tools are never
// auto-installed.
type ToolRequirement struct {
	Name       string
	RequiredBy []string
}

// InstallPlan is an ordered sequence of install/skip steps plus the external
// tool requirements the resolution surfaced.
//
// Steps preserve the resolver's topological order: a dependency's step
// always occurs before the step of anything that requires it, and steps must
// be executed in that order, sequentially (ledger writes are whole-document
// read-modify-write cycles; concurrent steps would lose updates).
type InstallPlan struct {
	Steps            []Step
	ToolRequirements []ToolRequirement
	HasErrors        bool
	Errors           []string
	CircularChain    []string
}

// Build turns a resolution result plus the set of already-installed names
// into an install plan. It is a pure, synchronous transform.
//
// If the resolution carries a circular chain the plan short-circuits with
// zero steps. Skill-resolution errors are carried over but are not fatal:
// the installable subset still produces steps.
func Build(res *resolver.Result, installed map[string]bool) *InstallPlan {
	p := &InstallPlan{
		HasErrors: len(res.Errors) > 0,
		Errors:    append([]string(nil), res.Errors...),
	}

	if len(res.CircularChain) > 0 {
		p.HasErrors = true
		p.CircularChain = append([]string(nil), res.CircularChain...)
		return p
	}

	toolIndex := make(map[string]int)
	for _, dep := range res.Dependencies {
		switch dep.Kind {
		case resolver.KindExternalTool:
			if i, ok := toolIndex[dep.Name]; ok {
				p.ToolRequirements[i].RequiredBy = appendUnique(p.ToolRequirements[i].RequiredBy, dep.RequiredBy)
				continue
			}
			toolIndex[dep.Name] = len(p.ToolRequirements)
			p.ToolRequirements = append(p.ToolRequirements, ToolRequirement{
				Name:       dep.Name,
				RequiredBy: []string{dep.RequiredBy},
			})
		case resolver.KindSkill:
			step := Step{ResolvedDependency: dep, Action: ActionInstall}
			if installed[dep.Name] {
				step.Action = ActionSkip
				step.Reason = "already installed"
			}
			p.Steps = append(p.Steps, step)
		}
	}

	return p
}

// InstallSteps returns only the steps with ActionInstall, in plan order.
func (p *InstallPlan) InstallSteps() []Step {
	var steps []Step
	for _, s := range p.Steps {
		if s.Action == ActionInstall {
			steps = append(steps, s)
		}
	}
	return steps
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
