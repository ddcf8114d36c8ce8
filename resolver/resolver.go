// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/stacklok/skillpkg/logger"
	"github.com/stacklok/skillpkg/sources"
)

// DependencyKind distinguishes skill dependencies from external tools.
type DependencyKind string

// Dependency kinds.
const (
	// KindSkill is an installable skill dependency.
	KindSkill DependencyKind = "skill"

	// KindExternalTool is a non-skill dependency that is surfaced but never
	// auto-installed.
	KindExternalTool DependencyKind = "external-tool"
)

// ResolvedDependency is a single node discovered during resolution.
type ResolvedDependency struct {
	// Name is the normalized skill name (or tool name for external tools).
	Name string

	// Source is the origin locator the dependency was resolved from.
	Source string

	// Kind reports whether this is a skill or an external tool.
	Kind DependencyKind

	// Transitive is false only for the originally requested root. For any
	// two resolved entries with the same name, at most one is non-transitive.
	Transitive bool

	// RequiredBy is the name of the immediate parent that declared this
	// dependency. Empty for the root.
	RequiredBy string
}

// Result is the outcome of a resolution run.
type Result struct {
	// Dependencies is the flat dependency list in topological order: every
	// dependency appears before anything that requires it, and each skill
	// appears exactly once.
	Dependencies []ResolvedDependency

	// ToolsToInstall is the globally deduplicated list of external tool
	// names, in first-seen order.
	ToolsToInstall []string

	// Errors collects per-node resolution failures. A failed node is
	// omitted from Dependencies; resolution continues for its siblings.
	Errors []string

	// CircularChain is non-empty iff a dependency cycle was found. It runs
	// from the first repeated node back to itself. When set, Dependencies
	// is empty: cycles abort the whole resolution.
	CircularChain []string
}

// Resolver discovers skill-to-skill and skill-to-tool dependencies.
//
// Resolution is a pure function of what the fetcher reports; it never
// persists anything.
type Resolver struct {
	fetcher Fetcher
}

// New creates a resolver backed by the given fetcher.
// Panics if fetcher is nil.
func New(fetcher Fetcher) *Resolver {
	if fetcher == nil {
		panic("resolver: New called with nil fetcher")
	}
	return &Resolver{fetcher: fetcher}
}

// frame is one node on the explicit DFS stack. An explicit stack (rather
// than recursion) bounds stack depth on deep graphs and keeps the cycle
// and diamond bookkeeping in one place.
type frame struct {
	source string
	name   string
	parent string
	meta   *SkillMetadata
	next   int
}

// Resolve walks the dependency graph rooted at rootSource depth-first and
// returns the post-order dependency list. Nodes whose normalized name is in
// installed are pruned as already satisfied. A node reached through two
// parents is resolved exactly once, at the position of its first completion.
//
// A cycle aborts the entire resolution: the returned Result carries the
// full chain and no dependencies, and the error wraps
// [ErrCircularDependency].
func (r *Resolver) Resolve(ctx context.Context, rootSource string, installed map[string]bool) (*Result, error) {
	res := &Result{}

	visited := make(map[string]bool)
	onStack := make(map[string]int)
	toolSeen := make(map[string]bool)
	var stack []*frame

	// open fetches a node and pushes a frame for it. Pruned, already
	// resolved, and failed nodes push nothing. A non-nil error means a
	// cycle was found and res.CircularChain is populated.
	open := func(source, parent string) error {
		skillName := sources.SkillNameFromSource(source)
		if installed[skillName] {
			logger.Debugf("pruning %s: already installed", skillName)
			return nil
		}
		if visited[skillName] {
			return nil
		}
		if start, ok := onStack[skillName]; ok {
			chain := make([]string, 0, len(stack)-start+1)
			for _, f := range stack[start:] {
				chain = append(chain, f.name)
			}
			res.CircularChain = append(chain, skillName)
			return fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(res.CircularChain, " -> "))
		}

		meta, err := r.fetcher.FetchMetadata(ctx, source)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("failed to resolve %s: %v", source, err))
			return nil
		}
		if meta == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("skill not found: %s", source))
			return nil
		}

		onStack[skillName] = len(stack)
		stack = append(stack, &frame{source: source, name: skillName, parent: parent, meta: meta})
		return nil
	}

	if err := open(rootSource, ""); err != nil {
		return &Result{CircularChain: res.CircularChain, Errors: []string{err.Error()}}, err
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.next < len(f.meta.Dependencies.Skills) {
			dep := f.meta.Dependencies.Skills[f.next]
			f.next++
			if err := open(dep, f.name); err != nil {
				return &Result{CircularChain: res.CircularChain, Errors: []string{err.Error()}}, err
			}
			continue
		}

		// All children resolved: record the node itself (post-order, so
		// dependencies always precede dependents in the output).
		stack = stack[:len(stack)-1]
		delete(onStack, f.name)
		visited[f.name] = true

		for _, tool := range f.meta.Dependencies.Tools {
			res.Dependencies = append(res.Dependencies, ResolvedDependency{
				Name:       tool,
				Source:     tool,
				Kind:       KindExternalTool,
				Transitive: true,
				RequiredBy: f.name,
			})
			if !toolSeen[tool] {
				toolSeen[tool] = true
				res.ToolsToInstall = append(res.ToolsToInstall, tool)
			}
		}

		res.Dependencies = append(res.Dependencies, ResolvedDependency{
			Name:       f.name,
			Source:     f.source,
			Kind:       KindSkill,
			Transitive: f.parent != "",
			RequiredBy: f.parent,
		})
	}

	return res, nil
}
