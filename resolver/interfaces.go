// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package resolver

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
)

// SkillDependencies lists what a skill declares it needs.
type SkillDependencies struct {
	// Skills are source locators of other skills this skill requires.
	Skills []string

	// Tools are names of external tools this skill requires. Tools are
	// surfaced to the user but never auto-installed.
	Tools []string
}

// SkillMetadata describes a skill as reported by its source.
type SkillMetadata struct {
	Name         string
	Version      string
	Dependencies SkillDependencies
}

// Fetcher retrieves skill metadata for a source locator.
//
// A nil *SkillMetadata with a nil error means "not found"; errors are
// reserved for transport-level failure. The resolver treats both as a soft
// per-node failure and continues resolving siblings.
type Fetcher interface {
	FetchMetadata(ctx context.Context, source string) (*SkillMetadata, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, source string) (*SkillMetadata, error)

// FetchMetadata implements Fetcher.
func (f FetcherFunc) FetchMetadata(ctx context.Context, source string) (*SkillMetadata, error) {
	return f(ctx, source)
}
