// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package fetcher

//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/stacklok/skillpkg/resolver"
	"github.com/stacklok/skillpkg/sources"
)

// Skill is fetched skill content plus the metadata it declares.
type Skill struct {
	Metadata resolver.SkillMetadata

	// Files maps layer-relative paths (e.g. "SKILL.md", "scripts/run.sh")
	// to content. Always contains SKILL.md.
	Files map[string][]byte
}

// ContentFetcher retrieves both skill metadata and skill content for a
// source locator. Like resolver.Fetcher, a nil result with a nil error
// means "not found".
type ContentFetcher interface {
	resolver.Fetcher

	// FetchSkill retrieves the full content of the skill at the source.
	FetchSkill(ctx context.Context, source string) (*Skill, error)
}

// Compile-time interface checks.
var (
	_ ContentFetcher = (*Local)(nil)
	_ ContentFetcher = (*OCI)(nil)
	_ ContentFetcher = (*Multi)(nil)
)

// Multi dispatches fetches to a kind-specific fetcher based on the
// syntactic form of the source locator.
type Multi struct {
	local ContentFetcher
	oci   ContentFetcher
}

// NewMulti creates a dispatching fetcher. Panics if either fetcher is nil.
func NewMulti(local, oci ContentFetcher) *Multi {
	if local == nil || oci == nil {
		panic("fetcher: NewMulti called with nil fetcher")
	}
	return &Multi{local: local, oci: oci}
}

// FetchMetadata implements resolver.Fetcher.
func (m *Multi) FetchMetadata(ctx context.Context, source string) (*resolver.SkillMetadata, error) {
	f, err := m.fetcherFor(source)
	if err != nil {
		return nil, err
	}
	return f.FetchMetadata(ctx, source)
}

// FetchSkill implements ContentFetcher.
func (m *Multi) FetchSkill(ctx context.Context, source string) (*Skill, error) {
	f, err := m.fetcherFor(source)
	if err != nil {
		return nil, err
	}
	return f.FetchSkill(ctx, source)
}

func (m *Multi) fetcherFor(source string) (ContentFetcher, error) {
	kind := sources.Kind(source)
	switch kind {
	case sources.KindLocal:
		return m.local, nil
	case sources.KindOCI:
		return m.oci, nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q for %s", kind, source)
	}
}
