// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/stacklok/skillpkg/oci"
	"github.com/stacklok/skillpkg/resolver"
)

// OCI fetches skills from OCI registries. Pulled artifacts are kept in the
// local artifact cache; a reference already present in the cache is served
// without touching the network.
type OCI struct {
	cache  *oci.Cache
	client oci.RemoteClient
}

// NewOCI creates an OCI fetcher. Panics if cache or client is nil.
func NewOCI(cache *oci.Cache, client oci.RemoteClient) *OCI {
	if cache == nil {
		panic("fetcher: NewOCI called with nil cache")
	}
	if client == nil {
		panic("fetcher: NewOCI called with nil client")
	}
	return &OCI{cache: cache, client: client}
}

// FetchMetadata implements resolver.Fetcher. An unknown reference reports
// "not found" rather than an error.
func (f *OCI) FetchMetadata(ctx context.Context, source string) (*resolver.SkillMetadata, error) {
	d, err := f.ensureArtifact(ctx, source)
	if err != nil {
		if errors.Is(err, oci.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	desc, err := f.cache.Describe(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("reading skill metadata from %s: %w", source, err)
	}

	return metadataFromDescriptor(desc), nil
}

// FetchSkill implements ContentFetcher.
func (f *OCI) FetchSkill(ctx context.Context, source string) (*Skill, error) {
	d, err := f.ensureArtifact(ctx, source)
	if err != nil {
		if errors.Is(err, oci.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	desc, err := f.cache.Describe(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("reading skill metadata from %s: %w", source, err)
	}

	entries, err := f.cache.SkillFiles(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("reading skill content from %s: %w", source, err)
	}

	files := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		files[entry.Path] = entry.Content
	}

	return &Skill{
		Metadata: *metadataFromDescriptor(desc),
		Files:    files,
	}, nil
}

// ensureArtifact makes the artifact for the source available in the cache
// and returns its digest.
func (f *OCI) ensureArtifact(ctx context.Context, source string) (digest.Digest, error) {
	ref := referenceFromSource(source)

	if d, err := f.cache.Resolve(ctx, ref); err == nil {
		return d, nil
	}

	d, err := f.client.Pull(ctx, f.cache, ref)
	if err != nil {
		return "", fmt.Errorf("pulling %s: %w", ref, err)
	}
	return d, nil
}

// referenceFromSource turns an "oci://" source locator into a registry
// reference, defaulting the tag to latest.
func referenceFromSource(source string) string {
	ref := strings.TrimPrefix(strings.TrimSpace(source), "oci://")

	// A digest reference is complete as-is.
	if strings.Contains(ref, "@") {
		return ref
	}
	// A colon after the last slash is a tag.
	if i := strings.LastIndex(ref, ":"); i > strings.LastIndex(ref, "/") {
		return ref
	}
	return ref + ":latest"
}

// metadataFromDescriptor maps an artifact descriptor to resolver metadata.
func metadataFromDescriptor(desc *oci.SkillDescriptor) *resolver.SkillMetadata {
	return &resolver.SkillMetadata{
		Name:    desc.Name,
		Version: desc.Version,
		Dependencies: resolver.SkillDependencies{
			Skills: desc.Requires,
			Tools:  desc.Tools,
		},
	}
}
