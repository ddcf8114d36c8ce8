// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Builder creates reproducible skill artifacts in a local cache.
// Skill content is platform independent, so the artifact is a single
// manifest with one content layer rather than a per-platform index.
type Builder struct {
	cache *Cache
}

// BuildOptions configures artifact building.
type BuildOptions struct {
	// Epoch is the timestamp to use for reproducible builds.
	// If zero, defaults to the Unix epoch.
	Epoch time.Time
}

// BuildResult contains the digests of a built artifact.
type BuildResult struct {
	ManifestDigest digest.Digest
	ConfigDigest   digest.Digest
	LayerDigest    digest.Digest
}

// NewBuilder creates a builder writing to the given cache.
// Panics if cache is nil.
func NewBuilder(cache *Cache) *Builder {
	if cache == nil {
		panic("oci: NewBuilder called with nil cache")
	}
	return &Builder{cache: cache}
}

// DefaultBuildOptions returns default build options.
// Respects SOURCE_DATE_EPOCH for reproducible builds.
func DefaultBuildOptions() BuildOptions {
	epoch := time.Unix(0, 0).UTC()

	if sde := os.Getenv("SOURCE_DATE_EPOCH"); sde != "" {
		if ts, err := strconv.ParseInt(sde, 10, 64); err == nil {
			epoch = time.Unix(ts, 0).UTC()
		}
	}

	return BuildOptions{Epoch: epoch}
}

// Build packages a skill into an OCI artifact in the cache. The descriptor
// becomes both the config blob and the manifest annotations; files become
// the single content layer.
func (b *Builder) Build(
	ctx context.Context, desc *SkillDescriptor, files []FileEntry, opts BuildOptions,
) (*BuildResult, error) {
	if desc == nil || desc.Name == "" {
		return nil, fmt.Errorf("skill descriptor with a name is required")
	}
	if opts.Epoch.IsZero() {
		opts.Epoch = time.Unix(0, 0).UTC()
	}

	layerBytes, err := PackLayer(files, opts.Epoch)
	if err != nil {
		return nil, fmt.Errorf("creating content layer: %w", err)
	}

	layerDigest, err := b.cache.PutBlob(ctx, layerBytes)
	if err != nil {
		return nil, fmt.Errorf("storing content layer: %w", err)
	}

	configBytes, err := json.Marshal(desc)
	if err != nil {
		return nil, fmt.Errorf("marshaling skill config: %w", err)
	}

	configDigest, err := b.cache.PutBlob(ctx, configBytes)
	if err != nil {
		return nil, fmt.Errorf("storing skill config: %w", err)
	}

	annotations := desc.Annotations()
	annotations[ocispec.AnnotationCreated] = opts.Epoch.Format(time.RFC3339)

	manifest := ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactTypeSkill,
		Config: ocispec.Descriptor{
			MediaType: MediaTypeSkillConfig,
			Digest:    configDigest,
			Size:      int64(len(configBytes)),
		},
		Layers: []ocispec.Descriptor{
			{
				MediaType: ocispec.MediaTypeImageLayerGzip,
				Digest:    layerDigest,
				Size:      int64(len(layerBytes)),
			},
		},
		Annotations: annotations,
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}

	manifestDigest, err := b.cache.PutManifest(ctx, manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("storing manifest: %w", err)
	}

	return &BuildResult{
		ManifestDigest: manifestDigest,
		ConfigDigest:   configDigest,
		LayerDigest:    layerDigest,
	}, nil
}
