// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	orasoci "oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/errdef"
)

// Cache provides local OCI artifact storage backed by an OCI Image Layout.
// Pulled skill artifacts land here before their content is unpacked into
// the skill store.
type Cache struct {
	root  string
	inner *orasoci.Store
}

// NewCache creates a local artifact cache at the given root directory.
// The directory is initialized as an OCI Image Layout with blobs/, oci-layout, and index.json.
func NewCache(root string) (*Cache, error) {
	inner, err := orasoci.New(root)
	if err != nil {
		return nil, fmt.Errorf("creating OCI cache at %s: %w", root, err)
	}

	return &Cache{root: root, inner: inner}, nil
}

// CacheRoot returns the artifact cache root within the given store root.
func CacheRoot(storeRoot string) string {
	return filepath.Join(storeRoot, "oci")
}

// PutBlob stores a blob and returns its digest.
func (c *Cache) PutBlob(ctx context.Context, content []byte) (digest.Digest, error) {
	d := digest.FromBytes(content)
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    d,
		Size:      int64(len(content)),
	}

	if err := c.inner.Push(ctx, desc, bytes.NewReader(content)); err != nil {
		if errors.Is(err, errdef.ErrAlreadyExists) {
			return d, nil
		}
		return "", fmt.Errorf("writing blob: %w", err)
	}

	return d, nil
}

// GetBlob retrieves a blob by digest.
func (c *Cache) GetBlob(ctx context.Context, d digest.Digest) ([]byte, error) {
	data, err := c.fetchContent(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("blob not found: %s: %w", d, err)
	}
	return data, nil
}

// PutManifest stores a manifest and returns its digest.
func (c *Cache) PutManifest(ctx context.Context, content []byte) (digest.Digest, error) {
	d := digest.FromBytes(content)

	// Parse media type from content so the inner store indexes it correctly.
	var header struct {
		MediaType string `json:"mediaType"`
	}
	mediaType := "application/octet-stream"
	if err := json.Unmarshal(content, &header); err == nil && header.MediaType != "" {
		mediaType = header.MediaType
	}

	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    d,
		Size:      int64(len(content)),
	}

	if err := c.inner.Push(ctx, desc, bytes.NewReader(content)); err != nil {
		if errors.Is(err, errdef.ErrAlreadyExists) {
			return d, nil
		}
		return "", fmt.Errorf("writing manifest: %w", err)
	}

	return d, nil
}

// GetManifest retrieves a manifest by digest.
func (c *Cache) GetManifest(ctx context.Context, d digest.Digest) ([]byte, error) {
	data, err := c.fetchContent(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("manifest not found: %s: %w", d, err)
	}
	return data, nil
}

// Tag associates a tag with a manifest digest.
func (c *Cache) Tag(ctx context.Context, d digest.Digest, tag string) error {
	// Resolve the digest to get the full descriptor (manifests are auto-tagged by digest on Push).
	desc, err := c.inner.Resolve(ctx, d.String())
	if err != nil {
		return fmt.Errorf("resolving digest for tag: %w", err)
	}

	if err := c.inner.Tag(ctx, desc, tag); err != nil {
		return fmt.Errorf("tagging: %w", err)
	}

	return nil
}

// Resolve resolves a tag to a manifest digest.
func (c *Cache) Resolve(ctx context.Context, tag string) (digest.Digest, error) {
	desc, err := c.inner.Resolve(ctx, tag)
	if err != nil {
		return "", fmt.Errorf("tag not found: %s: %w", tag, err)
	}
	return desc.Digest, nil
}

// ListTags returns all tags in the cache.
func (c *Cache) ListTags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := c.inner.Tags(ctx, "", func(t []string) error {
		tags = append(tags, t...)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

// Describe extracts the skill descriptor for the artifact at the given
// digest. The digest may point at an image index or at a manifest; indexes
// are resolved to their first manifest.
func (c *Cache) Describe(ctx context.Context, d digest.Digest) (*SkillDescriptor, error) {
	manifest, err := c.skillManifest(ctx, d)
	if err != nil {
		return nil, err
	}

	if desc, err := SkillDescriptorFromAnnotations(manifest.Annotations); err == nil {
		return desc, nil
	}

	// Fall back to the config blob for artifacts without annotations.
	if manifest.Config.MediaType != MediaTypeSkillConfig {
		return nil, fmt.Errorf("artifact is not a skill: config media type %q", manifest.Config.MediaType)
	}
	configBytes, err := c.GetBlob(ctx, manifest.Config.Digest)
	if err != nil {
		return nil, fmt.Errorf("getting skill config: %w", err)
	}
	return SkillDescriptorFromConfig(configBytes)
}

// SkillFiles extracts the content layer of the artifact at the given digest.
func (c *Cache) SkillFiles(ctx context.Context, d digest.Digest) ([]FileEntry, error) {
	manifest, err := c.skillManifest(ctx, d)
	if err != nil {
		return nil, err
	}

	if len(manifest.Layers) == 0 {
		return nil, fmt.Errorf("artifact has no content layer")
	}

	layerBytes, err := c.GetBlob(ctx, manifest.Layers[0].Digest)
	if err != nil {
		return nil, fmt.Errorf("getting content layer: %w", err)
	}

	files, err := UnpackLayer(layerBytes)
	if err != nil {
		return nil, fmt.Errorf("unpacking content layer: %w", err)
	}
	return files, nil
}

// skillManifest loads the manifest at the digest, resolving an image index
// to its first manifest.
func (c *Cache) skillManifest(ctx context.Context, d digest.Digest) (*ocispec.Manifest, error) {
	data, err := c.fetchContent(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("manifest not found: %s: %w", d, err)
	}

	var header struct {
		MediaType string `json:"mediaType"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing media type: %w", err)
	}

	if header.MediaType == ocispec.MediaTypeImageIndex {
		var index ocispec.Index
		if err := json.Unmarshal(data, &index); err != nil {
			return nil, fmt.Errorf("parsing index: %w", err)
		}
		if len(index.Manifests) == 0 {
			return nil, fmt.Errorf("index %s has no manifests", d)
		}
		data, err = c.fetchContent(ctx, index.Manifests[0].Digest)
		if err != nil {
			return nil, fmt.Errorf("manifest not found: %s: %w", index.Manifests[0].Digest, err)
		}
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Target returns the underlying oras.Target for direct use by client operations.
func (c *Cache) Target() oras.Target {
	return c.inner
}

// fetchContent retrieves raw content by digest from the underlying store.
func (c *Cache) fetchContent(ctx context.Context, d digest.Digest) ([]byte, error) {
	// The inner store's Fetch only uses the Digest field to locate blobs in blobs/<algo>/<hex>.
	rc, err := c.inner.Fetch(ctx, ocispec.Descriptor{Digest: d})
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	return data, nil
}
