// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry"
)

func TestNewClient_Default(t *testing.T) {
	t.Parallel()

	client, err := NewClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.credStore, "default credential store should be set")
	assert.False(t, client.plainHTTP, "plainHTTP should default to false")
}

func TestNewClient_WithOptions(t *testing.T) {
	t.Parallel()

	client, err := NewClient(WithPlainHTTP(true))
	require.NoError(t, err)
	assert.True(t, client.plainHTTP, "plainHTTP should be set by option")
}

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"valid tag", "ghcr.io/myorg/skill:v1.0.0", false},
		{"valid digest", "ghcr.io/myorg/skill@sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", false},
		{"missing tag or digest", "ghcr.io/myorg/skill", true},
		{"invalid reference", ":::invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseReference(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClient_PullAndPush_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	// Build an artifact in a "remote" cache and tag it with the short reference.
	remoteCache := newTestCache(t)
	desc := &SkillDescriptor{Name: "demo", Version: "1.0.0", Tools: []string{"jq"}}
	built := buildTestSkill(t, remoteCache, desc)
	require.NoError(t, remoteCache.Tag(ctx, built.ManifestDigest, "v1.0.0"))

	client, err := NewClient()
	require.NoError(t, err)
	client.newTarget = func(_ registry.Reference) (oras.Target, error) {
		return remoteCache.Target(), nil
	}

	local := newTestCache(t)
	d, err := client.Pull(ctx, local, "ghcr.io/org/demo:v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, built.ManifestDigest, d)

	// The pulled artifact is fully usable locally.
	got, err := local.Describe(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, desc, got)

	resolved, err := local.Resolve(ctx, "ghcr.io/org/demo:v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, d, resolved)

	// Push the artifact back out to an empty remote.
	emptyRemote := memory.New()
	client.newTarget = func(_ registry.Reference) (oras.Target, error) {
		return emptyRemote, nil
	}
	require.NoError(t, client.Push(ctx, local, d, "ghcr.io/org/demo:v2"))

	pushed, err := emptyRemote.Resolve(ctx, "v2")
	require.NoError(t, err)
	assert.Equal(t, d, pushed.Digest)
}

func TestClient_Pull_NotFound(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	client, err := NewClient()
	require.NoError(t, err)
	client.newTarget = func(_ registry.Reference) (oras.Target, error) {
		return memory.New(), nil
	}

	local := newTestCache(t)
	_, err = client.Pull(ctx, local, "ghcr.io/org/missing:v1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Pull_InvalidReference(t *testing.T) {
	t.Parallel()

	client, err := NewClient()
	require.NoError(t, err)
	client.newTarget = func(_ registry.Reference) (oras.Target, error) {
		return memory.New(), nil
	}

	_, err = client.Pull(t.Context(), newTestCache(t), "ghcr.io/org/demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must include a tag or digest")
}

// --- validatingTarget tests ---

func TestValidatingTarget_RejectOversizedManifest(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	oversized := make([]byte, MaxManifestSize+1)
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromBytes(oversized),
		Size:      int64(len(oversized)),
	}

	err := vt.Push(ctx, desc, bytes.NewReader(oversized))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestValidatingTarget_RejectDigestMismatch(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	content := []byte("actual content")
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    digest.FromString("something else"),
		Size:      int64(len(content)),
	}

	err := vt.Push(ctx, desc, bytes.NewReader(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestValidatingTarget_RejectNegativeSize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	err := vt.Push(ctx, ocispec.Descriptor{Size: -1}, bytes.NewReader(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative content size")
}

func TestValidatingTarget_AcceptsValidContent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	inner := memory.New()
	vt := newValidatingTarget(inner)

	content := []byte("valid blob")
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    digest.FromBytes(content),
		Size:      int64(len(content)),
	}

	require.NoError(t, vt.Push(ctx, desc, bytes.NewReader(content)))

	exists, err := inner.Exists(ctx, desc)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestValidateManifestCounts(t *testing.T) {
	t.Parallel()

	t.Run("index over manifest limit", func(t *testing.T) {
		t.Parallel()
		index := ocispec.Index{
			MediaType: ocispec.MediaTypeImageIndex,
			Manifests: make([]ocispec.Descriptor, maxIndexManifests+1),
		}
		data, err := json.Marshal(index)
		require.NoError(t, err)

		err = validateManifestCounts(ocispec.MediaTypeImageIndex, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum")
	})

	t.Run("manifest over layer limit", func(t *testing.T) {
		t.Parallel()
		manifest := ocispec.Manifest{
			MediaType: ocispec.MediaTypeImageManifest,
			Layers:    make([]ocispec.Descriptor, maxManifestLayers+1),
		}
		data, err := json.Marshal(manifest)
		require.NoError(t, err)

		err = validateManifestCounts(ocispec.MediaTypeImageManifest, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum")
	})
}
