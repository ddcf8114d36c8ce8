// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackLayer_Reproducible(t *testing.T) {
	t.Parallel()

	files := []FileEntry{
		{Path: "scripts/run.sh", Content: []byte("#!/bin/sh\n"), Mode: 0755},
		{Path: "SKILL.md", Content: []byte("---\nname: demo\n---\n")},
	}
	epoch := time.Unix(0, 0).UTC()

	first, err := PackLayer(files, epoch)
	require.NoError(t, err)

	// Same files in a different order must produce identical bytes.
	reordered := []FileEntry{files[1], files[0]}
	second, err := PackLayer(reordered, epoch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPackLayer_RoundTrip(t *testing.T) {
	t.Parallel()

	files := []FileEntry{
		{Path: "SKILL.md", Content: []byte("---\nname: demo\n---\nbody\n")},
		{Path: "ref/notes.md", Content: []byte("notes")},
		{Path: "scripts/run.sh", Content: []byte("#!/bin/sh\n"), Mode: 0755},
	}

	layer, err := PackLayer(files, time.Time{})
	require.NoError(t, err)

	extracted, err := UnpackLayer(layer)
	require.NoError(t, err)
	require.Len(t, extracted, 3)

	// PackLayer sorts by path.
	assert.Equal(t, "SKILL.md", extracted[0].Path)
	assert.Equal(t, "ref/notes.md", extracted[1].Path)
	assert.Equal(t, "scripts/run.sh", extracted[2].Path)
	assert.Equal(t, []byte("notes"), extracted[1].Content)
	assert.Equal(t, int64(0755), extracted[2].Mode)
}

func TestUnpackLayer_RejectsTraversal(t *testing.T) {
	t.Parallel()

	layer, err := PackLayer([]FileEntry{
		{Path: "../escape.txt", Content: []byte("nope")},
	}, time.Time{})
	require.NoError(t, err)

	_, err = UnpackLayer(layer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")
}

func TestUnpackLayer_RejectsAbsolutePath(t *testing.T) {
	t.Parallel()

	layer, err := PackLayer([]FileEntry{
		{Path: "/etc/passwd", Content: []byte("nope")},
	}, time.Time{})
	require.NoError(t, err)

	_, err = UnpackLayer(layer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute path")
}

func TestUnpackLayer_InvalidGzip(t *testing.T) {
	t.Parallel()

	_, err := UnpackLayer([]byte("not a gzip stream"))
	require.Error(t, err)
}

func TestValidateLayerPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"simple file", "SKILL.md", false},
		{"nested file", "scripts/run.sh", false},
		{"dot segment resolved", "a/./b.txt", false},
		{"parent escape", "../outside", true},
		{"nested parent escape", "a/../../outside", true},
		{"absolute", "/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateLayerPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
