// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oci

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"

	"github.com/opencontainers/go-digest"
)

// RemoteClient provides remote OCI registry operations for skill artifacts.
type RemoteClient interface {
	// Pull pulls an artifact from a remote registry into the local cache.
	Pull(ctx context.Context, cache *Cache, ref string) (digest.Digest, error)

	// Push pushes an artifact from the local cache to a remote registry.
	Push(ctx context.Context, cache *Cache, artifactDigest digest.Digest, ref string) error
}
