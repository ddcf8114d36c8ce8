// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oci handles skill artifacts as OCI objects: building them from
// skill content, caching them in a local OCI Image Layout, and moving them
// to and from remote registries.
package oci
