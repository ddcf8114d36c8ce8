// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package installer turns install plans into side effects: skill content in
// the store, metadata in the registry, install records and dependency edges
// in the ledger, and user-level entries in the manifest.
package installer
