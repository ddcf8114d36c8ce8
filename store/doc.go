// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package store manages the physical skill store: a directory tree of
installed skill content under <root>/skills/<name>/, each with a SKILL.md
carrying YAML frontmatter, plus the store's own registry.json metadata
document.

The registry is distinct from the installation ledger (package state): the
registry describes what is physically present, the ledger records why each
skill was installed and what depends on it. The doctor reconciles the two.

The store root defaults to the XDG data home ([DefaultRoot]); registry
writes are schema-validated and atomic.
*/
package store
