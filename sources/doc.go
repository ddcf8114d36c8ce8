// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package sources normalizes skill source locators to skill names.

A skill is identified by a short, path-separator-free name, unique within a
project. The name is derived from the source locator (a GitHub "owner/repo"
shorthand, a gist reference, a plain URL, an archive URL, an OCI artifact
reference, or a local path) by a single normalization function,
[SkillNameFromSource]. Every component that compares skill identity uses
that function, so two locators that normalize to the same name refer to the
same skill.

[Kind] classifies a locator without touching the filesystem or the network,
and [ValidateName] enforces the name shape the store and ledger depend on.
*/
package sources
