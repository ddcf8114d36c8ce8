// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package resolver discovers the dependency graph of a skill and flattens it
into an installable order.

Given a root source locator, [Resolver.Resolve] walks skill-to-skill
dependency declarations depth-first and produces a flat, topologically
ordered, cycle-free list of [ResolvedDependency] values: dependencies always
precede the skills that require them, a skill required by several parents
(diamond dependency) appears exactly once, and external tool requirements
are collected into a deduplicated side list.

Resolution is best-effort per node: a source whose metadata cannot be
fetched is recorded in Result.Errors and omitted, while its siblings keep
resolving. Cycles are the one fatal condition: the run aborts with the full
chain and no partial output.

Metadata comes from a [Fetcher] collaborator; the resolver performs no I/O
of its own and persists nothing.
*/
package resolver
