// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package state persists the installation ledger: which skills are installed,
which external tools they surfaced, and the dependency adjacency between
skills.

The ledger is one JSON document, loaded and saved whole on every mutation.
[Store] is its exclusive owner: all writes go through a load-mutate-save
cycle under a process-local mutex, and every save is a temp-file-plus-rename
swap so a reader never observes a half-written document. A missing or
corrupt document loads as an empty ledger rather than an error, with
Ledger.Recovered distinguishing recovery from genuine emptiness.

The dependedBy sets across entries form the inverse of the install-time
"required by" edges. [Ledger.CanUninstall] is the safety gate derived from
them: nothing may be removed while its dependedBy set is non-empty, and
every removal path prunes the removed name out of all remaining sets.
*/
package state
