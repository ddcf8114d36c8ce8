// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import "errors"

// Errors returned by ledger mutations. These indicate a logic bug in the
// orchestrating installer, not a data condition: the ledger itself degrades
// silently on corruption and never surfaces that as an error.
var (
	// ErrDependencyNotFound is returned by AddDependency when the dependency
	// has no ledger entry.
	ErrDependencyNotFound = errors.New("dependency not found in ledger")

	// ErrSkillNotFound is returned by operations that require an existing
	// skill entry.
	ErrSkillNotFound = errors.New("skill not found in ledger")
)
