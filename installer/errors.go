// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package installer

import "errors"

// Sentinel errors returned by install and uninstall operations.
var (
	// ErrHasDependents blocks an uninstall while other skills still depend
	// on the target. Bypassed only by a forced uninstall.
	ErrHasDependents = errors.New("skill has dependents")

	// ErrNotInstalled reports an uninstall target with no ledger entry and
	// no content on disk.
	ErrNotInstalled = errors.New("skill is not installed")

	// ErrCircularPlan reports an install plan that carries a dependency
	// cycle and therefore has no executable steps.
	ErrCircularPlan = errors.New("install plan contains a dependency cycle")
)
