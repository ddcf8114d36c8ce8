// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package doctor detects and repairs drift between the installation-state
// ledger, the physical skill store, the store registry, and the user
// manifest. Diagnosis is read-only; repair mutates state exclusively
// through the owning components' operations.
package doctor
