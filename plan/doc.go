// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package plan turns a resolution result into an ordered sequence of
// install/skip steps and an external-tool requirement list.
package plan
