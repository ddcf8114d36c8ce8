// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads and writes the project's declared skill list
// (skillpkg.yaml). Only the installer and the doctor consult it; the
// resolver and planner never do.
package manifest
