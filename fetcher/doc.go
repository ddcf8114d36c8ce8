// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package fetcher retrieves skill metadata and content from the supported
// source kinds. It is the collaborator the resolver and installer use to
// reach the outside world; everything above it works on fetched values.
package fetcher
