// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command skillpkg manages portable skill packages: installing them with
// their dependencies, keeping the project ledger consistent, and diagnosing
// drift between the ledger, the store, and the manifest.
package main

import (
	"os"

	"github.com/stacklok/skillpkg/logger"
)

func main() {
	logger.Initialize()

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
