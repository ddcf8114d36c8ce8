// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOSReader_Getenv(t *testing.T) {
	t.Setenv("SKILLPKG_TEST_VAR", "hello")

	reader := &OSReader{}
	assert.Equal(t, "hello", reader.Getenv("SKILLPKG_TEST_VAR"))
	assert.Empty(t, reader.Getenv("SKILLPKG_TEST_VAR_UNSET"))
}

func TestMapReader_Getenv(t *testing.T) {
	t.Parallel()

	reader := MapReader{"A": "1"}
	assert.Equal(t, "1", reader.Getenv("A"))
	assert.Empty(t, reader.Getenv("B"))
}
