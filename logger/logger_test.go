// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stacklok/skillpkg/env"
)

func TestInitializeWithEnv_Defaults(t *testing.T) {
	InitializeWithEnv(env.MapReader{})

	require.NotNil(t, zap.L())
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel), "debug should be off by default")
	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestInitializeWithEnv_Debug(t *testing.T) {
	InitializeWithEnv(env.MapReader{"SKILLPKG_DEBUG": "true"})

	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))
}

func TestInitializeWithEnv_Structured(t *testing.T) {
	InitializeWithEnv(env.MapReader{"SKILLPKG_STRUCTURED_LOGS": "true"})

	require.NotNil(t, zap.L())
	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel))
}

func TestStructuredLogs_Unparsable(t *testing.T) {
	t.Parallel()

	assert.False(t, structuredLogs(env.MapReader{"SKILLPKG_STRUCTURED_LOGS": "not-a-bool"}))
	assert.True(t, structuredLogs(env.MapReader{"SKILLPKG_STRUCTURED_LOGS": "1"}))
}

func TestNewLogr(t *testing.T) {
	InitializeWithEnv(env.MapReader{})

	log := NewLogr()
	assert.NotNil(t, log.GetSink())
}
