// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env provides an interface-based abstraction for environment variable
access, enabling dependency injection and testing isolation.

Use OSReader to read environment variables via the standard os package:

	reader := &env.OSReader{}
	value := reader.Getenv("SKILLPKG_HOME")

Tests substitute a MapReader to avoid relying on real environment variables:

	value := myFunc(env.MapReader{"SKILLPKG_HOME": "/tmp/home"})
*/
package env
