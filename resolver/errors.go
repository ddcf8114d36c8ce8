// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package resolver

import "errors"

// ErrCircularDependency is returned when resolution encounters a dependency
// cycle. Cycles are fatal to the whole resolution: no partial dependency
// list is produced once one is found.
var ErrCircularDependency = errors.New("circular dependency detected")
