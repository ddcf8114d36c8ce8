// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"encoding/json"
	"fmt"
)

// userToken is the literal wire token recording a direct user install.
const userToken = "user"

// InstalledBy records who asked for a skill: the user directly, or another
// skill that requires it. Modeling this as a tagged value rather than a raw
// string keeps the "user" sentinel from colliding with a skill that happens
// to be named "user"-ish, while still marshaling to the documented wire
// format (the literal "user" or the requiring skill's name).
type InstalledBy struct {
	user  bool
	skill string
}

// ByUser reports a direct, user-requested install.
func ByUser() InstalledBy {
	return InstalledBy{user: true}
}

// BySkill reports an install pulled in by the named requiring skill.
func BySkill(skillName string) InstalledBy {
	return InstalledBy{skill: skillName}
}

// IsUser reports whether the skill was installed directly by the user.
func (i InstalledBy) IsUser() bool {
	return i.user
}

// Skill returns the requiring skill's name, or "" for a user install.
func (i InstalledBy) Skill() string {
	if i.user {
		return ""
	}
	return i.skill
}

// String returns the wire token.
func (i InstalledBy) String() string {
	if i.user {
		return userToken
	}
	return i.skill
}

// MarshalJSON implements json.Marshaler.
func (i InstalledBy) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *InstalledBy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing installedBy: %w", err)
	}
	if s == userToken {
		*i = ByUser()
		return nil
	}
	*i = BySkill(s)
	return nil
}
