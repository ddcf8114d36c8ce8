// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"strings"
)

// Format renders the plan for human display. It carries no business logic.
func (p *InstallPlan) Format() string {
	var b strings.Builder

	if len(p.CircularChain) > 0 {
		fmt.Fprintf(&b, "Circular dependency detected: %s\n", strings.Join(p.CircularChain, " -> "))
		return b.String()
	}

	var toInstall, skipped []Step
	for _, s := range p.Steps {
		if s.Action == ActionInstall {
			toInstall = append(toInstall, s)
		} else {
			skipped = append(skipped, s)
		}
	}

	if len(toInstall) > 0 {
		fmt.Fprintf(&b, "To install (%d):\n", len(toInstall))
		for _, s := range toInstall {
			if s.Transitive && s.RequiredBy != "" {
				fmt.Fprintf(&b, "  + %s (required by %s)\n", s.Name, s.RequiredBy)
			} else {
				fmt.Fprintf(&b, "  + %s\n", s.Name)
			}
		}
	} else {
		b.WriteString("Nothing to install.\n")
	}

	if len(skipped) > 0 {
		fmt.Fprintf(&b, "Already installed (%d):\n", len(skipped))
		for _, s := range skipped {
			fmt.Fprintf(&b, "  = %s\n", s.Name)
		}
	}

	if len(p.ToolRequirements) > 0 {
		fmt.Fprintf(&b, "Required external tools (%d):\n", len(p.ToolRequirements))
		for _, tr := range p.ToolRequirements {
			fmt.Fprintf(&b, "  * %s (required by %s)\n", tr.Name, strings.Join(tr.RequiredBy, ", "))
		}
	}

	if len(p.Errors) > 0 {
		fmt.Fprintf(&b, "Errors (%d):\n", len(p.Errors))
		for _, e := range p.Errors {
			fmt.Fprintf(&b, "  ! %s\n", e)
		}
	}

	return b.String()
}
