// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List installed skills",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntimeEnv()
			if err != nil {
				return err
			}

			ledger := rt.ledger.Load()
			names := ledger.SkillNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no skills installed")
				return nil
			}

			registry := rt.skills.LoadRegistry()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tINSTALLED BY\tDESCRIPTION")
			for _, name := range names {
				entry := ledger.Skills[name]
				installedBy := "user"
				if !entry.InstalledBy.IsUser() {
					installedBy = entry.InstalledBy.Skill()
				}
				description := ""
				if reg, ok := registry.Skills[name]; ok {
					description = reg.Description
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, entry.Version, installedBy, description)
			}
			return w.Flush()
		},
	}
}
