// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillpkg/installer"
)

func newUninstallCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:           "uninstall <name>",
		Short:         "Remove an installed skill",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntimeEnv()
			if err != nil {
				return err
			}
			contentFetcher, err := rt.newContentFetcher(false)
			if err != nil {
				return err
			}

			inst := installer.New(contentFetcher, rt.skills, rt.ledger, rt.projectPath)
			result, err := inst.Uninstall(args[0], force)
			if errors.Is(err, installer.ErrHasDependents) {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s is required by %s; use --force to remove anyway\n",
					args[0], strings.Join(result.Dependents, ", "))
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			if len(result.NewOrphans) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no longer needed: %s (run 'skillpkg doctor --fix --remove-orphans' to reclaim)\n",
					strings.Join(result.NewOrphans, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove even if other skills depend on it")
	return cmd
}
