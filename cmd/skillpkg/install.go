// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillpkg/installer"
	"github.com/stacklok/skillpkg/plan"
	"github.com/stacklok/skillpkg/resolver"
)

func newInstallCommand() *cobra.Command {
	var plainHTTP bool

	cmd := &cobra.Command{
		Use:           "install <source>",
		Short:         "Install a skill and its dependencies",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntimeEnv()
			if err != nil {
				return err
			}
			contentFetcher, err := rt.newContentFetcher(plainHTTP)
			if err != nil {
				return err
			}

			// Resolve the full graph; already-installed names become
			// skip steps at planning time so their new dependency
			// edges are still recorded.
			res, err := resolver.New(contentFetcher).Resolve(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			p := plan.Build(res, rt.ledger.Load().InstalledSet())
			for _, msg := range p.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
			}

			inst := installer.New(contentFetcher, rt.skills, rt.ledger, rt.projectPath)
			result, err := inst.Install(cmd.Context(), p)
			if err != nil {
				return err
			}

			for _, name := range result.Installed {
				fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", name)
			}
			for _, name := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped %s (already installed)\n", name)
			}
			for _, tool := range result.Tools {
				fmt.Fprintf(cmd.OutOrStdout(), "requires external tool %s (needed by %s)\n",
					tool.Name, strings.Join(tool.RequiredBy, ", "))
			}
			if len(result.Installed) == 0 && len(result.Skipped) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to install")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&plainHTTP, "plain-http", false, "Use plain HTTP for OCI registries")
	return cmd
}
