// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillpkg/doctor"
)

func newDoctorCommand() *cobra.Command {
	var (
		fix           bool
		dryRun        bool
		removeOrphans bool
		resync        bool
	)

	cmd := &cobra.Command{
		Use:           "doctor",
		Short:         "Diagnose and repair inconsistent installation state",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntimeEnv()
			if err != nil {
				return err
			}
			d := doctor.New(rt.ledger, rt.skills, rt.projectPath)

			if fix || dryRun {
				result, err := d.Repair(doctor.RepairOptions{
					DryRun:        dryRun,
					RemoveOrphans: removeOrphans,
					Resync:        resync,
				})
				if err != nil {
					return err
				}
				verb := "fixed"
				if dryRun {
					verb = "would fix"
				}
				for _, action := range result.Actions {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, action)
				}
				for _, repairErr := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "repair error: %v\n", repairErr)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d issue(s) %s, %d remaining\n",
					result.IssuesFixed, verb, result.IssuesRemaining)
				if result.IssuesRemaining > 0 {
					return fmt.Errorf("%d issue(s) remaining", result.IssuesRemaining)
				}
				return nil
			}

			result, err := d.Diagnose(doctor.DiagnoseOptions{Resync: resync})
			if err != nil {
				return err
			}
			if result.Healthy && len(result.Issues) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "healthy: %d skill(s) in ledger, %d on disk\n",
					result.Stats.LedgerCount, result.Stats.DiskCount)
				return nil
			}
			for _, issue := range result.Issues {
				fixable := ""
				if issue.AutoFixable {
					fixable = " (auto-fixable)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s%s\n", issue.Severity, issue.Type, issue.Message, fixable)
				if issue.Suggestion != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  suggestion: %s\n", issue.Suggestion)
				}
			}
			if !result.Healthy {
				return fmt.Errorf("found %d issue(s)", len(result.Issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair auto-fixable issues")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what --fix would do without writing")
	cmd.Flags().BoolVar(&removeOrphans, "remove-orphans", false, "Also remove dependency installs nothing requires")
	cmd.Flags().BoolVar(&resync, "resync", false, "Also check and repair outdated sync history")
	return cmd
}
