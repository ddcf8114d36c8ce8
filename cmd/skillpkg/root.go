// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacklok/skillpkg/env"
	"github.com/stacklok/skillpkg/fetcher"
	"github.com/stacklok/skillpkg/oci"
	"github.com/stacklok/skillpkg/state"
	"github.com/stacklok/skillpkg/store"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "skillpkg",
		Short:         "Manage portable skill packages and their dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newInstallCommand(),
		newUninstallCommand(),
		newListCommand(),
		newDoctorCommand(),
		newVersionCommand(),
	)

	return cmd
}

// runtimeEnv bundles the collaborators every command wires the same way:
// the physical store at the user-level root and the ledger in the current
// project directory.
type runtimeEnv struct {
	projectPath string
	skills      *store.Store
	ledger      *state.Store
}

func newRuntimeEnv() (*runtimeEnv, error) {
	projectPath, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determining project directory: %w", err)
	}
	root := store.DefaultRoot(&env.OSReader{})
	return &runtimeEnv{
		projectPath: projectPath,
		skills:      store.New(root),
		ledger:      state.NewStore(projectPath),
	}, nil
}

// newContentFetcher builds the multi-source fetcher: local paths served
// directly, OCI references through the layout cache under the store root.
func (r *runtimeEnv) newContentFetcher(plainHTTP bool) (fetcher.ContentFetcher, error) {
	cache, err := oci.NewCache(oci.CacheRoot(r.skills.Root()))
	if err != nil {
		return nil, fmt.Errorf("opening OCI cache: %w", err)
	}

	var opts []oci.ClientOption
	if plainHTTP {
		opts = append(opts, oci.WithPlainHTTP(true))
	}
	client, err := oci.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OCI client: %w", err)
	}

	return fetcher.NewMulti(fetcher.NewLocal(), fetcher.NewOCI(cache, client)), nil
}
