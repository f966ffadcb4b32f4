package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/storefetch/internal/format"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
)

func newInstallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "install <path>",
		Short: "Install a downloaded package with Add-AppxPackage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.wire().Service.Install(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", args[0])
			return nil
		},
	}
}

func newInspectCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Show the kind, architecture and identity of a package file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format.Parse(output)
			if err != nil {
				return err
			}
			info, err := installer.Inspect(args[0])
			if err != nil {
				return err
			}
			return format.Write(cmd.OutOrStdout(), f, format.PackageInfo(info))
		},
	}

	outputFlag(cmd.Flags(), &output)
	return cmd
}

func newPackagesCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "packages",
		Short: "List packages in the downloads directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format.Parse(output)
			if err != nil {
				return err
			}
			pkgs, err := a.wire().Service.Packages(cmd.Context())
			if err != nil {
				return err
			}
			return format.Write(cmd.OutOrStdout(), f, format.Packages(pkgs))
		},
	}

	outputFlag(cmd.Flags(), &output)
	return cmd
}
