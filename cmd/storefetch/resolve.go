package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/storefetch/internal/format"
)

func newResolveCmd(a *app) *cobra.Command {
	var (
		lookup lookupFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "resolve <product-id|store-url>",
		Short: "List the package files of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := format.Parse(output)
			if err != nil {
				return err
			}

			files, err := a.wire().Service.Resolve(cmd.Context(), args[0], lookup.lookup())
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no files found")
			}
			return format.WriteFiles(cmd.OutOrStdout(), f, files)
		},
	}

	lookup.register(cmd.Flags())
	outputFlag(cmd.Flags(), &output)

	return cmd
}
