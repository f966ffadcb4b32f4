package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		lookup  lookupFlags
		index   int
		install bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "download <product-id|store-url>",
		Short: "Download one package file of a product",
		Long: "Resolves the product, picks the file at --index (as numbered by resolve " +
			"with the same filters) and saves it to the downloads directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.wire()

			files, err := c.Service.Resolve(cmd.Context(), args[0], lookup.lookup())
			if err != nil {
				return err
			}
			file, err := store.Pick(files, index)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			if !quiet {
				updates, stop := c.Service.WatchDownloads()
				defer func() {
					stop()
					wg.Wait()
				}()
				wg.Add(1)
				go func() {
					defer wg.Done()
					showProgress(cmd.ErrOrStderr(), updates)
				}()
			}

			task, err := c.Service.Download(cmd.Context(), file, install)
			if task.Path != "" && task.State == download.StateCompleted {
				fmt.Fprintln(cmd.OutOrStdout(), task.Path)
			}
			return err
		},
	}

	lookup.register(cmd.Flags())
	cmd.Flags().IntVar(&index, "index", 1, "1-based position of the file in the filtered list")
	cmd.Flags().BoolVar(&install, "install", false, "install the package once downloaded")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress output")

	return cmd
}

// showProgress renders snapshots until the task finishes or the stream closes
func showProgress(w io.Writer, updates <-chan download.Task) {
	for task := range updates {
		if task.Done() {
			fmt.Fprintf(w, "\r%s: %s (%s)\n", task.File.Name, task.State, humanize.IBytes(uint64(task.Received)))
			return
		}
		if task.State != download.StateDownloading {
			continue
		}
		if task.Total > 0 {
			fmt.Fprintf(w, "\r%s  %s / %s  %.0f%%", task.File.Name,
				humanize.IBytes(uint64(task.Received)), humanize.IBytes(uint64(task.Total)), task.Percent())
		} else {
			fmt.Fprintf(w, "\r%s  %s", task.File.Name, humanize.IBytes(uint64(task.Received)))
		}
	}
}
