package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/format"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/config"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/logging"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/server"
)

// app carries the global flags and what PersistentPreRunE builds from them
type app struct {
	logLevel string
	dev      bool
	envFiles []string

	cfg      *config.Config
	logger   *logging.Logger
	wireOpts server.WireOptions
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&app{})
}

func newRootCmdWith(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "storefetch",
		Short:         "Resolve, download and install Microsoft Store packages",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&a.dev, "dev", false, "development logging")
	cmd.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", nil, "dotenv file to load before reading the environment")

	cmd.AddCommand(
		newResolveCmd(a),
		newDownloadCmd(a),
		newInstallCmd(a),
		newInspectCmd(a),
		newPackagesCmd(a),
		newServeCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFiles(a.envFiles...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.dev {
		cfg.Logging.Development = true
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) wire() *server.Components {
	return server.Wire(a.cfg, a.logger, a.wireOpts)
}

// lookupFlags are the resolver overrides and filters shared by resolve and download
type lookupFlags struct {
	typ          string
	ring         string
	lang         string
	arch         string
	kinds        []string
	match        string
	skipBlockMap bool
}

func (l *lookupFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&l.typ, "type", "", "lookup type (ProductId, PackageFamilyName, CategoryId, url)")
	fs.StringVar(&l.ring, "ring", "", "release ring (RP, WIF, WIS, Retail)")
	fs.StringVar(&l.lang, "lang", "", "market language, e.g. en-US")
	fs.StringVar(&l.arch, "arch", "", "keep this architecture plus neutral files; \"host\" for this machine")
	fs.StringSliceVar(&l.kinds, "kind", nil, "keep these extensions, e.g. msixbundle,appx")
	fs.StringVar(&l.match, "match", "", "keep names matching this glob")
	fs.BoolVar(&l.skipBlockMap, "skip-blockmap", true, "drop .BlockMap files")
}

func (l *lookupFlags) lookup() store.Lookup {
	return store.Lookup{
		Type: l.typ,
		Ring: l.ring,
		Lang: l.lang,
		Filter: store.Filter{
			Arch:         l.arch,
			Kinds:        l.kinds,
			Match:        l.match,
			SkipBlockMap: l.skipBlockMap,
		},
	}
}

func outputFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVarP(target, "output", "o", string(format.Table), fmt.Sprintf("output format (%s)", strings.Join(format.Names(), ", ")))
}

