package server

import (
	"github.com/GriffinCanCode/storefetch/internal/domain/store"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/config"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/logging"
	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/providers/http/client"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
	"github.com/spf13/afero"
)

// Components is the wired workflow shared by the API server and the CLI
type Components struct {
	Resolver       *resolver.Resolver
	ResolverClient *client.Client
	DownloadClient *client.Client
	Downloads      *download.Manager
	Installer      *installer.Installer
	Service        *store.Service
	Metrics        *monitoring.Metrics
}

// WireOptions overrides pieces of the default wiring
type WireOptions struct {
	// Fs backs the downloads directory; nil means the OS filesystem
	Fs afero.Fs
	// Runner replaces os/exec for the installer
	Runner installer.Runner
	// GOOS overrides the detected platform
	GOOS string
}

// Wire builds the resolver, download manager, installer and service from cfg
func Wire(cfg *config.Config, logger *logging.Logger, opts WireOptions) *Components {
	if logger == nil {
		logger = logging.NewNop()
	}
	metrics := monitoring.NewMetrics()

	resolverClient := client.NewClient(clientOptions("resolver", cfg.HTTP, logger))
	resolverClient.SetTimeout(cfg.HTTP.Timeout)
	resolverClient.SetRateLimit(cfg.HTTP.RPS)
	resolverClient.SetHeader("Accept-Language", cfg.Resolver.Lang)

	// package downloads can take far longer than a lookup; ctx bounds them instead
	downloadClient := client.NewClient(clientOptions("downloads", cfg.HTTP, logger))
	downloadClient.SetRateLimit(cfg.HTTP.RPS)

	res := resolver.New(resolver.Config{
		Endpoint: cfg.Resolver.Endpoint,
		Type:     cfg.Resolver.Type,
		Ring:     cfg.Resolver.Ring,
		Lang:     cfg.Resolver.Lang,
	}, resolverClient, logger.Component("resolver"))

	manager := download.NewManager(download.Options{
		Dir:    cfg.Download.Dir,
		Fs:     opts.Fs,
		Client: downloadClient,
		Logger: logger.Component("download"),
	})

	inst := installer.New(installer.Options{
		Shell:  cfg.Installer.Shell,
		GOOS:   opts.GOOS,
		Runner: opts.Runner,
		Logger: logger.Component("installer"),
	})

	service := store.NewService(res, manager, inst, store.Options{
		AutoInstall: cfg.Download.AutoInstall,
		Logger:      logger.Component("store"),
	}).WithMetrics(metrics)

	return &Components{
		Resolver:       res,
		ResolverClient: resolverClient,
		DownloadClient: downloadClient,
		Downloads:      manager,
		Installer:      inst,
		Service:        service,
		Metrics:        metrics,
	}
}

// clientOptions carries the settings both clients share; timeout and rate
// are set per client after construction
func clientOptions(name string, cfg config.HTTPConfig, logger *logging.Logger) client.Options {
	return client.Options{
		Name:         name,
		Retries:      cfg.Retries,
		RetryWait:    cfg.RetryWait,
		RetryMaxWait: cfg.RetryMaxWait,
		UserAgent:    cfg.UserAgent,
		Logger:       logger.Component("http"),
	}
}
