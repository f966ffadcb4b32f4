package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/GriffinCanCode/storefetch/internal/providers/installer"
	"github.com/GriffinCanCode/storefetch/internal/providers/resolver"
	"github.com/GriffinCanCode/storefetch/internal/providers/scraper"
	"github.com/GriffinCanCode/storefetch/internal/shared/id"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"go.uber.org/zap"
)

var (
	ErrDownloadFailed = errors.New("download did not complete")
	ErrIndexRange     = errors.New("file index out of range")
)

// Resolver looks products up
type Resolver interface {
	Fetch(ctx context.Context, q resolver.Query) (string, error)
	Resolve(ctx context.Context, q resolver.Query) ([]types.FileDescriptor, error)
}

// Downloader runs downloads
type Downloader interface {
	Start(ctx context.Context, file types.FileDescriptor) (download.Task, error)
	Wait(ctx context.Context) (download.Task, error)
	Current() (download.Task, bool)
	Cancel() error
	OnFinished(fn func(download.Task))
	Subscribe() (<-chan download.Task, func())
	Library(ctx context.Context) ([]download.Package, error)
	Dir() string
}

// Installer installs packages on the host
type Installer interface {
	Install(ctx context.Context, path string) error
	Supported() bool
}

// Lookup carries per-request resolver overrides and filtering
type Lookup struct {
	Type   string
	Ring   string
	Lang   string
	Filter Filter
}

// Options configures a Service
type Options struct {
	AutoInstall bool
	Logger      *zap.Logger
}

// Service is the resolve, download and install workflow
type Service struct {
	resolver  Resolver
	downloads Downloader
	installer Installer
	metrics   *monitoring.Metrics
	log       *zap.Logger

	autoInstall bool

	mu      sync.Mutex
	install map[id.DownloadID]bool
}

// NewService wires the workflow and registers its download hook
func NewService(r Resolver, d Downloader, i Installer, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Service{
		resolver:    r,
		downloads:   d,
		installer:   i,
		log:         opts.Logger,
		autoInstall: opts.AutoInstall,
		install:     make(map[id.DownloadID]bool),
	}
	d.OnFinished(s.onFinished)
	return s
}

// WithMetrics adds metrics tracking to the service
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// AutoInstall reports whether completed downloads are installed by default
func (s *Service) AutoInstall() bool {
	return s.autoInstall
}

// Query turns user input into a resolver query
func Query(input string, lookup Lookup) (resolver.Query, error) {
	target, err := ParseTarget(input)
	if err != nil {
		return resolver.Query{}, err
	}

	q := resolver.Query{
		Type:   target.Type,
		Target: target.Value,
		Ring:   lookup.Ring,
		Lang:   lookup.Lang,
	}
	if lookup.Type != "" {
		q.Type = lookup.Type
	}
	return q, nil
}

// Resolve looks input up and returns the filtered records
func (s *Service) Resolve(ctx context.Context, input string, lookup Lookup) ([]types.FileDescriptor, error) {
	if err := lookup.Filter.Validate(); err != nil {
		return nil, err
	}
	q, err := Query(input, lookup)
	if err != nil {
		return nil, err
	}

	timer := monitoring.NewTimer(s.metrics, "resolver", "resolve")
	files, err := s.resolver.Resolve(ctx, q)
	timer.StopErr(err, errorType(err))
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordLookup(len(files))
	}

	return lookup.Filter.Apply(files)
}

// Page returns the resolver page for input with scripts stripped
func (s *Service) Page(ctx context.Context, input string, lookup Lookup) (string, error) {
	q, err := Query(input, lookup)
	if err != nil {
		return "", err
	}

	timer := monitoring.NewTimer(s.metrics, "resolver", "page")
	page, err := s.resolver.Fetch(ctx, q)
	timer.StopErr(err, errorType(err))
	if err != nil {
		return "", err
	}
	return scraper.Sanitize(page), nil
}

// StartDownload begins a background download. With install set, or with
// auto-install configured, the package is installed once it completes.
func (s *Service) StartDownload(ctx context.Context, file types.FileDescriptor, install bool) (download.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.start(ctx, file)
	if err != nil {
		return download.Task{}, err
	}
	if install || s.autoInstall {
		s.install[task.ID] = true
	}
	return task, nil
}

// Download fetches file and blocks until it is saved. Cancelling ctx
// cancels the transfer.
func (s *Service) Download(ctx context.Context, file types.FileDescriptor, install bool) (download.Task, error) {
	if _, err := s.start(ctx, file); err != nil {
		return download.Task{}, err
	}

	task, err := s.downloads.Wait(ctx)
	if err != nil {
		if cancelErr := s.downloads.Cancel(); cancelErr == nil {
			task, _ = s.downloads.Wait(context.WithoutCancel(ctx))
		}
		return task, err
	}
	if task.State != download.StateCompleted {
		if task.Error != "" {
			return task, fmt.Errorf("%w: %s: %s", ErrDownloadFailed, task.State, task.Error)
		}
		return task, fmt.Errorf("%w: %s", ErrDownloadFailed, task.State)
	}

	if install || s.autoInstall {
		if err := s.Install(ctx, task.Path); err != nil {
			return task, err
		}
	}
	return task, nil
}

func (s *Service) start(ctx context.Context, file types.FileDescriptor) (download.Task, error) {
	task, err := s.downloads.Start(ctx, file)
	if err != nil {
		return download.Task{}, err
	}
	if s.metrics != nil {
		s.metrics.DownloadStarted()
	}
	return task, nil
}

// CurrentDownload returns the latest download task
func (s *Service) CurrentDownload() (download.Task, bool) {
	return s.downloads.Current()
}

// CancelDownload stops the active download
func (s *Service) CancelDownload() error {
	return s.downloads.Cancel()
}

// WatchDownloads streams download snapshots until stop is called
func (s *Service) WatchDownloads() (<-chan download.Task, func()) {
	return s.downloads.Subscribe()
}

// Packages lists packages already downloaded
func (s *Service) Packages(ctx context.Context) ([]download.Package, error) {
	return s.downloads.Library(ctx)
}

// DownloadDir is where packages are saved
func (s *Service) DownloadDir() string {
	return s.downloads.Dir()
}

// Install adds the package at path to the host
func (s *Service) Install(ctx context.Context, path string) error {
	timer := monitoring.NewTimer(s.metrics, "installer", "install")
	err := s.installer.Install(ctx, path)
	timer.StopErr(err, errorType(err))

	if s.metrics != nil {
		s.metrics.RecordInstall(installStatus(err))
	}
	return err
}

// CanInstall reports whether the host supports installing packages
func (s *Service) CanInstall() bool {
	return s.installer.Supported()
}

func (s *Service) onFinished(task download.Task) {
	if s.metrics != nil {
		s.metrics.DownloadFinished(string(task.State), task.Received)
	}

	s.mu.Lock()
	install := s.install[task.ID]
	delete(s.install, task.ID)
	s.mu.Unlock()

	if !install || task.State != download.StateCompleted {
		return
	}
	if err := s.Install(context.Background(), task.Path); err != nil {
		s.log.Error("auto-install failed", zap.String("id", task.ID.String()), zap.String("path", task.Path), zap.Error(err))
	}
}

// Pick returns the record at a 1-based index, as numbered in listings
func Pick(files []types.FileDescriptor, index int) (types.FileDescriptor, error) {
	if index < 1 || index > len(files) {
		return types.FileDescriptor{}, fmt.Errorf("%w: %d (have %d)", ErrIndexRange, index, len(files))
	}
	return files[index-1], nil
}

func installStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, installer.ErrUnsupportedPlatform):
		return "unsupported"
	default:
		return "error"
	}
}

func errorType(err error) string {
	var statusErr *resolver.StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, installer.ErrUnsupportedPlatform):
		return "unsupported"
	default:
		return "failure"
	}
}
