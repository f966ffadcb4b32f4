package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/providers/http/client"
	"github.com/GriffinCanCode/storefetch/internal/shared/id"
	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrBusy       = errors.New("a download task is already in progress")
	ErrNoTask     = errors.New("no download task")
	ErrMissingURL = errors.New("file has no download url")
)

const (
	subscriberBuffer = 16
	publishInterval  = 100 * time.Millisecond
)

// Options configures a Manager
type Options struct {
	Dir    string
	Fs     afero.Fs
	Client *client.Client
	Logger *zap.Logger
}

// Manager runs one download at a time into a directory
type Manager struct {
	dir    string
	fs     afero.Fs
	client *client.Client
	log    *zap.Logger

	mu          sync.Mutex
	current     *job
	subscribers map[int]chan Task
	nextSub     int
	hooks       []func(Task)
}

type job struct {
	task        Task
	cancel      context.CancelFunc
	cancelled   bool
	done        chan struct{}
	lastPublish time.Time
}

// NewManager creates a download manager. Nil Fs means the OS filesystem.
func NewManager(opts Options) *Manager {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dir == "" {
		opts.Dir = "downloads"
	}
	return &Manager{
		dir:         opts.Dir,
		fs:          opts.Fs,
		client:      opts.Client,
		log:         opts.Logger,
		subscribers: make(map[int]chan Task),
	}
}

// Dir returns the downloads directory
func (m *Manager) Dir() string {
	return m.dir
}

// OnFinished registers fn to run with the final snapshot of every task.
// Hooks run on the download goroutine before Wait returns.
func (m *Manager) OnFinished(fn func(Task)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, fn)
}

// Start begins downloading file in the background.
//
// The transfer outlives ctx cancellation; use Cancel to stop it. Values
// carried by ctx are kept.
func (m *Manager) Start(ctx context.Context, file types.FileDescriptor) (Task, error) {
	if strings.TrimSpace(file.URL) == "" {
		return Task{}, ErrMissingURL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil && !m.current.task.Done() {
		return Task{}, ErrBusy
	}

	if err := m.fs.MkdirAll(m.dir, 0o755); err != nil {
		return Task{}, fmt.Errorf("create download dir: %w", err)
	}
	path, err := UniquePath(m.fs, m.dir, FileName(file))
	if err != nil {
		return Task{}, err
	}
	// reserve the name before the transfer starts
	out, err := m.fs.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Task{}, fmt.Errorf("create %s: %w", path, err)
	}

	dlCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	j := &job{
		task: Task{
			ID:        id.NewDownloadID(),
			File:      file,
			Path:      path,
			State:     StatePending,
			StartedAt: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.current = j
	m.publishLocked(j.task)

	m.log.Info("download started",
		zap.String("id", j.task.ID.String()),
		zap.String("name", file.Name),
		zap.String("path", path))

	go m.run(dlCtx, j, out)

	return j.task, nil
}

// Current returns the latest task, finished or not
func (m *Manager) Current() (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Task{}, false
	}
	return m.current.task, true
}

// Cancel stops the active download
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.task.Done() {
		return ErrNoTask
	}
	m.current.cancelled = true
	m.current.cancel()
	return nil
}

// Wait blocks until the current task is done or ctx ends
func (m *Manager) Wait(ctx context.Context) (Task, error) {
	m.mu.Lock()
	j := m.current
	m.mu.Unlock()

	if j == nil {
		return Task{}, ErrNoTask
	}

	select {
	case <-j.done:
		m.mu.Lock()
		defer m.mu.Unlock()
		return j.task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Subscribe streams task snapshots until unsubscribe is called.
// Slow readers lose intermediate snapshots, never the latest one.
func (m *Manager) Subscribe() (<-chan Task, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Task, subscriberBuffer)
	key := m.nextSub
	m.nextSub++
	m.subscribers[key] = ch

	if m.current != nil {
		ch <- m.current.task
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, key)
			close(ch)
		})
	}
}

func (m *Manager) run(ctx context.Context, j *job, out afero.File) {
	defer j.cancel()

	written, err := m.transfer(ctx, j, out)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}

	m.mu.Lock()
	now := time.Now()
	j.task.FinishedAt = &now
	switch {
	case err == nil:
		j.task.State = StateCompleted
		j.task.Received = written
		if j.task.Total <= 0 {
			j.task.Total = written
		}
	case j.cancelled:
		j.task.State = StateCancelled
	default:
		j.task.State = StateInterrupted
		j.task.Error = err.Error()
	}
	if j.task.State != StateCompleted {
		if rmErr := m.fs.Remove(j.task.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			m.log.Warn("failed to remove partial download", zap.String("path", j.task.Path), zap.Error(rmErr))
		}
	}
	final := j.task
	hooks := append([]func(Task){}, m.hooks...)
	m.publishLocked(final)
	m.mu.Unlock()

	m.logFinished(final)
	for _, hook := range hooks {
		hook(final)
	}
	close(j.done)
}

func (m *Manager) transfer(ctx context.Context, j *job, out io.Writer) (int64, error) {
	if m.client == nil {
		return 0, errors.New("download client not configured")
	}

	req, err := m.client.Request(ctx)
	if err != nil {
		return 0, err
	}
	req.SetDoNotParseResponse(true)

	resp, err := m.client.ExecuteWithBreaker(func() (*resty.Response, error) {
		resp, err := req.Get(j.task.File.URL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			closeBody(resp)
			return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		return 0, err
	}
	defer closeBody(resp)

	if !resp.IsSuccess() {
		return 0, fmt.Errorf("download failed: HTTP %d", resp.StatusCode())
	}

	m.mu.Lock()
	j.task.State = StateDownloading
	if resp.RawResponse != nil {
		j.task.Total = resp.RawResponse.ContentLength
	}
	if j.task.Total < 0 {
		j.task.Total = 0
	}
	m.publishLocked(j.task)
	m.mu.Unlock()

	return io.Copy(out, &progressReader{r: resp.RawBody(), onRead: func(n int) { m.progress(j, n) }})
}

func closeBody(resp *resty.Response) {
	if body := resp.RawBody(); body != nil {
		_ = body.Close()
	}
}

func (m *Manager) progress(j *job, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	j.task.Received += int64(n)
	if time.Since(j.lastPublish) >= publishInterval {
		j.lastPublish = time.Now()
		m.publishLocked(j.task)
	}
}

// publishLocked sends without blocking, evicting the oldest queued
// snapshot when a subscriber falls behind
func (m *Manager) publishLocked(task Task) {
	for _, ch := range m.subscribers {
		select {
		case ch <- task:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- task:
		default:
		}
	}
}

func (m *Manager) logFinished(task Task) {
	fields := []zap.Field{
		zap.String("id", task.ID.String()),
		zap.String("state", string(task.State)),
		zap.String("received", humanize.IBytes(uint64(task.Received))),
		zap.Duration("elapsed", task.Elapsed()),
	}
	if task.State == StateCompleted {
		m.log.Info("download finished", append(fields, zap.String("path", task.Path))...)
		return
	}
	m.log.Warn("download stopped", append(fields, zap.String("error", task.Error))...)
}

type progressReader struct {
	r      io.Reader
	onRead func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.onRead(n)
	}
	return n, err
}
