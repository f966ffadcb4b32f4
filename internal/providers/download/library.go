package download

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
)

// Package is an installer package already present in the downloads directory
type Package struct {
	Name    string    `json:"name" yaml:"name" toml:"name"`
	Path    string    `json:"path" yaml:"path" toml:"path"`
	Size    int64     `json:"size" yaml:"size" toml:"size"`
	Arch    string    `json:"arch,omitempty" yaml:"arch,omitempty" toml:"arch,omitempty"`
	ModTime time.Time `json:"modified" yaml:"modified" toml:"modified"`
}

// Library lists the packages in the downloads directory, sorted by name.
// A missing directory is an empty library.
func (m *Manager) Library(ctx context.Context) ([]Package, error) {
	exists, err := afero.DirExists(m.fs, m.dir)
	if err != nil || !exists {
		return []Package{}, err
	}

	var packages []Package
	if _, ok := m.fs.(*afero.OsFs); ok {
		packages, err = walkDisk(ctx, m.dir)
	} else {
		packages, err = walkFs(ctx, m.fs, m.dir)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(packages, func(i, j int) bool {
		if packages[i].Name == packages[j].Name {
			return packages[i].Path < packages[j].Path
		}
		return packages[i].Name < packages[j].Name
	})
	return packages, nil
}

// walkDisk scans a real directory tree in parallel
func walkDisk(ctx context.Context, root string) ([]Package, error) {
	var (
		mu       sync.Mutex
		packages = []Package{}
	)

	conf := fastwalk.DefaultConfig.Copy()
	conf.ToSlash = false
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !types.IsPackageFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		mu.Lock()
		packages = append(packages, newPackage(path, info))
		mu.Unlock()
		return nil
	})
	return packages, err
}

func walkFs(ctx context.Context, afs afero.Fs, root string) ([]Package, error) {
	packages := []Package{}
	err := afero.Walk(afs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() || !types.IsPackageFile(info.Name()) {
			return nil
		}
		packages = append(packages, newPackage(path, info))
		return nil
	})
	return packages, err
}

func newPackage(path string, info fs.FileInfo) Package {
	return Package{
		Name:    info.Name(),
		Path:    filepath.Clean(path),
		Size:    info.Size(),
		Arch:    types.ParseArch(info.Name()),
		ModTime: info.ModTime(),
	}
}
