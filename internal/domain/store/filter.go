package store

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidFilter marks a filter that cannot be applied
var ErrInvalidFilter = errors.New("invalid filter")

// ArchHost selects the architecture of the running machine
const ArchHost = "host"

// Filter narrows resolved records. The zero Filter keeps everything.
type Filter struct {
	// Arch keeps records for this architecture plus neutral and
	// architecture-less ones
	Arch string `json:"arch,omitempty"`
	// Kinds keeps these extensions, with or without the leading dot
	Kinds []string `json:"kinds,omitempty"`
	// Match is a case-insensitive doublestar glob on the file name
	Match        string `json:"match,omitempty"`
	SkipBlockMap bool   `json:"skip_blockmap,omitempty"`
}

// Validate reports an unknown architecture or a malformed glob
func (f Filter) Validate() error {
	if f.Arch != "" && !strings.EqualFold(f.Arch, ArchHost) && !types.IsArch(f.Arch) {
		return fmt.Errorf("%w: unknown architecture %q", ErrInvalidFilter, f.Arch)
	}
	if f.Match != "" && !doublestar.ValidatePattern(strings.ToLower(f.Match)) {
		return fmt.Errorf("%w: bad match pattern %q", ErrInvalidFilter, f.Match)
	}
	return nil
}

// Apply returns the records f keeps, in their original order
func (f Filter) Apply(files []types.FileDescriptor) ([]types.FileDescriptor, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	arch := strings.ToLower(f.Arch)
	if arch == ArchHost {
		arch = HostArch()
	}
	kinds := make(map[string]bool, len(f.Kinds))
	for _, k := range f.Kinds {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if !strings.HasPrefix(k, ".") {
			k = "." + k
		}
		kinds[k] = true
	}
	pattern := strings.ToLower(f.Match)

	kept := make([]types.FileDescriptor, 0, len(files))
	for _, file := range files {
		if f.SkipBlockMap && file.IsBlockMap() {
			continue
		}
		if arch != "" {
			if a := file.Arch(); a != "" && a != types.ArchNeutral && a != arch {
				continue
			}
		}
		if len(kinds) > 0 && !kinds[file.Extension()] {
			continue
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, strings.ToLower(file.Name))
			if err != nil {
				return nil, fmt.Errorf("%w: bad match pattern %q: %v", ErrInvalidFilter, f.Match, err)
			}
			if !ok {
				continue
			}
		}
		kept = append(kept, file)
	}
	return kept, nil
}

// HostArch maps the running GOARCH to a package architecture, "" if none fits
func HostArch() string {
	return archFor(runtime.GOARCH)
}

func archFor(goarch string) string {
	switch goarch {
	case "amd64":
		return types.ArchX64
	case "386":
		return types.ArchX86
	case "arm64":
		return types.ArchARM64
	case "arm":
		return types.ArchARM
	default:
		return ""
	}
}
