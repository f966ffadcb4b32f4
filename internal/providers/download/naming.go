package download

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/spf13/afero"
)

const fallbackName = "download"

// maxNameAttempts bounds the "name (n).ext" search
const maxNameAttempts = 10000

var unsafeNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// FileName picks the on-disk name for a record: its name, else the URL
// basename, else "download". Path separators and reserved characters
// become underscores.
func FileName(file types.FileDescriptor) string {
	name := cleanName(file.Name)
	if name == "" {
		name = cleanName(urlBase(file.URL))
	}
	if name == "" {
		return fallbackName
	}
	return name
}

func cleanName(name string) string {
	name = unsafeNameChars.Replace(strings.TrimSpace(name))
	name = strings.Trim(name, ". ")
	return name
}

func urlBase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// UniquePath returns dir/name, or dir/"base (n).ext" with the first free n
func UniquePath(fs afero.Fs, dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	exists, err := afero.Exists(fs, candidate)
	if err != nil {
		return "", err
	}
	if !exists {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; n <= maxNameAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		exists, err = afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free name for %s: %w", name, os.ErrExist)
}
