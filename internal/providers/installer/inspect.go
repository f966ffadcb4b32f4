package installer

import (
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/storefetch/internal/shared/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
)

const (
	packageManifest = "AppxManifest.xml"
	bundleManifest  = "AppxMetadata/AppxBundleManifest.xml"

	// manifests are small; anything bigger is not one
	maxManifestSize = 4 << 20
)

// Identity is the package identity declared in its manifest
type Identity struct {
	Name         string `json:"name" yaml:"name" toml:"name"`
	Version      string `json:"version" yaml:"version" toml:"version"`
	Publisher    string `json:"publisher" yaml:"publisher" toml:"publisher"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture,omitempty" toml:"architecture,omitempty"`
}

// PackageInfo describes a package file on disk
type PackageInfo struct {
	Path     string    `json:"path" yaml:"path" toml:"path"`
	Kind     string    `json:"kind" yaml:"kind" toml:"kind"`
	Arch     string    `json:"arch,omitempty" yaml:"arch,omitempty" toml:"arch,omitempty"`
	MIME     string    `json:"mime" yaml:"mime" toml:"mime"`
	Bundle   bool      `json:"bundle" yaml:"bundle" toml:"bundle"`
	Identity *Identity `json:"identity,omitempty" yaml:"identity,omitempty" toml:"identity,omitempty"`
	// Architectures lists the packages a bundle carries
	Architectures []string `json:"architectures,omitempty" yaml:"architectures,omitempty" toml:"architectures,omitempty"`
}

type manifestXML struct {
	Identity struct {
		Name                  string `xml:"Name,attr"`
		Version               string `xml:"Version,attr"`
		Publisher             string `xml:"Publisher,attr"`
		ProcessorArchitecture string `xml:"ProcessorArchitecture,attr"`
	} `xml:"Identity"`
	Packages []struct {
		Type         string `xml:"Type,attr"`
		Architecture string `xml:"Architecture,attr"`
	} `xml:"Packages>Package"`
}

// Inspect reads what can be known about a package without installing it.
// Encrypted packages report kind, arch and MIME only.
func Inspect(path string) (PackageInfo, error) {
	name := filepath.Base(path)
	info := PackageInfo{
		Path: path,
		Kind: strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		Arch: types.ParseArch(name),
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return info, fmt.Errorf("inspect %s: %w", path, err)
	}
	info.MIME = mt.String()

	if encrypted(info.Kind) || !isZip(mt) {
		return info, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return info, fmt.Errorf("open package %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		switch f.Name {
		case packageManifest, bundleManifest:
		default:
			continue
		}

		manifest, err := readManifest(f)
		if err != nil {
			return info, fmt.Errorf("read %s: %w", f.Name, err)
		}
		info.Bundle = f.Name == bundleManifest
		info.Identity = &Identity{
			Name:         manifest.Identity.Name,
			Version:      manifest.Identity.Version,
			Publisher:    manifest.Identity.Publisher,
			Architecture: strings.ToLower(manifest.Identity.ProcessorArchitecture),
		}
		for _, p := range manifest.Packages {
			if p.Type == "application" && p.Architecture != "" {
				info.Architectures = append(info.Architectures, strings.ToLower(p.Architecture))
			}
		}
		if info.Arch == "" {
			info.Arch = info.Identity.Architecture
		}
		break
	}

	return info, nil
}

func readManifest(f *zip.File) (manifestXML, error) {
	var m manifestXML

	rc, err := f.Open()
	if err != nil {
		return m, err
	}
	defer rc.Close()

	if err := xml.NewDecoder(io.LimitReader(rc, maxManifestSize)).Decode(&m); err != nil {
		return m, err
	}
	return m, nil
}

// checkContainer rejects plain packages that are not ZIP archives
func checkContainer(path string) error {
	kind := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if !types.IsPackageFile(path) {
		return fmt.Errorf("%w: unexpected extension %q", ErrNotPackage, filepath.Ext(path))
	}
	if encrypted(kind) {
		return nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	if !isZip(mt) {
		return fmt.Errorf("%w: %s is %s", ErrNotPackage, filepath.Base(path), mt.String())
	}
	return nil
}

func encrypted(kind string) bool {
	return strings.HasPrefix(kind, "e")
}

func isZip(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}
	}
	return false
}
