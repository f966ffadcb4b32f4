package types

import (
	"path"
	"strings"
)

// FileDescriptor is one installer package listed by the resolver.
//
// Time and Size are kept exactly as the resolver printed them.
type FileDescriptor struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
	Time string `json:"time" yaml:"time" toml:"time"`
	Size string `json:"size" yaml:"size" toml:"size"`
}

// Architectures that can appear in a package identity
const (
	ArchX86     = "x86"
	ArchX64     = "x64"
	ArchARM     = "arm"
	ArchARM64   = "arm64"
	ArchNeutral = "neutral"
)

var knownArchs = map[string]bool{
	ArchX86:     true,
	ArchX64:     true,
	ArchARM:     true,
	ArchARM64:   true,
	ArchNeutral: true,
}

// PackageExtensions are the installable package containers, plain and encrypted
var PackageExtensions = []string{
	".appx", ".appxbundle", ".msix", ".msixbundle",
	".eappx", ".eappxbundle", ".emsix", ".emsixbundle",
}

// IsPackageFile reports whether name has an installable package extension
func IsPackageFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range PackageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extension returns the lower-cased extension of the package name
func (f FileDescriptor) Extension() string {
	return strings.ToLower(path.Ext(f.Name))
}

// Arch returns the processor architecture encoded in the package name
func (f FileDescriptor) Arch() string {
	return ParseArch(f.Name)
}

// IsBlockMap reports whether the entry is a block map sidecar rather than a package
func (f FileDescriptor) IsBlockMap() bool {
	return f.Extension() == ".blockmap"
}

// IsPackage reports whether the entry is an installable package
func (f FileDescriptor) IsPackage() bool {
	return IsPackageFile(f.Name)
}

// ParseArch extracts the architecture field from a package file name.
//
// Package identities are laid out as Name_Version_Arch_ResourceId_PublisherId.
// Bundles omit the architecture, in which case "" is returned.
func ParseArch(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return ""
	}

	arch := strings.ToLower(parts[2])
	if knownArchs[arch] {
		return arch
	}
	return ""
}

// IsArch reports whether s names a known architecture
func IsArch(s string) bool {
	return knownArchs[strings.ToLower(s)]
}
