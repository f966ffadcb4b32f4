// Package installer installs downloaded packages on the host and reads
// their manifests.
//
// Installation shells out to PowerShell's Add-AppxPackage and is only
// available on Windows; elsewhere Install returns ErrUnsupportedPlatform.
// Inspect works everywhere: it sniffs the MIME type and, for ZIP-based
// packages, reads the identity from AppxManifest.xml or the bundle
// manifest.
package installer
