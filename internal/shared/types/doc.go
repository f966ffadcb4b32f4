// Package types provides shared data structures for storefetch.
//
// Core Types:
//   - FileDescriptor: one installer package listed by the resolver
//     (name, direct URL, expiry text, size text)
//
// Helpers:
//   - ParseArch / FileDescriptor.Arch: architecture from a package identity
//   - FileDescriptor.Extension: lower-cased package extension
//
// Example Usage:
//
//	file := types.FileDescriptor{
//	    Name: "Microsoft.VCLibs.140.00_14.0.33519.0_x64__8wekyb3d8bbwe.appx",
//	    URL:  "https://tlu.dl.delivery.mp.microsoft.com/...",
//	}
//	file.Arch()      // "x64"
//	file.Extension() // ".appx"
package types
