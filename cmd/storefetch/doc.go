// Command storefetch resolves Microsoft Store products to their package
// files, downloads them and installs them on Windows hosts.
//
// Usage:
//
//	storefetch resolve 9WZDNCRFJBMP --arch host
//	storefetch resolve https://apps.microsoft.com/detail/9wzdncrfjbmp --output json
//	storefetch download 9WZDNCRFJBMP --kind msixbundle --index 1 --install
//	storefetch inspect downloads/App.msixbundle
//	storefetch packages
//	storefetch serve --port 8765
//
// Configuration comes from STOREFETCH_* environment variables, optionally
// preloaded from --env-file. Logs go to stderr; results go to stdout.
package main
