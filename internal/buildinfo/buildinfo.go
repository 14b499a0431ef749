// Package buildinfo holds release metadata stamped in with -ldflags -X.
package buildinfo

// Empty in local builds; `vk version` then falls back to the module build info.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
