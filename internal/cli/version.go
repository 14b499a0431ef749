package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultkit/internal/buildinfo"
)

const (
	defaultModulePath = "github.com/aidanlsb/vaultkit"
	develVersion      = "devel"
)

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the vk version and how it was built",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		out := cmd.OutOrStdout()

		if isJSONOutput() {
			outputSuccess(out, info, nil)
			return nil
		}
		fmt.Fprintf(out, "vk %s\n", info.Version)
		for _, line := range info.lines() {
			fmt.Fprintf(out, "%s: %s\n", line[0], line[1])
		}
		return nil
	},
}

// currentVersionInfo starts from the running toolchain, then layers the
// module build info and finally the -ldflags stamp on top.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    develVersion,
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok && bi != nil {
		info.fromBuild(bi)
	}
	info.fromStamp()
	return info
}

func (v *versionInfo) fromBuild(bi *debug.BuildInfo) {
	settings := make(map[string]string, len(bi.Settings))
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}

	setIfEmpty := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	setIfEmpty(&v.ModulePath, bi.Main.Path)
	setIfEmpty(&v.GoVersion, bi.GoVersion)
	setIfEmpty(&v.GOOS, settings["GOOS"])
	setIfEmpty(&v.GOARCH, settings["GOARCH"])
	v.Version = releaseVersion(bi.Main.Version)
	v.Commit = settings["vcs.revision"]
	v.CommitTime = settings["vcs.time"]
	v.Modified = strings.EqualFold(settings["vcs.modified"], "true")
}

// fromStamp fills what the build info left empty from release builds'
// buildinfo values.
func (v *versionInfo) fromStamp() {
	if v.Version == develVersion {
		v.Version = releaseVersion(buildinfo.Version)
	}
	if v.Commit == "" {
		v.Commit = buildinfo.Commit
	}
	if v.CommitTime == "" {
		v.CommitTime = buildinfo.Date
	}
}

// lines are the text output below the version, commit fields only when known.
func (v versionInfo) lines() [][2]string {
	out := [][2]string{{"module", v.ModulePath}}
	if v.Commit != "" {
		out = append(out, [2]string{"commit", v.Commit})
	}
	if v.CommitTime != "" {
		out = append(out, [2]string{"commit_time", v.CommitTime})
	}
	return append(out,
		[2]string{"go", v.GoVersion},
		[2]string{"platform", v.GOOS + "/" + v.GOARCH},
		[2]string{"modified", strconv.FormatBool(v.Modified)},
	)
}

func releaseVersion(version string) string {
	if version == "" || version == "(devel)" {
		return develVersion
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
