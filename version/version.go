// Package version reports the library and build versions.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Library is the apihelper release. It is advertised to providers in the
// User-Agent header.
const Library = "1.2.0"

var (
	// These variables are set at build time of the CLI using -ldflags
	GitCommit = ""
	BuildTime = ""
)

// UserAgent returns the default User-Agent header value.
func UserAgent() string {
	return "ApiHelper/" + Library
}

// Info represents version information.
type Info struct {
	Library   string `json:"library"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	IsDirty   bool   `json:"is_dirty"`
}

// GetVersionInfo returns build information, filling gaps from the embedded
// module build info.
func GetVersionInfo() *Info {
	info := &Info{Library: Library, GitCommit: GitCommit, BuildTime: BuildTime}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	return info
}

// String returns a one-line description, e.g. "1.2.0-abc1234-dirty (go1.26.0)".
func (i *Info) String() string {
	parts := []string{i.Library}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	s := strings.Join(parts, "-")
	if i.GoVersion != "" {
		s += fmt.Sprintf(" (%s)", i.GoVersion)
	}
	return s
}
