package build

import (
	"fmt"
	"runtime"
	"strings"

	_ "embed"
)

//go:embed VERSION
var rawVersion []byte

// Build information, overridable at link time.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

//nolint:gochecknoinits // init version.
func init() {
	// Release builds set Version via ldflags, local builds fall back
	// to the VERSION file.
	if Version == "" {
		Version = strings.TrimSpace(string(rawVersion))
	}
}

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetBuildInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
}

func (i Info) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Version: %s\n", i.Version)

	if i.Commit != "" {
		fmt.Fprintf(&sb, "Commit: %s\n", i.Commit)
	}

	if i.BuildTime != "" {
		fmt.Fprintf(&sb, "Build Time: %s\n", i.BuildTime)
	}

	fmt.Fprintf(&sb, "Go Version: %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "Platform: %s\n", i.Platform)

	return sb.String()
}
