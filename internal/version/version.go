package version

import (
	"runtime/debug"
	"strings"
)

// Set with -ldflags, e.g.
// go build -ldflags "-X git.home.luguber.info/inful/metricscope/internal/version.Version=v0.3.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by the CLI. Values not set at link
// time are taken from the module build info when available.
func String() string {
	v, commit, built := Version, GitCommit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		v, commit, built = fromBuildInfo(info, v, commit, built)
	}
	return v + " (" + commit + ", built " + built + ")"
}

func fromBuildInfo(info *debug.BuildInfo, v, commit, built string) (string, string, string) {
	if v == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case s.Key == "vcs.time" && built == "unknown":
			built = s.Value
		case s.Key == "vcs.modified" && s.Value == "true" && !strings.HasSuffix(commit, "-dirty"):
			commit += "-dirty"
		}
	}
	return v, commit, built
}
