package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X button-prune/internal/version.Version=...".
var (
	Version   = "dev"
	Revision  = "unknown"
	BuildDate = "unknown"
	BuildUser = "unknown"
)

func VersionInfo() string {
	return fmt.Sprintf("button-prune version=%s, revision=%s", Version, Revision)
}

func BuildContext() string {
	return fmt.Sprintf("go=%s, platform=%s/%s, user=%s, date=%s",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, BuildUser, BuildDate)
}
