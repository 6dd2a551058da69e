package cli

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// versionString identifies the running binary in verbose logs.
func versionString(name string) string {
	return fmt.Sprintf("%s %s (%s, %s) %s/%s", name, version, commit, date, runtime.GOOS, runtime.GOARCH)
}
