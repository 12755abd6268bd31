package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version can be stamped with -ldflags "-X github.com/abhisek/learnpath/cmd.version=v1.2.3".
var version string

// buildVersion prefers the stamped version, then the module version that
// `go install` records. A stamped semver is canonicalized ("1.2" becomes
// "v1.2.0"); anything else is printed as given.
func buildVersion() string {
	if version != "" {
		if v := semver.Canonical("v" + strings.TrimPrefix(version, "v")); v != "" {
			return v
		}
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "(devel)"
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the learnpath version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("learnpath %s (%s, %s/%s)\n", buildVersion(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
