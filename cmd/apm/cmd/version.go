package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionExtended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("apm %s\n", versionInfo.Version)
		if versionExtended {
			fmt.Printf("Commit: %s\n", versionInfo.Commit)
			fmt.Printf("Built:  %s\n", versionInfo.BuildDate)
			fmt.Printf("Go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		}
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionExtended, "extended", "e", false, "show commit, build date and Go version")
}
