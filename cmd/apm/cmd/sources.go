package cmd

import (
	"fmt"

	"github.com/corey/apm/internal/app"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Probe the capture backends",
	Long:  "Checks evdev device access and the X11 display without capturing anything.",
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Print(formatProbes(app.ProbeSources(cfg, logger)))
	return nil
}
