package cmd

import (
	"fmt"
	"os"

	"github.com/corey/apm/internal/config"
	"github.com/corey/apm/internal/observability"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string

	// settings holds defaults, the config file, APM_* env and bound flags.
	settings = viper.New()

	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package with the build stamp.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:           "apm",
	Short:         "apm: live actions-per-minute overlay",
	Long:          "Counts global key and mouse-button releases and shows the current and hourly action rates.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorRed, colorReset, err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/apm/config.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")

	_ = settings.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = settings.BindPFlag("logging.format", pf.Lookup("log-format"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the layered configuration.
func loadConfig() (config.Config, error) {
	return config.Load(settings, cfgFile)
}

// newLogger builds the process logger from the logging section. rawTerminal
// is set when the overlay will put the shared terminal into raw mode.
func newLogger(cfg config.Config, rawTerminal bool) (*zap.Logger, error) {
	return observability.NewLogger(observability.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		RawTerminal: rawTerminal,
	})
}
