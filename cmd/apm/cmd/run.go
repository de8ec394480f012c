package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/apm/internal/adapters/terminal"
	"github.com/corey/apm/internal/app"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Show the live APM overlay",
	Long: "Captures global key and mouse-button releases and draws the current and average\n" +
		"actions per minute. Release the shutdown key (default: End), press q or Esc in the\n" +
		"overlay, or send SIGINT to stop.",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.String("source", "auto", "capture source: auto, evdev, x11, synthetic")
	f.String("shutdown-key", "end", "key whose release ends the session")
	f.Int("buffer", 0, "capture queue size (0 = apply events in the capture callback)")
	f.String("color", "auto", "overlay color: auto, always, never")
	f.Int("rate", 120, "synthetic source: actions per minute")
	f.Int("stop-after", 0, "synthetic source: release the shutdown key after N actions")

	_ = settings.BindPFlag("capture.source", f.Lookup("source"))
	_ = settings.BindPFlag("telemetry.shutdown_key", f.Lookup("shutdown-key"))
	_ = settings.BindPFlag("capture.buffer", f.Lookup("buffer"))
	_ = settings.BindPFlag("render.color", f.Lookup("color"))
	_ = settings.BindPFlag("synthetic.rate_per_minute", f.Lookup("rate"))
	_ = settings.BindPFlag("synthetic.stop_after", f.Lookup("stop-after"))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, isTTY(os.Stdin) && isTTY(os.Stderr))
	if err != nil {
		return err
	}
	defer logger.Sync()

	rc, err := cfg.RateConfig()
	if err != nil {
		return err
	}

	src, err := app.NewSource(cfg, logger)
	if err != nil {
		if hint := diagnoseCaptureError(err); hint != "" {
			return fmt.Errorf("%w\n%s", err, hint)
		}
		return err
	}

	renderer := terminal.New(cfg.RenderInterval(), resolveColor(cfg.Render.Color), logger.Named("render"))

	a, err := app.New(app.Config{
		Rate:     rc,
		Source:   src,
		Renderer: renderer,
		Logger:   logger,
		Buffer:   cfg.Capture.Buffer,
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "%s⚡ apm%s capturing from %s%s%s, release %s%s%s to stop\n",
		colorBold, colorReset, colorCyan, src.Name(), colorReset, colorBold, rc.ShutdownKey, colorReset)

	if err := a.Run(ctx); err != nil {
		return err
	}

	if cerr := a.CaptureErr(); cerr != nil {
		fmt.Fprintf(os.Stderr, "%swarning:%s capture stopped early: %v\n", colorYellow, colorReset, cerr)
		if hint := diagnoseCaptureError(cerr); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
	}
	return nil
}
