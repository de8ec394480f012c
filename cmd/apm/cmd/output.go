package cmd

import (
	"fmt"
	"strings"

	"github.com/corey/apm/internal/app"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// formatProbes renders capture backend probe results.
//
//	⚡ capture sources
//	  ✓ evdev   2 devices
//	      /dev/input/event3  AT Translated Set 2 keyboard
//	  ✗ x11     x11: display unavailable: DISPLAY is not set
func formatProbes(probes []app.Probe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ capture sources%s\n", colorBold, colorReset))

	for _, p := range probes {
		if p.Err != nil {
			sb.WriteString(fmt.Sprintf("  %s✗%s %-7s %s%v%s\n", colorYellow, colorReset, p.Name, colorGray, p.Err, colorReset))
			if hint := diagnoseCaptureError(p.Err); hint != "" {
				for _, line := range strings.Split(hint, "\n") {
					sb.WriteString("      " + line + "\n")
				}
			}
			continue
		}

		detail := "available"
		if len(p.Devices) > 0 {
			detail = fmt.Sprintf("%d devices", len(p.Devices))
		}
		sb.WriteString(fmt.Sprintf("  %s✓%s %-7s %s\n", colorGreen, colorReset, p.Name, detail))
		for _, d := range p.Devices {
			sb.WriteString(fmt.Sprintf("      %s%s%s  %s\n", colorCyan, d.Path, colorReset, d.Name))
		}
	}
	return sb.String()
}
