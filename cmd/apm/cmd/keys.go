package cmd

import (
	"fmt"

	"github.com/corey/apm/internal/adapters/evdev"
	"github.com/corey/apm/internal/adapters/x11"
	"github.com/corey/apm/internal/ports"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List key names accepted for telemetry.shutdown_key",
	RunE:  runKeys,
}

func runKeys(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	current, err := ports.ParseKey(cfg.Telemetry.ShutdownKey)
	if err != nil {
		return err
	}
	fmt.Print(renderKeyTable(current))
	return nil
}

// renderKeyTable lists every key with its backend codes, marking current.
func renderKeyTable(current ports.Key) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Key", "evdev", "X keysym", ""})

	for _, k := range ports.AllKeys() {
		code := "-"
		if c, ok := evdev.KeyCode(k); ok {
			code = fmt.Sprintf("%d", c)
		}
		sym := "-"
		if s, ok := x11.Keysym(k); ok {
			sym = fmt.Sprintf("0x%04x", s)
		}
		mark := ""
		if k == current {
			mark = "shutdown"
		}
		t.AppendRow(table.Row{k.String(), code, sym, mark})
	}
	return t.Render() + "\n"
}
