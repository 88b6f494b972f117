package commands

import (
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biyonik/fluentdb"
	"github.com/biyonik/fluentdb/internal/ui"
)

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(opts *globalOptions) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the configured connection presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := opts.loadPresets()
			if err != nil {
				return err
			}

			if err := printPresets(presets); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			err = presets.Watch(func(err error) {
				if err != nil {
					ui.PrintError("reload failed: %v", err)
					return
				}
				ui.PrintSuccess("presets reloaded")
				_ = printPresets(presets)
			})
			if err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			<-stop
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reprint the presets whenever the file changes")

	return cmd
}

func printPresets(presets *fluentdb.Presets) error {
	names := presets.Names()
	if len(names) == 0 {
		ui.PrintWarning("no presets found")
		return nil
	}

	if src := presets.Source(); src != "" {
		ui.PrintTitle(src)
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		cfg, err := presets.Lookup(name)
		if err != nil {
			return err
		}
		cfg = cfg.Redacted()

		target := cfg.File
		if target == "" {
			target = cfg.Host
			if cfg.Port != 0 {
				target += ":" + strconv.Itoa(cfg.Port)
			}
		}
		rows = append(rows, []string{name, cfg.Dialect, target, cfg.Database, cfg.User, cfg.Prefix})
	}

	return ui.PrintTable([]string{"PRESET", "DIALECT", "TARGET", "DATABASE", "USER", "PREFIX"}, rows)
}
