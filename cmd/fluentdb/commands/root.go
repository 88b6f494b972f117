// Package commands, fluentdb komutlarını cobra ile tanımlar.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/biyonik/fluentdb"
)

// globalOptions, tüm alt komutların paylaştığı bayraklardır.
type globalOptions struct {
	configFile  string
	preset      string
	debug       bool
	askPassword bool
}

// NewRootCommand creates the fluentdb root command.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "fluentdb",
		Short:         "Run ad-hoc queries against fluentdb presets",
		Version:       fluentdb.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "preset file (default: search .fluentdb.{yaml,json,toml})")
	flags.StringVarP(&opts.preset, "preset", "p", fluentdb.DefaultPreset, "preset name")
	flags.BoolVar(&opts.debug, "debug", false, "log every statement to stderr")
	flags.BoolVar(&opts.askPassword, "ask-password", false, "prompt for the password when the preset has none")

	cmd.AddCommand(
		NewPresetsCommand(opts),
		NewInfoCommand(opts),
		NewQueryCommand(opts),
		NewExecCommand(opts),
		NewSelectCommand(opts),
		NewCountCommand(opts),
	)

	return cmd
}

func (o *globalOptions) loadPresets() (*fluentdb.Presets, error) {
	var popts []fluentdb.PresetOption
	if o.configFile != "" {
		popts = append(popts, fluentdb.WithPresetFile(o.configFile))
	}
	return fluentdb.LoadPresets(popts...)
}

// openSession, seçili preset'i çözer ve bağlı bir session döndürür.
func (o *globalOptions) openSession(ctx context.Context) (*fluentdb.Session, error) {
	presets, err := o.loadPresets()
	if err != nil {
		return nil, err
	}

	cfg, err := presets.Lookup(o.preset)
	if err != nil {
		return nil, err
	}

	if o.askPassword && cfg.Password == "" && cfg.Driver() != "sqlite3" {
		prompt := &survey.Password{Message: "Password for " + cfg.User + "@" + cfg.Host + ":"}
		if err := survey.AskOne(prompt, &cfg.Password); err != nil {
			return nil, err
		}
	}

	sopts := []fluentdb.Option{fluentdb.WithPresets(presets)}
	if o.debug {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		sopts = append(sopts, fluentdb.WithDebug(true), fluentdb.WithLogger(fluentdb.NewSlogLogger(logger)))
	}

	return fluentdb.Open(ctx, cfg, sopts...)
}

// toBindings, komut satırı argümanlarını binding listesine çevirir.
func toBindings(args []string) []any {
	bindings := make([]any, len(args))
	for i, a := range args {
		bindings[i] = a
	}
	return bindings
}

// describe, kullanıcıya gösterilecek hata metnini üretir.
func describe(err error) error {
	var qerr *fluentdb.QueryError
	if errors.As(err, &qerr) {
		if c := qerr.Constraint(); c != fluentdb.ConstraintNone {
			return errors.New(qerr.Error() + " (" + c.String() + " constraint)")
		}
	}
	return err
}
