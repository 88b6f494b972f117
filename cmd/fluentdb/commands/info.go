package commands

import (
	"github.com/spf13/cobra"

	"github.com/biyonik/fluentdb/internal/ui"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Connect to the preset and show server information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			v, err := s.ServerVersion(cmd.Context())
			if err != nil {
				return describe(err)
			}

			cfg := s.Config().Redacted()
			ui.PrintKeyValues([][2]string{
				{"preset", opts.preset},
				{"dialect", s.Dialect()},
				{"version", v.String()},
				{"database", firstNonEmpty(cfg.Database, cfg.File)},
				{"prefix", firstNonEmpty(s.Prefix(), "-")},
			})
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
