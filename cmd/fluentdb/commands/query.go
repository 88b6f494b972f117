package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biyonik/fluentdb"
	"github.com/biyonik/fluentdb/internal/ui"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(opts *globalOptions) *cobra.Command {
	var assoc bool

	cmd := &cobra.Command{
		Use:   "query SQL [BINDING...]",
		Short: "Run a statement that returns rows",
		Example: `  fluentdb query "SELECT * FROM users WHERE id = ?" 5
  fluentdb -p reporting query --assoc "SELECT payload FROM events LIMIT 10"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Fail(true).Query(cmd.Context(), args[0], toBindings(args[1:]), shapeOption(assoc))
			if err != nil {
				return describe(err)
			}
			return ui.PrintResult(res)
		},
	}

	cmd.Flags().BoolVar(&assoc, "assoc", false, "keep raw driver values (binary columns stay as bytes)")

	return cmd
}

// NewExecCommand creates the exec command.
func NewExecCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "exec SQL [BINDING...]",
		Short:   "Run a statement that does not return rows",
		Example: `  fluentdb exec "UPDATE users SET active = ? WHERE id = ?" 0 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Fail(true).Execute(cmd.Context(), args[0], toBindings(args[1:])...); err != nil {
				return describe(err)
			}

			pairs := [][2]string{{"affected", strconv.FormatInt(s.Affected(), 10)}}
			if id, ok := s.LastID(); ok {
				pairs = append(pairs, [2]string{"last id", strconv.FormatInt(id, 10)})
			}
			ui.PrintSuccess("statement executed")
			ui.PrintKeyValues(pairs)
			return nil
		},
	}
}

func shapeOption(assoc bool) fluentdb.QueryOption {
	if assoc {
		return fluentdb.WithShape(fluentdb.ShapeAssociative)
	}
	return fluentdb.WithShape(fluentdb.ShapeStructured)
}
