package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/biyonik/fluentdb"
	"github.com/biyonik/fluentdb/internal/ui"
)

// filterOptions, select ve count komutlarının ortak koşul bayraklarıdır.
type filterOptions struct {
	where string
	args  []string
}

func (f *filterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.where, "where", "", `condition fragment, e.g. "age > ? AND active = ?"`)
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "binding for a ? in --where (repeatable)")
}

func (f *filterOptions) apply(q *fluentdb.Query) *fluentdb.Query {
	return q.Where(f.where, toBindings(f.args)...)
}

// NewSelectCommand creates the select command.
func NewSelectCommand(opts *globalOptions) *cobra.Command {
	var (
		filter  filterOptions
		columns string
		order   string
		limit   string
		offset  string
		assoc   bool
	)

	cmd := &cobra.Command{
		Use:     "select TABLE",
		Short:   "Select rows from a table through the query builder",
		Example: `  fluentdb select users --columns "id, name" --where "age > ?" --arg 30 --order "name asc" --limit 20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			q := filter.apply(s.Fail(true).Table(args[0]).Select(columns)).
				Order(order).
				Offset(offset).
				Limit(limit).
				Fetch(shapeOption(assoc))
			if err := q.Err(); err != nil {
				return err
			}

			res, err := q.AllContext(cmd.Context())
			if err != nil {
				return describe(err)
			}
			return ui.PrintResult(res)
		},
	}

	filter.register(cmd)
	cmd.Flags().StringVar(&columns, "columns", "*", "comma separated column list")
	cmd.Flags().StringVar(&order, "order", "", `order spec, e.g. "created_at desc, id"`)
	cmd.Flags().StringVar(&limit, "limit", "", "maximum number of rows")
	cmd.Flags().StringVar(&offset, "offset", "", "number of rows to skip")
	cmd.Flags().BoolVar(&assoc, "assoc", false, "keep raw driver values")

	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand(opts *globalOptions) *cobra.Command {
	var filter filterOptions

	cmd := &cobra.Command{
		Use:   "count TABLE",
		Short: "Count the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := filter.apply(s.Fail(true).Table(args[0])).CountContext(cmd.Context())
			if err != nil {
				return describe(err)
			}
			ui.PrintKeyValues([][2]string{{"count", strconv.FormatInt(n, 10)}})
			return nil
		},
	}

	filter.register(cmd)

	return cmd
}
