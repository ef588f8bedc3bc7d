package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/spf13/cobra"
)

var (
	insertValues   []string
	insertSkipPK   bool
	insertRollback bool
)

var insertCmd = &cobra.Command{
	Use:   "insert <table>",
	Short: "Insert one row into a table using its definition for the column list.",
	Long: `Insert one row into a table using its definition for the column list.

Pass one --value per column in definition order. NULL is written unquoted,
values holding STR_TO_DATE are written as SQL and everything else is quoted.
With --skip-pk the database generated columns are left out and the new id
is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: insertRun,
}

func init() {
	rootCmd.AddCommand(insertCmd)
	insertCmd.Flags().StringArrayVarP(&insertValues, "value", "v", nil, "Column value, repeat once per column.")
	insertCmd.Flags().BoolVar(&insertSkipPK, "skip-pk", false, "Leave out generated columns and print the new id.")
	insertCmd.Flags().BoolVar(&insertRollback, "rollback", false, "Roll back instead of committing.")
}

func insertRun(cmd *cobra.Command, args []string) error {
	return withEnv(cmd, func(e *env) error {
		tbl := e.table(args[0])

		table, err := tbl.TableName()
		if err != nil {
			return err
		}

		columnsOf, pk := tbl.AllColumns, ""
		if insertSkipPK {
			columnsOf = tbl.NonPrimaryKeyColumns
			if pk, err = tbl.PrimaryKeyColumn(); err != nil {
				return err
			}
		}

		columns, err := columnsOf()
		if err != nil {
			return err
		}

		return e.session(cmd, func(ctx context.Context, conn *sqldb.Conn) error {
			values := make([]any, len(insertValues))
			for i, v := range insertValues {
				values[i] = v
			}
			row := conn.Builder().Values(values...)

			rows, err := conn.ExecuteInsertRow(ctx, table, columns, row)
			if err != nil {
				return err
			}

			var id int64
			if pk != "" {
				if id, err = conn.LastInsertedID(ctx, table, pk); err != nil {
					return err
				}
			}

			if err := finish(ctx, conn, insertRollback); err != nil {
				return err
			}

			if pk != "" {
				_, err = fmt.Fprintf(e.out, "%d row(s) inserted, %s = %d\n", rows, pk, id)
				return err
			}

			_, err = fmt.Fprintf(e.out, "%d row(s) inserted\n", rows)
			return err
		})
	})
}
