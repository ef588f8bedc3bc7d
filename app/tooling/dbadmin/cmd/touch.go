package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/spf13/cobra"
)

var (
	touchColumn   string
	touchAt       string
	touchRollback bool
)

var touchCmd = &cobra.Command{
	Use:   "touch <table> <idcol> <idval>",
	Short: "Set a timestamp column on one row, FinishedAt by default.",
	Long: `Set a timestamp column on one row, FinishedAt by default.

The time is now unless --at gives one in the form 31/12/2024 23:59:59.`,
	Args: cobra.ExactArgs(3),
	RunE: touchRun,
}

func init() {
	rootCmd.AddCommand(touchCmd)
	touchCmd.Flags().StringVar(&touchColumn, "column", "FinishedAt", "Column to set.")
	touchCmd.Flags().StringVar(&touchAt, "at", "", "Time to set instead of now.")
	touchCmd.Flags().BoolVar(&touchRollback, "rollback", false, "Roll back instead of committing.")
}

func touchRun(cmd *cobra.Command, args []string) error {
	table, idColumn, idValue := args[0], args[1], args[2]

	expr := sqldb.NowExpr(sqldb.DefaultSeparators)
	if touchAt != "" {
		expr = sqldb.TextExpr(touchAt, sqldb.DefaultMySQLFormat)
	}

	return withConn(cmd, func(ctx context.Context, e *env, conn *sqldb.Conn) error {
		id := conn.Builder().ValueOf(idValue)
		if n, err := strconv.ParseInt(idValue, 10, 64); err == nil {
			id = sqldb.Int(n)
		}

		var rows int64
		var err error
		switch touchColumn {
		case "FinishedAt":
			rows, err = conn.UpdateFinishedAt(ctx, table, expr, idColumn, id)
		default:
			rows, err = conn.UpdateTimestampColumn(ctx, table, touchColumn, expr, idColumn, id)
		}
		if err != nil {
			return err
		}

		if err := finish(ctx, conn, touchRollback); err != nil {
			return err
		}

		_, err = fmt.Fprintf(e.out, "%d row(s) updated\n", rows)
		return err
	})
}
