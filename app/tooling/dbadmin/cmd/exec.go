package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/spf13/cobra"
)

var execRollback bool

var execCmd = &cobra.Command{
	Use:   "exec <sql>",
	Short: "Execute a statement and commit it.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  execRun,
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVar(&execRollback, "rollback", false, "Roll back instead of committing.")
}

func execRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	return withConn(cmd, func(ctx context.Context, e *env, conn *sqldb.Conn) error {
		rows, err := conn.ExecuteStatement(ctx, query)
		if err != nil {
			return err
		}

		if err := finish(ctx, conn, execRollback); err != nil {
			return err
		}

		_, err = fmt.Fprintf(e.out, "%d row(s) affected\n", rows)
		return err
	})
}
