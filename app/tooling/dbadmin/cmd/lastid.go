package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/spf13/cobra"
)

var lastIDCmd = &cobra.Command{
	Use:   "last-id <table> <column>",
	Short: "Print the id generated by the last insert on the session.",
	Args:  cobra.ExactArgs(2),
	RunE:  lastIDRun,
}

func init() {
	rootCmd.AddCommand(lastIDCmd)
}

func lastIDRun(cmd *cobra.Command, args []string) error {
	return withConn(cmd, func(ctx context.Context, e *env, conn *sqldb.Conn) error {
		id, err := conn.LastInsertedID(ctx, args[0], args[1])
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(e.out, id)
		return err
	})
}
