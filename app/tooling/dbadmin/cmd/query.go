package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a query and print the rows.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  queryRun,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func queryRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	return withConn(cmd, func(ctx context.Context, e *env, conn *sqldb.Conn) error {
		result, err := conn.Query(ctx, query)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
		for _, row := range result {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = cell(v)
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}

		return tw.Flush()
	})
}

func cell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
