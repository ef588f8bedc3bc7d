package cmd

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/spf13/cobra"
)

var columnsKind string

var columnsCmd = &cobra.Command{
	Use:   "columns <table>",
	Short: "List the columns of a table.",
	Args:  cobra.ExactArgs(1),
	RunE:  columnsRun,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().StringVar(&columnsKind, "kind", tabledef.KindAll, "Listing to print: all, notnull or nopk.")
}

func columnsRun(cmd *cobra.Command, args []string) error {
	return withTable(cmd, args[0], func(e *env, tbl *tabledef.Table) error {
		columns, err := tbl.ColumnsOf(columnsKind)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(e.out, strings.Join(columns, ", "))
		return err
	})
}
