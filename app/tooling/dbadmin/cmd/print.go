package cmd

import (
	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print <table>",
	Short: "Print the CREATE TABLE statement for a table.",
	Args:  cobra.ExactArgs(1),
	RunE:  printRun,
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func printRun(cmd *cobra.Command, args []string) error {
	return withTable(cmd, args[0], func(e *env, tbl *tabledef.Table) error {
		return tbl.Print(e.out)
	})
}
