package cmd

import (
	"fmt"

	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/spf13/cobra"
)

var nameCmd = &cobra.Command{
	Use:   "name <table>",
	Short: "Print the table name declared by a definition.",
	Args:  cobra.ExactArgs(1),
	RunE:  nameRun,
}

var pkCmd = &cobra.Command{
	Use:   "pk <table>",
	Short: "Print the primary key column of a table.",
	Args:  cobra.ExactArgs(1),
	RunE:  pkRun,
}

func init() {
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(pkCmd)
}

func nameRun(cmd *cobra.Command, args []string) error {
	return withTable(cmd, args[0], func(e *env, tbl *tabledef.Table) error {
		name, err := tbl.TableName()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(e.out, name)
		return err
	})
}

func pkRun(cmd *cobra.Command, args []string) error {
	return withTable(cmd, args[0], func(e *env, tbl *tabledef.Table) error {
		pk, err := tbl.PrimaryKeyColumn()
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(e.out, pk)
		return err
	})
}
