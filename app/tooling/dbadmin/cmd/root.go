// Package cmd contains the dbadmin commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardanlabs/chaindb/foundation/keystore"
	"github.com/ardanlabs/chaindb/foundation/logger"
	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/ardanlabs/chaindb/foundation/tabledef"
	"github.com/spf13/cobra"
)

var (
	dbConfig   string
	dbKey      string
	tablesPath string
	timeout    time.Duration
	logPath    string
)

// env carries what every command needs. Tests replace newEnv to run the
// commands against in-memory collaborators.
type env struct {
	out    io.Writer
	log    *logger.Trace
	source tabledef.Source
	conn   func() *sqldb.Conn
}

var newEnv = func(cmd *cobra.Command) (*env, func(), error) {
	log, err := logger.New("DBADMIN", logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("constructing logger: %w", err)
	}

	trace := logger.NewTrace(log)

	e := env{
		out:    cmd.OutOrStdout(),
		log:    trace,
		source: tabledef.NewStoreSource(keystore.File(tablesPath)),
		conn: func() *sqldb.Conn {
			params := sqldb.NewFileParams(keystore.File(dbConfig), dbKey)
			return sqldb.New(params, trace)
		},
	}

	return &e, func() { log.Sync() }, nil
}

var rootCmd = &cobra.Command{
	Use:           "dbadmin",
	Short:         "Inspect table definitions and run statements.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbConfig, "db-config", "c", "zblock/db.yaml", "Path to the connection parameters file.")
	rootCmd.PersistentFlags().StringVarP(&dbKey, "db-key", "k", "database", "Key holding the connection parameters.")
	rootCmd.PersistentFlags().StringVarP(&tablesPath, "tables", "t", "zblock/tables.json", "Path to the table definitions file.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Deadline for database work.")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "stderr", "Log output path.")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// =============================================================================

// withEnv builds the environment once and runs fn with it.
func withEnv(cmd *cobra.Command, fn func(e *env) error) error {
	e, done, err := newEnv(cmd)
	if err != nil {
		return err
	}
	defer done()

	return fn(e)
}

// withTable runs fn against the named table definition.
func withTable(cmd *cobra.Command, name string, fn func(e *env, tbl *tabledef.Table) error) error {
	return withEnv(cmd, func(e *env) error {
		return fn(e, e.table(name))
	})
}

// withConn runs fn inside a connected session. The session is closed when
// fn returns.
func withConn(cmd *cobra.Command, fn func(ctx context.Context, e *env, conn *sqldb.Conn) error) error {
	return withEnv(cmd, func(e *env) error {
		return e.session(cmd, func(ctx context.Context, conn *sqldb.Conn) error {
			return fn(ctx, e, conn)
		})
	})
}

func (e *env) table(name string) *tabledef.Table {
	return tabledef.New(name, e.source, e.log.With("table", name))
}

// session connects, runs fn under the command timeout and disconnects.
func (e *env) session(cmd *cobra.Command, fn func(ctx context.Context, conn *sqldb.Conn) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	conn := e.conn()
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Disconnect()

	return fn(ctx, conn)
}

// finish commits the session's work, or rolls it back when rollback is set.
func finish(ctx context.Context, conn *sqldb.Conn, rollback bool) error {
	if rollback {
		if err := conn.Rollback(ctx); err != nil {
			return fmt.Errorf("rolling back: %w", err)
		}
		return nil
	}

	if err := conn.Commit(ctx); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
