// Package sqldb provides a MySQL session wrapper with logging around every
// operation and string based statement construction.
//
//	conn := sqldb.New(sqldb.NewFileParams(keystore.File("db.yaml"), ""), trace)
//	if err := conn.Connect(ctx); err != nil { ... }
//	defer conn.Disconnect()
//
//	conn.ExecuteInsert(ctx, "Persons", []string{"Name", "Age"}, rows)
//	conn.Commit(ctx)
//	res, err := conn.Query(ctx, "SELECT * FROM Persons")
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ardanlabs/chaindb/foundation/keystore"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Logger is the set of events a Conn reports while it works.
type Logger interface {
	Enter(op string)
	Exit(op string)
	Info(msg string, keysAndValues ...any)
	Warning(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
}

// OpenFunc opens the connection pool for a config.
type OpenFunc func(cfg Config) (*sqlx.DB, error)

// Open is the default OpenFunc using the mysql driver.
func Open(cfg Config) (*sqlx.DB, error) {
	return sqlx.Open("mysql", cfg.DSN())
}

// Row is a single result row in column order.
type Row []any

// QueryResult is the fully materialized result of a query.
type QueryResult []Row

// Option configures a Conn.
type Option func(c *Conn)

// WithOpen replaces the function used to open the connection pool.
func WithOpen(open OpenFunc) Option {
	return func(c *Conn) {
		c.open = open
	}
}

// WithBuilder replaces the statement builder.
func WithBuilder(b Builder) Option {
	return func(c *Conn) {
		c.builder = b
	}
}

// Conn owns a single database session. All statements run on one pinned
// connection so session state such as LAST_INSERT_ID() and an open
// transaction carry between calls. A Conn is not safe for concurrent use.
type Conn struct {
	src     ParamSource
	log     Logger
	open    OpenFunc
	builder Builder

	db      *sqlx.DB
	conn    *sqlx.Conn
	session string
}

// New constructs an unconnected Conn. Parameters are read from src when
// Connect is called.
func New(src ParamSource, log Logger, options ...Option) *Conn {
	c := Conn{
		src:     src,
		log:     log,
		open:    Open,
		builder: NewBuilder(),
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// IsConnected reports whether the session is open.
func (c *Conn) IsConnected() bool {
	return c.conn != nil
}

// SessionID returns the id logged with every event of the current session.
// It is empty when the Conn is not connected.
func (c *Conn) SessionID() string {
	return c.session
}

// Builder returns the statement builder used by the Conn.
func (c *Conn) Builder() Builder {
	return c.builder
}

// Connect opens the session. Calling Connect on a connected Conn logs a
// warning and does nothing.
func (c *Conn) Connect(ctx context.Context) error {
	const op = "Connect"
	c.log.Enter(op)
	defer c.log.Exit(op)

	if c.conn != nil {
		c.log.Warning("database is already connected, disconnect before connecting again", "session", c.session)
		return nil
	}

	cfg, err := c.src.Params()
	if err != nil {
		kind := ErrConnection
		if errors.Is(err, keystore.ErrNotFound) {
			kind = ErrNotFound
		}
		return c.fail(op, "loading connection parameters", kind, err)
	}

	if err := cfg.Validate(); err != nil {
		return c.fail(op, "validating connection parameters", ErrConnection, err)
	}

	db, err := c.open(cfg)
	if err != nil {
		return c.fail(op, "opening database", ErrConnection, err, "host", cfg.Host, "database", cfg.Name)
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return c.fail(op, "acquiring session", ErrConnection, err, "host", cfg.Host, "database", cfg.Name)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return c.fail(op, "pinging database", ErrConnection, err, "host", cfg.Host, "database", cfg.Name)
	}

	c.db = db
	c.conn = conn
	c.session = uuid.NewString()

	c.log.Info("database connected", "session", c.session, "host", cfg.Host, "database", cfg.Name)

	return nil
}

// Disconnect closes the session. Calling Disconnect on a Conn that is not
// connected logs a warning and does nothing. The Conn is left disconnected
// even when closing fails.
func (c *Conn) Disconnect() error {
	const op = "Disconnect"
	c.log.Enter(op)
	defer c.log.Exit(op)

	if c.conn == nil {
		c.log.Warning("database can't be disconnected, it is not connected")
		return nil
	}

	session := c.session
	err := errors.Join(c.conn.Close(), c.db.Close())

	c.conn = nil
	c.db = nil
	c.session = ""

	if err != nil {
		return c.fail(op, "closing session", ErrConnection, err, "session", session)
	}

	c.log.Info("database disconnected", "session", session)

	return nil
}

// ExecuteStatement runs a statement that produces no rows and returns the
// number of affected rows.
func (c *Conn) ExecuteStatement(ctx context.Context, query string) (int64, error) {
	const op = "ExecuteStatement"
	c.log.Enter(op)
	defer c.log.Exit(op)

	c.log.Info("executing statement", "session", c.session, "sql", query)

	if c.conn == nil {
		return 0, c.notConnected(op)
	}

	res, err := c.conn.ExecContext(ctx, query)
	if err != nil {
		return 0, c.fail(op, "executing statement", ErrExecution, err, "session", c.session)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, c.fail(op, "reading affected rows", ErrExecution, err, "session", c.session)
	}

	c.log.Info("affected rows", "session", c.session, "rows", affected)

	return affected, nil
}

// Commit commits the session's open transaction.
func (c *Conn) Commit(ctx context.Context) error {
	if _, err := c.ExecuteStatement(ctx, "COMMIT"); err != nil {
		return err
	}

	c.log.Info("database committed", "session", c.session)
	return nil
}

// Rollback discards the session's open transaction.
func (c *Conn) Rollback(ctx context.Context) error {
	if _, err := c.ExecuteStatement(ctx, "ROLLBACK"); err != nil {
		return err
	}

	c.log.Info("database rolled back", "session", c.session)
	return nil
}

// Query runs a statement that produces rows and returns all of them. A
// statement that does not produce a result set is an error.
func (c *Conn) Query(ctx context.Context, query string) (QueryResult, error) {
	const op = "Query"
	c.log.Enter(op)
	defer c.log.Exit(op)

	c.log.Info("executing query", "session", c.session, "sql", query)

	if c.conn == nil {
		return nil, c.notConnected(op)
	}

	rows, err := c.conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, c.fail(op, "executing query", ErrExecution, err, "session", c.session)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, c.fail(op, "reading columns", ErrExecution, err, "session", c.session)
	}

	if len(columns) == 0 {
		return nil, c.fail(op, "reading columns", ErrExecution, errors.New("statement did not produce a result set"), "session", c.session)
	}

	result := QueryResult{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, c.fail(op, "scanning row", ErrExecution, err, "session", c.session)
		}

		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}

		result = append(result, Row(values))
	}

	if err := rows.Err(); err != nil {
		return nil, c.fail(op, "iterating rows", ErrExecution, err, "session", c.session)
	}

	c.log.Info("rows returned", "session", c.session, "rows", len(result))

	return result, nil
}

// LastInsertedID returns the id generated by the last INSERT on this
// session. If the INSERT added several rows, the id of the first row is
// returned. idColumn must be the table's auto increment primary key.
func (c *Conn) LastInsertedID(ctx context.Context, table string, idColumn string) (int64, error) {
	const op = "LastInsertedID"
	c.log.Enter(op)
	defer c.log.Exit(op)

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = LAST_INSERT_ID()", idColumn, table, idColumn)

	result, err := c.Query(ctx, query)
	if err != nil {
		return 0, err
	}

	if len(result) == 0 || len(result[0]) == 0 {
		err := fmt.Errorf("table %s: no row with %s = LAST_INSERT_ID(): no insert on this session or column is not the auto increment primary key", table, idColumn)
		return 0, c.fail(op, "reading last id", ErrNotFound, err, "session", c.session)
	}

	id, err := toInt64(result[0][0])
	if err != nil {
		return 0, c.fail(op, "reading last id", ErrExecution, err, "session", c.session)
	}

	c.log.Info("last id", "session", c.session, "table", table, "id", id)

	return id, nil
}

// ExecuteInsert builds a multi row INSERT and executes it.
func (c *Conn) ExecuteInsert(ctx context.Context, table string, columns []string, rows [][]Value) (int64, error) {
	const op = "ExecuteInsert"
	c.log.Enter(op)
	defer c.log.Exit(op)

	c.log.Info("insert", "session", c.session, "table", table, "columns", columns, "rows", len(rows))

	query, err := c.builder.Insert(table, columns, rows)
	if err != nil {
		c.log.Error("building insert", err, "session", c.session, "table", table)
		return 0, err
	}

	return c.ExecuteStatement(ctx, query)
}

// ExecuteInsertRow builds a single row INSERT and executes it.
func (c *Conn) ExecuteInsertRow(ctx context.Context, table string, columns []string, row []Value) (int64, error) {
	return c.ExecuteInsert(ctx, table, columns, [][]Value{row})
}

// UpdateTimestampColumn sets column to the datetime expression for the row
// matching idColumn. expr must already be valid SQL, such as the result of
// NowExpr, and is not quoted.
func (c *Conn) UpdateTimestampColumn(ctx context.Context, table string, column string, expr string, idColumn string, idValue Value) (int64, error) {
	const op = "UpdateTimestampColumn"
	c.log.Enter(op)
	defer c.log.Exit(op)

	if idValue == nil {
		idValue = Null()
	}

	query := fmt.Sprintf("\nUPDATE %s\n\tSET %s = %s\n\tWHERE %s = %s", table, column, expr, idColumn, idValue.SQL())

	return c.ExecuteStatement(ctx, query)
}

// UpdateFinishedAt sets the FinishedAt column for the row matching idColumn.
func (c *Conn) UpdateFinishedAt(ctx context.Context, table string, expr string, idColumn string, idValue Value) (int64, error) {
	return c.UpdateTimestampColumn(ctx, table, "FinishedAt", expr, idColumn, idValue)
}

// =============================================================================

// fail logs the failure and returns it as a package error.
func (c *Conn) fail(op string, msg string, kind error, err error, keysAndValues ...any) error {
	c.log.Error(msg, err, keysAndValues...)
	return &Error{Kind: kind, Op: op, Err: err}
}

func (c *Conn) notConnected(op string) error {
	return c.fail(op, "database is not connected", ErrConnection, errors.New("database is not connected"))
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("id %d overflows int64", v)
		}
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}

	return 0, fmt.Errorf("unexpected id type %T", v)
}
