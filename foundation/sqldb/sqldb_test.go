package sqldb_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ardanlabs/chaindb/foundation/sqldb"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
)

// recorder captures the events written by a Conn.
type recorder struct {
	events []string
}

func (r *recorder) Enter(op string) {
	r.events = append(r.events, "enter:"+op)
}

func (r *recorder) Exit(op string) {
	r.events = append(r.events, "exit:"+op)
}

func (r *recorder) Info(msg string, keysAndValues ...any) {
	r.events = append(r.events, "info:"+msg)
}

func (r *recorder) Warning(msg string, keysAndValues ...any) {
	r.events = append(r.events, "warning:"+msg)
}

func (r *recorder) Error(msg string, err error, keysAndValues ...any) {
	r.events = append(r.events, "error:"+msg)
}

func (r *recorder) count(prefix string) int {
	var n int
	for _, e := range r.events {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (r *recorder) has(event string) bool {
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

var validConfig = sqldb.Config{
	Host: "localhost",
	Port: "3306",
	User: "bet",
	Name: "bet",
}

// newConn constructs a Conn backed by sqlmock and connects it.
func newConn(t *testing.T) (*sqldb.Conn, sqlmock.Sqlmock, *recorder) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct sqlmock: %v", failed, err)
	}

	open := func(cfg sqldb.Config) (*sqlx.DB, error) {
		return sqlx.NewDb(db, "mysql"), nil
	}

	rec := recorder{}
	conn := sqldb.New(sqldb.StaticParams(validConfig), &rec, sqldb.WithOpen(open))

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("\t%s\tShould be able to connect: %v", failed, err)
	}

	return conn, mock, &rec
}

func disconnect(t *testing.T, conn *sqldb.Conn, mock sqlmock.Sqlmock) {
	t.Helper()

	mock.ExpectClose()
	if err := conn.Disconnect(); err != nil {
		t.Fatalf("\t%s\tShould be able to disconnect: %v", failed, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("\t%s\tShould meet all database expectations: %v", failed, err)
	}
}

// =============================================================================

func Test_ConnectLifecycle(t *testing.T) {
	t.Log("Given the need to open and close a session more than once.")
	{
		conn, mock, rec := newConn(t)

		if !conn.IsConnected() || conn.SessionID() == "" {
			t.Fatalf("\t%s\tShould be connected with a session id.", failed)
		}
		t.Logf("\t%s\tShould be connected with a session id.", success)

		session := conn.SessionID()
		if err := conn.Connect(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould not fail on a second connect: %v", failed, err)
		}
		t.Logf("\t%s\tShould not fail on a second connect.", success)

		if n := rec.count("warning:"); n != 1 {
			t.Fatalf("\t%s\tShould emit exactly one warning: got %d", failed, n)
		}
		t.Logf("\t%s\tShould emit exactly one warning.", success)

		if !conn.IsConnected() || conn.SessionID() != session {
			t.Fatalf("\t%s\tShould keep the original session.", failed)
		}
		t.Logf("\t%s\tShould keep the original session.", success)

		disconnect(t, conn, mock)

		if conn.IsConnected() || conn.SessionID() != "" {
			t.Fatalf("\t%s\tShould be disconnected.", failed)
		}
		t.Logf("\t%s\tShould be disconnected.", success)

		if err := conn.Disconnect(); err != nil {
			t.Fatalf("\t%s\tShould not fail on a second disconnect: %v", failed, err)
		}

		if n := rec.count("warning:"); n != 2 {
			t.Fatalf("\t%s\tShould warn on a second disconnect: got %d warnings", failed, n)
		}
		t.Logf("\t%s\tShould warn on a second disconnect.", success)
	}
}

func Test_ConnectFailure(t *testing.T) {
	refused := errors.New("access denied for user 'bet'@'localhost'")

	type table struct {
		name   string
		params sqldb.ParamSource
		open   sqldb.OpenFunc
		kind   error
	}

	tt := []table{
		{
			name:   "refused",
			params: sqldb.StaticParams(validConfig),
			open:   func(sqldb.Config) (*sqlx.DB, error) { return nil, refused },
			kind:   sqldb.ErrConnection,
		},
		{
			name:   "invalid",
			params: sqldb.StaticParams(sqldb.Config{Host: "localhost", Port: "db"}),
			open:   func(sqldb.Config) (*sqlx.DB, error) { return nil, errors.New("should not open") },
			kind:   sqldb.ErrConnection,
		},
	}

	t.Log("Given the need to report a failed connect.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen the connect is %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					rec := recorder{}
					conn := sqldb.New(tst.params, &rec, sqldb.WithOpen(tst.open))

					err := conn.Connect(context.Background())
					if !errors.Is(err, tst.kind) {
						t.Fatalf("\t%s\tTest %d:\tShould get a connection error: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get a connection error.", success, testID)

					if conn.IsConnected() {
						t.Fatalf("\t%s\tTest %d:\tShould not be connected.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not be connected.", success, testID)

					if rec.count("error:") != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould log the failure once: %v", failed, testID, rec.events)
					}
					t.Logf("\t%s\tTest %d:\tShould log the failure once.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ConnectValidation(t *testing.T) {
	t.Log("Given the need to explain invalid connection parameters.")
	{
		conn := sqldb.New(sqldb.StaticParams(sqldb.Config{Host: "localhost", Port: "db"}), &recorder{})

		err := conn.Connect(context.Background())

		var fields sqldb.FieldErrors
		if !errors.As(err, &fields) {
			t.Fatalf("\t%s\tShould get field errors: %v", failed, err)
		}
		t.Logf("\t%s\tShould get field errors.", success)

		got := make(map[string]bool)
		for _, f := range fields {
			got[f.Field] = true
		}

		for _, field := range []string{"port", "user", "name"} {
			if !got[field] {
				t.Errorf("\t%s\tShould report the %s field: %v", failed, field, fields)
			}
		}
		t.Logf("\t%s\tShould report each invalid field by its config name.", success)
	}
}

func Test_ExecuteStatement(t *testing.T) {
	t.Log("Given the need to execute statements on the session.")
	{
		conn, mock, rec := newConn(t)
		ctx := context.Background()

		stmt := "UPDATE Persons SET Age = 19 WHERE Age = 18"
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("COMMIT").WillReturnResult(sqlmock.NewResult(0, 0))

		rows, err := conn.ExecuteStatement(ctx, stmt)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to execute: %v", failed, err)
		}

		if rows != 3 {
			t.Fatalf("\t%s\tShould get the affected rows: got %d", failed, rows)
		}
		t.Logf("\t%s\tShould get the affected rows.", success)

		if !rec.has("info:affected rows") || !rec.has("info:executing statement") {
			t.Fatalf("\t%s\tShould log the statement and the row count: %v", failed, rec.events)
		}
		t.Logf("\t%s\tShould log the statement and the row count.", success)

		if err := conn.Commit(ctx); err != nil {
			t.Fatalf("\t%s\tShould be able to commit: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to commit.", success)

		disconnect(t, conn, mock)
	}
}

func Test_ExecuteFailure(t *testing.T) {
	t.Log("Given the need to surface a failed statement.")
	{
		conn, mock, rec := newConn(t)
		ctx := context.Background()

		duplicate := errors.New("Error 1062: Duplicate entry '1' for key 'PRIMARY'")
		mock.ExpectExec("INSERT INTO T (ID) VALUES (1)").WillReturnError(duplicate)
		mock.ExpectExec("ROLLBACK").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := conn.ExecuteStatement(ctx, "INSERT INTO T (ID) VALUES (1)")
		if !errors.Is(err, sqldb.ErrExecution) {
			t.Fatalf("\t%s\tShould get ErrExecution: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrExecution.", success)

		if !errors.Is(err, duplicate) {
			t.Fatalf("\t%s\tShould keep the driver error: %v", failed, err)
		}
		t.Logf("\t%s\tShould keep the driver error.", success)

		if rec.count("error:") != 1 {
			t.Fatalf("\t%s\tShould log the failure once: %v", failed, rec.events)
		}
		t.Logf("\t%s\tShould log the failure once.", success)

		if err := conn.Rollback(ctx); err != nil {
			t.Fatalf("\t%s\tShould be able to roll back after a failure: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to roll back after a failure.", success)

		disconnect(t, conn, mock)
	}
}

func Test_NotConnected(t *testing.T) {
	t.Log("Given the need to reject work on a closed session.")
	{
		conn := sqldb.New(sqldb.StaticParams(validConfig), &recorder{})
		ctx := context.Background()

		if _, err := conn.ExecuteStatement(ctx, "COMMIT"); !errors.Is(err, sqldb.ErrConnection) {
			t.Fatalf("\t%s\tShould get ErrConnection from exec: %v", failed, err)
		}

		if _, err := conn.Query(ctx, "SELECT 1"); !errors.Is(err, sqldb.ErrConnection) {
			t.Fatalf("\t%s\tShould get ErrConnection from query: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrConnection.", success)
	}
}

func Test_Query(t *testing.T) {
	t.Log("Given the need to read rows from the session.")
	{
		conn, mock, _ := newConn(t)
		ctx := context.Background()

		created := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"PersonID", "Name", "CreatedAt"}).
			AddRow(int64(1), []byte("Bob"), created).
			AddRow(int64(2), nil, created)
		mock.ExpectQuery("SELECT * FROM Persons").WillReturnRows(rows)

		got, err := conn.Query(ctx, "SELECT * FROM Persons")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to query: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to query.", success)

		exp := sqldb.QueryResult{
			{int64(1), "Bob", created},
			{int64(2), nil, created},
		}
		if diff := cmp.Diff(exp, got); diff != "" {
			t.Fatalf("\t%s\tShould get every row in order. Diff:\n%s", failed, diff)
		}
		t.Logf("\t%s\tShould get every row in order.", success)

		disconnect(t, conn, mock)
	}
}

func Test_QueryWithoutResultSet(t *testing.T) {
	t.Log("Given the need to reject a query that returns no result set.")
	{
		conn, mock, _ := newConn(t)

		mock.ExpectQuery("COMMIT").WillReturnRows(sqlmock.NewRows([]string{}))

		_, err := conn.Query(context.Background(), "COMMIT")
		if !errors.Is(err, sqldb.ErrExecution) {
			t.Fatalf("\t%s\tShould get ErrExecution: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrExecution.", success)

		disconnect(t, conn, mock)
	}
}

func Test_LastInsertedID(t *testing.T) {
	const query = "SELECT PersonID FROM Persons WHERE PersonID = LAST_INSERT_ID()"

	t.Log("Given the need to read the last generated id.")
	{
		t.Logf("\tTest 0:\tWhen no insert happened on the session.")
		{
			conn, mock, _ := newConn(t)

			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"PersonID"}))

			_, err := conn.LastInsertedID(context.Background(), "Persons", "PersonID")
			if !errors.Is(err, sqldb.ErrNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould get ErrNotFound: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get ErrNotFound.", success)

			disconnect(t, conn, mock)
		}

		t.Logf("\tTest 1:\tWhen a row was inserted on the session.")
		{
			conn, mock, _ := newConn(t)
			ctx := context.Background()

			b := conn.Builder()
			insert, err := b.InsertRow("Persons", []string{"Name", "Age"}, b.Values("Bob", 18))
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to build the insert: %v", failed, err)
			}

			mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(42, 1))
			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"PersonID"}).AddRow(int64(42)))

			if _, err := conn.ExecuteInsertRow(ctx, "Persons", []string{"Name", "Age"}, b.Values("Bob", 18)); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to insert: %v", failed, err)
			}

			id, err := conn.LastInsertedID(ctx, "Persons", "PersonID")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read the id: %v", failed, err)
			}

			if id != 42 {
				t.Fatalf("\t%s\tTest 1:\tShould get the inserted id: got %d", failed, id)
			}
			t.Logf("\t%s\tTest 1:\tShould get the inserted id.", success)

			disconnect(t, conn, mock)
		}

		t.Logf("\tTest 2:\tWhen the unsigned id does not fit in an int64.")
		{
			conn, mock, _ := newConn(t)

			mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"PersonID"}).AddRow(uint64(math.MaxUint64)))

			_, err := conn.LastInsertedID(context.Background(), "Persons", "PersonID")
			if !errors.Is(err, sqldb.ErrExecution) {
				t.Fatalf("\t%s\tTest 2:\tShould get ErrExecution: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould get ErrExecution.", success)

			disconnect(t, conn, mock)
		}
	}
}

func Test_ExecuteInsert(t *testing.T) {
	t.Log("Given the need to insert several rows.")
	{
		conn, mock, _ := newConn(t)
		ctx := context.Background()
		b := conn.Builder()

		rows := [][]sqldb.Value{
			b.Values("Bob", 18),
			b.Values("John", "null"),
			b.Values("Tom", "unknown"),
		}

		exp := "\nINSERT INTO Persons\n\t(Name, Age)\nVALUES\n\t('Bob',18),\n\t('John',null),\n\t('Tom','unknown')"
		mock.ExpectExec(exp).WillReturnResult(sqlmock.NewResult(1, 3))

		n, err := conn.ExecuteInsert(ctx, "Persons", []string{"Name", "Age"}, rows)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to insert: %v", failed, err)
		}

		if n != 3 {
			t.Fatalf("\t%s\tShould insert three rows: got %d", failed, n)
		}
		t.Logf("\t%s\tShould insert three rows.", success)

		_, err = conn.ExecuteInsert(ctx, "Persons", []string{"Name", "Age"}, [][]sqldb.Value{b.Values("Bob")})
		if !errors.Is(err, sqldb.ErrInvalidInsert) {
			t.Fatalf("\t%s\tShould reject a short row before executing: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a short row before executing.", success)

		disconnect(t, conn, mock)
	}
}

func Test_UpdateFinishedAt(t *testing.T) {
	t.Log("Given the need to stamp a row with a datetime.")
	{
		conn, mock, _ := newConn(t)

		expr := sqldb.TimeExpr(time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC), sqldb.DefaultSeparators)
		exp := fmt.Sprintf("\nUPDATE ScanProcess\n\tSET FinishedAt = %s\n\tWHERE ScanProcessID = 7", expr)
		mock.ExpectExec(exp).WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := conn.UpdateFinishedAt(context.Background(), "ScanProcess", expr, "ScanProcessID", sqldb.Int(7))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to update: %v", failed, err)
		}

		if n != 1 {
			t.Fatalf("\t%s\tShould update one row: got %d", failed, n)
		}
		t.Logf("\t%s\tShould update one row.", success)

		disconnect(t, conn, mock)
	}
}
