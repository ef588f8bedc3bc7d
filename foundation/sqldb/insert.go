package sqldb

import (
	"fmt"
	"strings"
)

// Insert constructs a multi row INSERT statement. No I/O is performed.
// Every row must have one value per column.
//
//	INSERT INTO Persons
//		(Name, Age)
//	VALUES
//		('Bob',18),
//		('John',null)
func (b Builder) Insert(table string, columns []string, rows [][]Value) (string, error) {
	const op = "Insert"

	if table == "" {
		return "", &Error{Kind: ErrInvalidInsert, Op: op, Err: fmt.Errorf("table name is empty")}
	}

	if len(columns) == 0 {
		return "", &Error{Kind: ErrInvalidInsert, Op: op, Err: fmt.Errorf("table %s: no columns", table)}
	}

	if len(rows) == 0 {
		return "", &Error{Kind: ErrInvalidInsert, Op: op, Err: fmt.Errorf("table %s: no rows", table)}
	}

	var sb strings.Builder
	sb.WriteString("\nINSERT INTO ")
	sb.WriteString(table)
	sb.WriteString("\n\t(")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(")\nVALUES\n")

	for i, row := range rows {
		if len(row) != len(columns) {
			err := fmt.Errorf("table %s: row %d has %d values for %d columns", table, i, len(row), len(columns))
			return "", &Error{Kind: ErrInvalidInsert, Op: op, Err: err}
		}

		if i > 0 {
			sb.WriteString(",\n")
		}

		sb.WriteString("\t(")
		for j, v := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			if v == nil {
				v = Null()
			}
			sb.WriteString(v.SQL())
		}
		sb.WriteByte(')')
	}

	return sb.String(), nil
}

// InsertRow constructs a single row INSERT statement.
func (b Builder) InsertRow(table string, columns []string, row []Value) (string, error) {
	return b.Insert(table, columns, [][]Value{row})
}
