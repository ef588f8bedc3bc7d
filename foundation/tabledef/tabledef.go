// Package tabledef answers questions about a table's columns by scanning the
// lines of its CREATE TABLE statement. A definition is stored as an ordered
// list of fragments, one per line as authored:
//
//	{
//	  "BET_Link": [
//	    "CREATE TABLE BET_Link(",
//	    "LinkID INT AUTO_INCREMENT PRIMARY KEY,",
//	    "ScanProcessID INT NOT NULL,",
//	    "CreatedAt TIMESTAMP NULL);"
//	  ]
//	}
//
// The scan is keyword matching, not SQL parsing. Callers should stay on the
// named queries so the scanner can be replaced without touching them.
package tabledef

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Set of errors returned by the package.
var (
	ErrNotFound    = errors.New("table definition not found")
	ErrMalformed   = errors.New("malformed table definition")
	ErrUnknownKind = errors.New("unknown column kind")
)

// Column listings selectable by name.
const (
	KindAll     = "all"
	KindNotNull = "notnull"
	KindNonPK   = "nopk"
)

// Marker sets used by the named queries.
var (
	primaryKeyMarkers = []string{"AUTO_INCREMENT", "PRIMARY KEY", "NOW()", "CREATE TABLE"}
	createMarkers     = []string{"CREATE TABLE"}
	notNullMarkers    = []string{"NOT NULL"}
	pkMarkers         = []string{"PRIMARY KEY"}
)

const createTable = "CREATE TABLE "

// Logger is the set of events a Table reports while it works.
type Logger interface {
	Enter(op string)
	Exit(op string)
	Info(msg string, keysAndValues ...any)
	Warning(msg string, keysAndValues ...any)
	Error(msg string, err error, keysAndValues ...any)
}

// Table provides column introspection for a single table. Every query
// reloads the definition from its source.
type Table struct {
	name string
	src  Source
	log  Logger
}

// New constructs a Table for the named definition.
func New(name string, src Source, log Logger) *Table {
	return &Table{
		name: name,
		src:  src,
		log:  log,
	}
}

// Name returns the key the definition is stored under.
func (t *Table) Name() string {
	return t.name
}

// Load returns the fragments for the table. The first fragment must be the
// CREATE TABLE line.
func (t *Table) Load() ([]string, error) {
	fragments, err := t.src.Fragments(t.name)
	if err != nil {
		t.log.Error("loading table definition", err, "table", t.name)
		return nil, err
	}

	if len(fragments) == 0 {
		err := fmt.Errorf("table %q: no fragments: %w", t.name, ErrMalformed)
		t.log.Error("loading table definition", err, "table", t.name)
		return nil, err
	}

	if _, ok := parseTableName(fragments[0]); !ok {
		err := fmt.Errorf("table %q: first fragment %q is not a CREATE TABLE line: %w", t.name, fragments[0], ErrMalformed)
		t.log.Error("loading table definition", err, "table", t.name)
		return nil, err
	}

	return fragments, nil
}

// Definition renders the fragments as DDL text: the first line as is and
// every following line indented by a tab.
func (t *Table) Definition() (string, error) {
	fragments, err := t.Load()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, fragment := range fragments {
		if i > 0 {
			sb.WriteByte('\t')
		}
		sb.WriteString(fragment)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// Print writes the rendered definition to w.
func (t *Table) Print(w io.Writer) error {
	def, err := t.Definition()
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, def)
	return err
}

// Columns returns the names of the columns whose fragment contains none of
// the exclude markers and, when require is not empty, at least one of the
// require markers. Matching ignores case.
func (t *Table) Columns(exclude []string, require []string) ([]string, error) {
	const op = "Columns"
	t.log.Enter(op)
	defer t.log.Exit(op)

	fragments, err := t.Load()
	if err != nil {
		return nil, err
	}

	columns := scanColumns(fragments, exclude, require)
	t.log.Info("columns", "table", t.name, "exclude", exclude, "require", require, "columns", columns)

	return columns, nil
}

// NotNullColumnsExcludingPrimaryKey returns the NOT NULL columns that are
// not generated by the database.
func (t *Table) NotNullColumnsExcludingPrimaryKey() ([]string, error) {
	return t.Columns(primaryKeyMarkers, notNullMarkers)
}

// NonPrimaryKeyColumns returns the columns that are not generated by the
// database.
func (t *Table) NonPrimaryKeyColumns() ([]string, error) {
	return t.Columns(primaryKeyMarkers, nil)
}

// AllColumns returns every column in definition order.
func (t *Table) AllColumns() ([]string, error) {
	return t.Columns(createMarkers, nil)
}

// ColumnsOf returns the named column listing. An empty kind means all.
func (t *Table) ColumnsOf(kind string) ([]string, error) {
	switch kind {
	case KindAll, "":
		return t.AllColumns()
	case KindNotNull:
		return t.NotNullColumnsExcludingPrimaryKey()
	case KindNonPK:
		return t.NonPrimaryKeyColumns()
	}

	return nil, fmt.Errorf("kind %q: %w", kind, ErrUnknownKind)
}

// TableName returns the name declared on the CREATE TABLE line.
func (t *Table) TableName() (string, error) {
	fragments, err := t.Load()
	if err != nil {
		return "", err
	}

	name, _ := parseTableName(fragments[0])
	return name, nil
}

// PrimaryKeyColumn returns the name of the primary key column. A definition
// should hold exactly one; when it holds several their names are
// concatenated.
func (t *Table) PrimaryKeyColumn() (string, error) {
	columns, err := t.Columns(nil, pkMarkers)
	if err != nil {
		return "", err
	}

	if len(columns) != 1 {
		t.log.Warning("expected one primary key column", "table", t.name, "columns", columns)
	}

	return strings.Join(columns, ""), nil
}

// =============================================================================

func scanColumns(fragments []string, exclude []string, require []string) []string {
	columns := []string{}
	for _, fragment := range fragments {
		row := strings.ReplaceAll(fragment, "\t", " ")
		upper := strings.ToUpper(row)

		if containsAny(upper, exclude) {
			continue
		}

		if len(require) > 0 && !containsAny(upper, require) {
			continue
		}

		columns = append(columns, columnName(row))
	}

	return columns
}

func containsAny(upper string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(upper, strings.ToUpper(marker)) {
			return true
		}
	}
	return false
}

// columnName returns the fragment up to its first whitespace.
func columnName(row string) string {
	row = strings.TrimLeftFunc(row, unicode.IsSpace)
	if i := strings.IndexFunc(row, unicode.IsSpace); i >= 0 {
		return row[:i]
	}
	return row
}

// parseTableName extracts the name between CREATE TABLE and the opening
// parenthesis.
func parseTableName(fragment string) (string, bool) {
	start := indexFold(fragment, createTable)
	if start < 0 {
		return "", false
	}

	rest := fragment[start+len(createTable):]
	end := strings.Index(rest, "(")
	if end < 0 {
		return "", false
	}

	name := strings.TrimSpace(rest[:end])
	if name == "" {
		return "", false
	}

	return name, true
}

// indexFold is strings.Index ignoring case. Offsets always refer to s,
// since case mapping can change a string's byte length.
func indexFold(s string, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}
