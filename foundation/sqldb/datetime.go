package sqldb

import (
	"time"
)

// DefaultMySQLFormat is the STR_TO_DATE format matching DefaultSeparators.
const DefaultMySQLFormat = "%d/%m/%Y %H:%i:%s"

// Separators controls how a datetime is rendered: day/month/year are joined
// by Date, the date and time by Between, and hour/minute/second by Time.
type Separators struct {
	Date    string
	Between string
	Time    string
}

// DefaultSeparators renders datetimes as 31/12/2024 23:59:59.
var DefaultSeparators = Separators{
	Date:    "/",
	Between: " ",
	Time:    ":",
}

// Layout returns the Go time layout for the separators.
func (s Separators) Layout() string {
	return "02" + s.Date + "01" + s.Date + "2006" + s.Between + "15" + s.Time + "04" + s.Time + "05"
}

// MySQLFormat returns the STR_TO_DATE format for the separators.
func (s Separators) MySQLFormat() string {
	return "%d" + s.Date + "%m" + s.Date + "%Y" + s.Between + "%H" + s.Time + "%i" + s.Time + "%s"
}

// NowExpr returns a STR_TO_DATE expression for the current instant.
func NowExpr(sep Separators) string {
	return TimeExpr(time.Now(), sep)
}

// TimeExpr returns a STR_TO_DATE expression for the specified instant.
func TimeExpr(t time.Time, sep Separators) string {
	return TextExpr(t.Format(sep.Layout()), sep.MySQLFormat())
}

// TextExpr returns a STR_TO_DATE expression parsing text with the specified
// MySQL format. The format must be valid for MySQL.
func TextExpr(text string, mysqlFormat string) string {
	return "STR_TO_DATE(" + quote(text) + ", " + quote(mysqlFormat) + ")"
}
