package tablegrp

type tableList struct {
	Tables []string `json:"tables"`
}

type columnSets struct {
	All     []string `json:"all"`
	NotNull []string `json:"not_null"`
	NonPK   []string `json:"non_pk"`
}

type tableInfo struct {
	Key        string     `json:"key"`
	Name       string     `json:"name"`
	PrimaryKey string     `json:"primary_key"`
	Columns    columnSets `json:"columns"`
	DDL        string     `json:"ddl"`
}

type columnList struct {
	Table   string   `json:"table"`
	Kind    string   `json:"kind"`
	Columns []string `json:"columns"`
}
