package repository

import (
	"strconv"
	"strings"
)

// Supported store types.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// dialect captures the SQL differences between the supported stores.
// Queries are written with ? placeholders and rebound per dialect.
type dialect struct {
	name string
}

// rebind rewrites ? placeholders to $1, $2, ... for PostgreSQL.
func (d dialect) rebind(query string) string {
	if d.name != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// insertIgnore builds an insert that silently skips rows whose primary key
// already exists.
func (d dialect) insertIgnore(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")

	var query string
	if d.name == DialectMySQL {
		query = "INSERT IGNORE INTO " + table + " (" + cols + ") VALUES (" + placeholders + ")"
	} else {
		query = "INSERT INTO " + table + " (" + cols + ") VALUES (" + placeholders + ") ON CONFLICT (id) DO NOTHING"
	}
	return d.rebind(query)
}
