package repository

import "fmt"

// Open connects to the store of the given type. dsn is a file path for
// SQLite and a connection string otherwise. The schema is not migrated.
func Open(storeType, dsn string) (*SQLRepository, error) {
	switch storeType {
	case DialectSQLite:
		return NewSQLiteRepository(dsn)
	case DialectPostgres:
		return NewPostgresRepository(dsn)
	case DialectMySQL:
		return NewMySQLRepository(dsn)
	default:
		return nil, fmt.Errorf("unsupported store type %q", storeType)
	}
}
