// Package db wraps the SQLite driver with the open and introspection
// primitives the catalog and clone engine build on. The databases it opens
// are pre-existing game files; it never creates files or alters schemas.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a SQLite database connection.
type DB struct {
	*sql.DB
	path     string
	writable bool
}

// Open opens an existing SQLite database for writing and applies pragmas.
// Missing files are an error: the engine must never create a new database
// where the caller expected a game file.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s: %w", path, err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// foreign_keys stays off: game schemas declare no constraints and the
	// engine must not introduce enforcement the game never sees.
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}

	return &DB{DB: conn, path: path, writable: true}, nil
}

// OpenReadOnly opens an existing SQLite database in read-only mode. Donor
// databases are only ever opened this way, so a clone cannot mutate them.
func OpenReadOnly(path string) (*DB, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("database not found: %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", abs)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s read-only: %w", path, err)
	}

	return &DB{DB: conn, path: abs, writable: false}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Name returns the base name of the database file.
func (db *DB) Name() string {
	return filepath.Base(db.path)
}

// Writable reports whether the database was opened for writing.
func (db *DB) Writable() bool {
	return db.writable
}

// Tables lists the user tables in the database.
func (db *DB) Tables() ([]string, error) {
	rows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables in %s: %w", db.Name(), err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableExists reports whether a user table exists.
func (db *DB) TableExists(table string) (bool, error) {
	var one int
	err := db.QueryRow(
		"SELECT 1 FROM sqlite_master WHERE type='table' AND name=? AND name NOT LIKE 'sqlite_%' LIMIT 1",
		table).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return true, nil
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

// TableInfo returns the column layout of a table via PRAGMA table_info.
func (db *DB) TableInfo(table string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", Quote(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read table_info for %s: %w", table, err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     sql.NullString
			notnull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table_info row: %w", err)
		}
		cols = append(cols, ColumnInfo{
			Name:       name,
			Type:       typ.String,
			NotNull:    notnull != 0,
			PrimaryKey: pk != 0,
		})
	}
	return cols, rows.Err()
}

// Columns returns just the column names of a table.
func (db *DB) Columns(table string) ([]string, error) {
	info, err := db.TableInfo(table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(info))
	for i, c := range info {
		names[i] = c.Name
	}
	return names, nil
}

// MaxInt returns MAX(CAST(col AS INTEGER)) for a table, or 0 when the table
// or column is absent or empty.
func (db *DB) MaxInt(table, col string) (int64, error) {
	ok, err := db.TableExists(table)
	if err != nil || !ok {
		return 0, err
	}
	cols, err := db.Columns(table)
	if err != nil {
		return 0, err
	}
	if !contains(cols, col) {
		return 0, nil
	}

	var max sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(CAST(%s AS INTEGER)) FROM %s", Quote(col), Quote(table))
	if err := db.QueryRow(query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max %s.%s in %s: %w", table, col, db.Name(), err)
	}
	return max.Int64, nil
}

// Quote wraps an identifier in double quotes for use in dynamic SQL. Table
// and column names come from sqlite_master, never from user input.
func Quote(ident string) string {
	return `"` + ident + `"`
}

func contains(cols []string, want string) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}
