package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/garagedev/sltcraft/internal/domain"
)

// scanRows drains a SELECT * result set into generic rows.
func scanRows(rows *sql.Rows) ([]domain.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var out []domain.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r := domain.Row{Columns: make([]string, len(cols)), Values: values}
		copy(r.Columns, cols)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SelectAll returns every row of table in rowid order.
func (db *DB) SelectAll(table string) ([]domain.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s ORDER BY rowid", Quote(table))
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s in %s: %w", table, db.Name(), err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// SelectWhere returns all rows of table where col = val, in rowid order.
func (db *DB) SelectWhere(table, col string, val any) ([]domain.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s=? ORDER BY rowid", Quote(table), Quote(col))
	rows, err := db.Query(query, val)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s=%v in %s: %w", table, col, val, db.Name(), err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// SelectRange returns all rows of table where lo <= col < hi, ordered by col.
// Used for base-block lookups (parentID*1000 .. +999).
func (db *DB) SelectRange(table, col string, lo, hi int64) ([]domain.Row, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s>=? AND %s<? ORDER BY %s",
		Quote(table), Quote(col), Quote(col), Quote(col))
	rows, err := db.Query(query, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s range in %s: %w", table, col, db.Name(), err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// SelectOne returns the first row of table where col = val, or a false ok.
func (db *DB) SelectOne(table, col string, val any) (domain.Row, bool, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s=? LIMIT 1", Quote(table), Quote(col))
	rows, err := db.Query(query, val)
	if err != nil {
		return domain.Row{}, false, fmt.Errorf("failed to query %s.%s=%v in %s: %w", table, col, val, db.Name(), err)
	}
	defer rows.Close()
	found, err := scanRows(rows)
	if err != nil || len(found) == 0 {
		return domain.Row{}, false, err
	}
	return found[0], true, nil
}

// RowExists reports whether table has any row with col = val.
func (db *DB) RowExists(table, col string, val any) (bool, error) {
	var one int
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s=? LIMIT 1", Quote(table), Quote(col))
	err := db.QueryRow(query, val).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe %s.%s=%v in %s: %w", table, col, val, db.Name(), err)
	}
	return true, nil
}

// Execer abstracts *sql.Tx and *DB for the write helpers, so the clone
// engine can run every insert inside one transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertRow inserts a row into table, keeping only the columns the target
// table actually has. Donor and target schemas can drift between game
// builds; extra donor columns are dropped, missing ones take table defaults.
func InsertRow(ex Execer, table string, targetCols []string, row domain.Row) error {
	target := make(map[string]bool, len(targetCols))
	for _, c := range targetCols {
		target[c] = true
	}

	var cols []string
	var vals []any
	for i, c := range row.Columns {
		if target[c] {
			cols = append(cols, Quote(c))
			vals = append(vals, row.Values[i])
		}
	}
	if len(cols) == 0 {
		return fmt.Errorf("no insertable columns for table %s", table)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		Quote(table), strings.Join(cols, ","), placeholders)
	if _, err := ex.Exec(query, vals...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

// DeleteWhere removes rows of table where col = val. Returns rows deleted.
func DeleteWhere(ex Execer, table, col string, val any) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s=?", Quote(table), Quote(col))
	res, err := ex.Exec(query, val)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteRange removes rows of table where lo <= col < hi.
func DeleteRange(ex Execer, table, col string, lo, hi int64) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s>=? AND %s<?", Quote(table), Quote(col), Quote(col))
	res, err := ex.Exec(query, lo, hi)
	if err != nil {
		return 0, fmt.Errorf("failed to delete range from %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
