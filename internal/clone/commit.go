package clone

import (
	"database/sql"
	"fmt"

	"github.com/garagedev/sltcraft/internal/db"
	"github.com/garagedev/sltcraft/internal/domain"
)

func commitErr(table string, err error) error {
	return &domain.CommitFailedError{Table: table, Err: err}
}

// commit applies a plan to MAIN in one transaction. Any failure rolls the
// whole operation back and reports which table broke.
func (e *Engine) commit(p *plan) error {
	main := e.cat.Main()

	tx, err := main.DB.Begin()
	if err != nil {
		return &domain.CommitFailedError{Err: err}
	}

	for _, op := range p.ops {
		if err := e.applyOp(tx, op); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return &domain.CommitFailedError{Err: err}
	}
	return nil
}

func (e *Engine) applyOp(tx *sql.Tx, op writeOp) error {
	main := e.cat.Main()
	targetCols, ok := main.Columns(op.table)
	if !ok {
		// Anchored on MAIN during planning; a vanished table means the
		// schema changed under us.
		return commitErr(op.table, fmt.Errorf("table missing from %s", main.Name()))
	}

	var err error
	if op.ranged {
		_, err = db.DeleteRange(tx, op.table, op.delCol, op.delLo, op.delHi)
	} else {
		_, err = db.DeleteWhere(tx, op.table, op.delCol, op.delVal)
	}
	if err != nil {
		return commitErr(op.table, err)
	}

	nextPK := int64(0)
	if op.seqPK != "" {
		nextPK, err = txMaxInt(tx, op.table, op.seqPK)
		if err != nil {
			return commitErr(op.table, err)
		}
	}

	for _, row := range op.rows {
		if op.seqPK != "" {
			nextPK++
			row = row.Clone()
			row.Set(op.seqPK, nextPK)
		}
		if err := db.InsertRow(tx, op.table, targetCols, row); err != nil {
			return commitErr(op.table, err)
		}
	}
	return nil
}

// txMaxInt reads MAX(col) inside the transaction, so sequence keys minted
// here observe rows written earlier in the same operation.
func txMaxInt(tx *sql.Tx, table, col string) (int64, error) {
	var max sql.NullInt64
	query := fmt.Sprintf("SELECT MAX(CAST(%s AS INTEGER)) FROM %s", db.Quote(col), db.Quote(table))
	if err := tx.QueryRow(query).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max %s.%s: %w", table, col, err)
	}
	return max.Int64, nil
}
