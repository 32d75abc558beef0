package clone

import (
	"fmt"

	"github.com/garagedev/sltcraft/internal/alloc"
	"github.com/garagedev/sltcraft/internal/closure"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/schema"
)

// writeOp is one table's worth of planned writes: a replace-semantics
// delete followed by the inserts. Rows are fully rekeyed before they enter
// a writeOp; the commit step only executes.
type writeOp struct {
	table string

	delCol string
	delVal int64
	// ranged deletes clear [delLo, delHi) on delCol instead of delCol=delVal.
	delLo, delHi int64
	ranged       bool

	rows []domain.Row

	// seqPK names a primary-key column assigned MAX+1 inside the commit
	// transaction, one per row. Used for Combo tables keyed by a global
	// sequence rather than the car's base-block.
	seqPK string
}

// plan is the complete set of writes one clone will apply to MAIN.
type plan struct {
	ops []writeOp
}

func (p *plan) rowCount() int {
	n := 0
	for _, op := range p.ops {
		n += len(op.rows)
	}
	return n
}

func (p *plan) tables() map[string]int {
	out := make(map[string]int, len(p.ops))
	for _, op := range p.ops {
		if len(op.rows) > 0 {
			out[op.table] += len(op.rows)
		}
	}
	return out
}

// planCar rekeys a car closure onto newID and lays out the write order:
// root, body block, reassigned drivetrains, scoped tables, nested engine,
// combo rows, content offer link.
func (e *Engine) planCar(cl *closure.Closure, newID int64, opts domain.CloneOptions) (*plan, error) {
	main := e.cat.Main()
	sub := newSubstitution(cl.RootID*domain.BaseBlockSize, newID*domain.BaseBlockSize)
	p := &plan{}

	// Body rows first: their new ids seed the substitution every other
	// table's CarBodyID references resolve through.
	bodyIDCol := ""
	if cols, ok := main.Columns("Data_CarBody"); ok {
		bodyIDCol = firstColumn(cols, "Id", "ID", "CarBodyID", "CarBodyId")
	}
	block := alloc.NewBlock(newID)
	var bodyRows []domain.Row
	if bodyIDCol != "" {
		for _, row := range cl.BodyRows {
			oldID, ok := row.Int(bodyIDCol)
			if !ok {
				continue
			}
			var rowID int64
			if alloc.InBlock(oldID, cl.RootID) {
				rowID = block.Keep(alloc.Offset(oldID, cl.RootID))
			} else {
				rowID = block.Next()
			}
			sub.explicit[oldID] = rowID
			bodyRows = append(bodyRows, row)
		}
	}
	newBodyID := newID * domain.BaseBlockSize
	if mapped, ok := sub.explicit[cl.DonorBodyID]; ok {
		newBodyID = mapped
	} else if cl.DonorBodyID > 0 {
		sub.explicit[cl.DonorBodyID] = newBodyID
	}

	// Drivetrain rows are shared with the donor unless reassignment was
	// asked for; then every referenced row is copied into the new block.
	var drivetrainRows []domain.Row
	dtIDCol := ""
	if opts.ReassignDrivetrainIDs {
		var err error
		drivetrainRows, dtIDCol, err = e.reassignDrivetrains(cl, sub, block)
		if err != nil {
			return nil, err
		}
	}

	// Nested stock engine ids must be in the substitution before any
	// upgrade row is rekeyed, so the car's engine assignment follows it.
	newEngineID := int64(0)
	if cl.StockEngine != nil {
		var err error
		newEngineID, err = e.alloc.Allocate(domain.KindEngine, 0)
		if err != nil {
			return nil, err
		}
		sub.engines[cl.StockEngineID] = newEngineID
	}

	// Root Data_Car row.
	carTable := "Data_Car"
	carCols, _ := main.Columns(carTable)
	carIDCol := schema.IDColumn(domain.KindCar, carCols)
	forced := map[string]int64{carIDCol: newID}
	if yc := schema.YearColumn(carCols); yc != "" {
		forced[yc] = opts.YearMarker
	}
	p.ops = append(p.ops, writeOp{
		table:  carTable,
		delCol: carIDCol,
		delVal: newID,
		rows:   []domain.Row{sub.rekeyRow(cl.RootRow, forced)},
	})

	// Body block, replace-semantics over the whole new range.
	if bodyIDCol != "" {
		op := writeOp{
			table:  "Data_CarBody",
			delCol: bodyIDCol,
			delLo:  newID * domain.BaseBlockSize,
			delHi:  (newID + 1) * domain.BaseBlockSize,
			ranged: true,
		}
		for _, row := range bodyRows {
			oldID, _ := row.Int(bodyIDCol)
			op.rows = append(op.rows, sub.rekeyRow(row, map[string]int64{bodyIDCol: sub.explicit[oldID]}))
		}
		p.ops = append(p.ops, op)
	}

	if len(drivetrainRows) > 0 {
		op := writeOp{
			table:  "Data_Drivetrain",
			delCol: dtIDCol,
			delLo:  newID * domain.BaseBlockSize,
			delHi:  (newID + 1) * domain.BaseBlockSize,
			ranged: true,
		}
		for _, row := range drivetrainRows {
			oldID, _ := row.Int(dtIDCol)
			op.rows = append(op.rows, sub.rekeyRow(row, map[string]int64{dtIDCol: sub.drivetrains[oldID]}))
		}
		p.ops = append(p.ops, op)
	}

	// Scoped tables, in catalog order.
	for _, group := range cl.Scoped {
		class, _ := main.Classification(group.Table)
		scopeVal := newID
		if class.Scope == domain.ScopeCarBody {
			scopeVal = newBodyID
		}
		op := writeOp{table: group.Table, delCol: group.ScopeColumn, delVal: scopeVal}
		for _, row := range group.Rows {
			op.rows = append(op.rows, sub.rekeyRow(row, map[string]int64{group.ScopeColumn: scopeVal}))
		}
		p.ops = append(p.ops, op)
	}

	// Nested engine, rekeyed through its own substitution.
	if cl.StockEngine != nil {
		engOps, err := e.planEngine(cl.StockEngine, newEngineID)
		if err != nil {
			return nil, err
		}
		p.ops = append(p.ops, engOps...)
	}

	// Combo rows. Base-block keys remap through the substitution; sequence
	// keys are minted inside the commit transaction.
	for _, group := range cl.Combos {
		combo, ok := e.pol.Combo(group.Table)
		if !ok {
			continue
		}
		op := writeOp{table: group.Table, delCol: "Ordinal", delVal: newID}
		if !combo.BaseBlock {
			op.seqPK = combo.KeyColumn
		}
		for _, row := range group.Rows {
			rekeyed := sub.rekeyRow(row, map[string]int64{"Ordinal": newID})
			clearSeqKey(&rekeyed, op.seqPK)
			op.rows = append(op.rows, rekeyed)
		}
		p.ops = append(p.ops, op)
	}

	// Content offer link row, one per cloned car.
	if op, ok := e.contentOfferOp(newID); ok {
		p.ops = append(p.ops, op)
	}

	return p, nil
}

// clearSeqKey drops the stale primary key value so the commit step can
// mint a fresh one without fighting a UNIQUE constraint.
func clearSeqKey(row *domain.Row, seqPK string) {
	if seqPK == "" {
		return
	}
	if i := row.Index(seqPK); i >= 0 {
		row.Values[i] = nil
	}
}

// planEngine rekeys an engine closure onto newID. Torque curves inside the
// donor engine's id blocks copy to the matching offset in the new blocks;
// curves outside any block are shared, never copied.
func (e *Engine) planEngine(cl *closure.Closure, newID int64) ([]writeOp, error) {
	main := e.cat.Main()
	sub := newSubstitution(cl.RootID*domain.BaseBlockSize, newID*domain.BaseBlockSize)
	sub.engines[cl.RootID] = newID

	// Donor curves live in one of two id blocks, engineID*1000 or
	// engineID*100 wide. Each copies to the matching offset in the new
	// engine's block. A curve outside both blocks is shared game data;
	// the reference survives unchanged and no copy is written.
	curveBlocks := []int64{domain.BaseBlockSize, 100}
	curveRows := map[int64][]curvePlan{}
	for _, curve := range cl.TorqueCurves {
		for _, width := range curveBlocks {
			lo := cl.RootID * width
			if curve.ID >= lo && curve.ID < lo+width {
				nv := newID*width + (curve.ID - lo)
				sub.explicit[curve.ID] = nv
				curveRows[width] = append(curveRows[width], curvePlan{row: curve.Row, idCol: curve.IDColumn, newID: nv})
				break
			}
		}
	}

	var ops []writeOp

	engCols, _ := main.Columns("Data_Engine")
	engIDCol := schema.IDColumn(domain.KindEngine, engCols)
	if engIDCol == "" {
		return nil, fmt.Errorf("Data_Engine has no recognizable id column")
	}
	ops = append(ops, writeOp{
		table:  "Data_Engine",
		delCol: engIDCol,
		delVal: newID,
		rows:   []domain.Row{sub.rekeyRow(cl.RootRow, map[string]int64{engIDCol: newID})},
	})

	for _, width := range curveBlocks {
		group := curveRows[width]
		if len(group) == 0 {
			continue
		}
		op := writeOp{
			table:  "List_TorqueCurve",
			delCol: group[0].idCol,
			delLo:  newID * width,
			delHi:  newID*width + width,
			ranged: true,
		}
		for _, c := range group {
			op.rows = append(op.rows, sub.rekeyRow(c.row, map[string]int64{c.idCol: c.newID}))
		}
		ops = append(ops, op)
	}

	for _, group := range cl.Scoped {
		op := writeOp{table: group.Table, delCol: group.ScopeColumn, delVal: newID}
		for _, row := range group.Rows {
			op.rows = append(op.rows, sub.rekeyRow(row, map[string]int64{group.ScopeColumn: newID}))
		}
		ops = append(ops, op)
	}

	return ops, nil
}

type curvePlan struct {
	row   domain.Row
	idCol string
	newID int64
}

// reassignDrivetrains copies every drivetrain row the closure references
// into the new car's base-block and records the id mapping in sub. A
// referenced row missing from every source is fatal: rewriting the
// reference without the row would leave the clone dangling.
func (e *Engine) reassignDrivetrains(cl *closure.Closure, sub *substitution, block *alloc.BlockAllocator) ([]domain.Row, string, error) {
	const table = "Data_Drivetrain"
	main := e.cat.Main()
	cols, ok := main.Columns(table)
	if !ok {
		return nil, "", nil
	}
	idCol := firstColumn(cols, "DrivetrainID", "DrivetrainId", "Id", "ID")
	if idCol == "" {
		return nil, "", nil
	}

	seen := map[int64]bool{}
	var order []int64
	note := func(row domain.Row) {
		for i, col := range row.Columns {
			if !schema.IsDrivetrainRefColumn(col) {
				continue
			}
			if v, ok := domain.AsInt(row.Values[i]); ok && v > 0 && !seen[v] {
				seen[v] = true
				order = append(order, v)
			}
		}
	}
	note(cl.RootRow)
	for _, group := range cl.Scoped {
		for _, row := range group.Rows {
			note(row)
		}
	}

	var rows []domain.Row
	for _, oldID := range order {
		row, origin, err := e.cat.FindRowAnySource(table, idCol, oldID)
		if err != nil {
			return nil, "", err
		}
		if origin == nil {
			return nil, "", &domain.MissingDependencyError{
				Table: table,
				Key:   oldID,
				Description: fmt.Sprintf(
					"drivetrain %d referenced by car %d does not exist in any loaded database", oldID, cl.RootID),
			}
		}
		var newDT int64
		if alloc.InBlock(oldID, cl.RootID) {
			newDT = block.Keep(alloc.Offset(oldID, cl.RootID))
		} else {
			newDT = block.Next()
		}
		sub.drivetrains[oldID] = newDT
		rows = append(rows, row)
	}
	return rows, idCol, nil
}

// contentOfferOp builds the ContentOffersMapping link row that makes a
// cloned car purchasable in-game.
func (e *Engine) contentOfferOp(newID int64) (writeOp, bool) {
	offer := e.pol.ContentOffer
	main := e.cat.Main()
	cols, ok := main.Columns(offer.Table)
	if !ok {
		return writeOp{}, false
	}

	row := domain.Row{}
	idCol := firstColumn(cols, "Id", "ID")
	if idCol != "" {
		row.Set(idCol, newID)
	}
	contentCol := firstColumn(cols, "ContentID", "ContentId")
	if contentCol != "" {
		row.Set(contentCol, newID)
	}
	offerCol := firstColumn(cols, "OfferID", "OfferId")
	if offerCol != "" {
		row.Set(offerCol, offer.OfferID)
	}
	if tc := firstColumn(cols, "ContentType", "ContentTypeID"); tc != "" {
		row.Set(tc, int64(1))
	}
	if len(row.Columns) == 0 {
		return writeOp{}, false
	}

	delCol := idCol
	if delCol == "" {
		delCol = contentCol
	}
	if delCol == "" {
		return writeOp{}, false
	}
	return writeOp{
		table:  offer.Table,
		delCol: delCol,
		delVal: newID,
		rows:   []domain.Row{row},
	}, true
}

func firstColumn(cols []string, candidates ...string) string {
	for _, want := range candidates {
		for _, c := range cols {
			if c == want {
				return c
			}
		}
	}
	return ""
}
