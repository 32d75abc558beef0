// Package closure computes the full set of rows a clone must copy for the
// result to be self-consistent. Expansion is reference-driven: foreign ids
// inside collected rows are followed to the rows they name. Id arithmetic
// is only ever used to recognize base-block membership, never to invent a
// reference that was not read from a row.
package closure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/schema"
)

// TableRows groups the collected rows of one scoped table.
type TableRows struct {
	Table       string
	ScopeColumn string
	Rows        []domain.Row
}

// CurveRow is one torque curve pulled in by reference.
type CurveRow struct {
	ID       int64
	IDColumn string
	Row      domain.Row
}

// Closure is the snapshot of rows one clone operation will copy. It is
// owned by that operation and never persisted.
type Closure struct {
	Kind       domain.Kind
	RootID     int64
	RootRow    domain.Row
	RootSource string

	// Car closures only.
	BodyRows      []domain.Row
	DonorBodyID   int64
	Scoped        []TableRows
	Combos        []TableRows
	StockEngine   *Closure
	StockEngineID int64

	// Engine closures only.
	TorqueCurves []CurveRow
}

// Size counts every row in the closure, nested engine included.
func (c *Closure) Size() int {
	n := 1 + len(c.BodyRows) + len(c.TorqueCurves)
	for _, t := range c.Scoped {
		n += len(t.Rows)
	}
	for _, t := range c.Combos {
		n += len(t.Rows)
	}
	if c.StockEngine != nil {
		n += c.StockEngine.Size()
	}
	return n
}

// Options tune closure resolution.
type Options struct {
	CloneStockEngine    bool
	StockDrivetrainOnly bool
}

// Resolver expands a root entity into its dependency closure.
type Resolver struct {
	cat *catalog.Catalog
	pol *policy.Policy
}

// New creates a resolver over a catalog with a clone policy.
func New(cat *catalog.Catalog, pol *policy.Policy) *Resolver {
	return &Resolver{cat: cat, pol: pol}
}

// Resolve computes the closure of one root entity instance.
func (r *Resolver) Resolve(kind domain.Kind, id int64, src *catalog.Source, opts Options) (*Closure, error) {
	switch kind {
	case domain.KindCar:
		return r.resolveCar(id, src, opts)
	case domain.KindEngine:
		return r.resolveEngine(id, src)
	}
	return nil, fmt.Errorf("unknown entity kind: %s", kind)
}

func (r *Resolver) resolveCar(carID int64, src *catalog.Source, opts Options) (*Closure, error) {
	root, err := r.cat.Instance(domain.KindCar, carID, src)
	if err != nil {
		return nil, err
	}

	cl := &Closure{
		Kind:       domain.KindCar,
		RootID:     carID,
		RootRow:    root,
		RootSource: src.Name(),
	}

	// Donor Data_CarBody base-block, searched across every source. Without
	// it the clone would load blank and crash; abort instead.
	bodyRows, _, err := r.cat.CarBodyBlock(carID)
	if err != nil {
		return nil, err
	}
	if len(bodyRows) == 0 && r.cat.Main().HasTable("Data_CarBody") {
		return nil, &domain.MissingDependencyError{
			Table: "Data_CarBody",
			Key:   carID * domain.BaseBlockSize,
			Description: fmt.Sprintf(
				"no Data_CarBody base-block rows found for car %d in any loaded database", carID),
		}
	}
	cl.BodyRows = bodyRows
	cl.DonorBodyID = r.donorBodyID(carID)

	// Car-scoped and carbody-scoped tables, using MAIN's schema as the
	// anchor and merging donor rows from every source.
	for _, table := range r.cat.Main().Tables() {
		if schema.IsEntityTable(table) || r.pol.Skip(table) {
			continue
		}
		class, _ := r.cat.Main().Classification(table)

		var scopeVal int64
		switch class.Scope {
		case domain.ScopeCar:
			scopeVal = carID
		case domain.ScopeCarBody:
			scopeVal = cl.DonorBodyID
		default:
			continue
		}

		// Outside the List_/Data_ families only policy-listed dependency
		// tables are trusted; anything else risks cloning global gameplay
		// state.
		tl := strings.ToLower(table)
		if !strings.HasPrefix(tl, "list_") && !strings.HasPrefix(tl, "data_") &&
			!r.pol.ExtraDependency(table) {
			continue
		}

		rows, err := r.collectMerged(table, class.ScopeColumn, scopeVal)
		if err != nil {
			return nil, err
		}
		rows = r.filterStock(table, rows, opts)
		if len(rows) > 0 {
			cl.Scoped = append(cl.Scoped, TableRows{
				Table:       table,
				ScopeColumn: class.ScopeColumn,
				Rows:        rows,
			})
		}
	}

	// Per-car rows of the policy's Combo_ tables. These tables are global;
	// only the donor car's own rows travel, re-keyed by the engine.
	for _, combo := range r.pol.ComboTables {
		if !r.cat.Main().HasTable(combo.Name) {
			continue
		}
		cols, _ := r.cat.Main().Columns(combo.Name)
		if !hasCol(cols, "Ordinal") {
			continue
		}
		rows, err := r.collectMerged(combo.Name, "Ordinal", carID)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			cl.Combos = append(cl.Combos, TableRows{
				Table:       combo.Name,
				ScopeColumn: "Ordinal",
				Rows:        rows,
			})
		}
	}

	// Stock engine, by reference from the car's List_UpgradeEngine row.
	engineID, ok, err := r.cat.StockEngineID(src, carID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The donor's assignment row may live in another source.
		for _, s := range r.cat.Sources() {
			engineID, ok, err = r.cat.StockEngineID(s, carID)
			if err != nil {
				return nil, err
			}
			if ok {
				break
			}
		}
	}
	if ok {
		cl.StockEngineID = engineID
		if opts.CloneStockEngine {
			engineSrc := r.sourceWithEngine(engineID, src)
			if engineSrc == nil {
				return nil, &domain.MissingDependencyError{
					Table: "Data_Engine",
					Key:   engineID,
					Description: fmt.Sprintf(
						"car %d stock engine %d not found in any loaded database", carID, engineID),
				}
			}
			nested, err := r.resolveEngine(engineID, engineSrc)
			if err != nil {
				return nil, err
			}
			cl.StockEngine = nested
		}
	}

	return cl, nil
}

func (r *Resolver) resolveEngine(engineID int64, src *catalog.Source) (*Closure, error) {
	root, err := r.cat.Instance(domain.KindEngine, engineID, src)
	if err != nil {
		return nil, err
	}

	cl := &Closure{
		Kind:       domain.KindEngine,
		RootID:     engineID,
		RootRow:    root,
		RootSource: src.Name(),
	}

	// Engine-referencing upgrade rows, anchored on MAIN's upgrade tables.
	sawCurveColumns := false
	for _, table := range r.cat.Main().Tables() {
		if !schema.IsUpgradeTable(table) || r.pol.Skip(table) {
			continue
		}
		cols, _ := r.cat.Main().Columns(table)
		// The car->engine assignment table is car-scoped; engine clones
		// leave assignments alone.
		class, _ := r.cat.Main().Classification(table)
		if class.Scope != domain.ScopeEngine {
			continue
		}

		rows, err := r.collectMerged(table, class.ScopeColumn, engineID)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		if len(schema.TorqueCurveColumns(cols)) > 0 {
			sawCurveColumns = true
		}
		cl.Scoped = append(cl.Scoped, TableRows{
			Table:       table,
			ScopeColumn: class.ScopeColumn,
			Rows:        rows,
		})
	}

	curves, err := r.resolveTorqueCurves(cl)
	if err != nil {
		return nil, err
	}
	cl.TorqueCurves = curves

	if sawCurveColumns && len(curves) == 0 {
		// An engine whose upgrade rows resolve to zero torque curves
		// crashes at load; refuse to produce it.
		return nil, &domain.MissingDependencyError{
			Table: "List_TorqueCurve",
			Key:   engineID,
			Description: fmt.Sprintf(
				"engine %d upgrade rows reference no resolvable torque curves", engineID),
		}
	}

	return cl, nil
}

// resolveTorqueCurves follows every TorqueCurve*ID value inside the
// collected upgrade rows to the List_TorqueCurve rows they name.
func (r *Resolver) resolveTorqueCurves(cl *Closure) ([]CurveRow, error) {
	if !r.cat.Main().HasTable("List_TorqueCurve") {
		return nil, nil
	}
	mainCols, _ := r.cat.Main().Columns("List_TorqueCurve")
	idCol := firstCol(mainCols, "TorqueCurveID", "TorqueCurveId", "Id", "ID")
	if idCol == "" {
		return nil, nil
	}

	referenced := map[int64]bool{}
	for _, group := range cl.Scoped {
		cols, _ := r.cat.Main().Columns(group.Table)
		curveCols := schema.TorqueCurveColumns(cols)
		for _, row := range group.Rows {
			for _, cc := range curveCols {
				if v, ok := row.Int(cc); ok && v > 0 {
					referenced[v] = true
				}
			}
		}
	}
	if len(referenced) == 0 {
		return nil, nil
	}

	var curves []CurveRow
	for _, id := range sortedKeys(referenced) {
		row, origin, err := r.cat.FindRowAnySource("List_TorqueCurve", idCol, id)
		if err != nil {
			return nil, err
		}
		if origin == nil {
			return nil, &domain.MissingDependencyError{
				Table: "List_TorqueCurve",
				Key:   id,
				Description: fmt.Sprintf(
					"torque curve %d referenced by engine %d upgrade rows does not exist in any loaded database",
					id, cl.RootID),
			}
		}
		curves = append(curves, CurveRow{ID: id, IDColumn: idCol, Row: row})
	}
	return curves, nil
}

// collectMerged gathers table rows matching col=val from every source,
// de-duplicating identical rows: DLC files routinely re-ship rows MAIN
// already has.
func (r *Resolver) collectMerged(table, col string, val int64) ([]domain.Row, error) {
	seen := map[string]bool{}
	var out []domain.Row

	for _, s := range r.cat.Sources() {
		cols, ok := s.Columns(table)
		if !ok || !hasCol(cols, col) {
			continue
		}
		rows, err := s.DB.SelectWhere(table, col, val)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			sig := signature(row)
			if seen[sig] {
				continue
			}
			seen[sig] = true
			out = append(out, row)
		}
	}
	return out, nil
}

// filterStock applies the per-table stock-only policy: tables marked
// single-stock keep exactly their IsStock=1/Level=0 row. The drivetrain
// table additionally honors the stock-drivetrain-only option.
func (r *Resolver) filterStock(table string, rows []domain.Row, opts Options) []domain.Row {
	stockOnly := r.pol.StockOnly(table)
	if opts.StockDrivetrainOnly && strings.EqualFold(table, "List_UpgradeDrivetrain") {
		stockOnly = true
	}
	if !stockOnly || len(rows) == 0 {
		return rows
	}

	var stock []domain.Row
	for _, row := range rows {
		isStock, hasStock := row.Int("IsStock")
		level, hasLevel := row.Int("Level")
		switch {
		case hasStock && hasLevel:
			if isStock == 1 && level == 0 {
				stock = append(stock, row)
			}
		case hasLevel:
			if level == 0 {
				stock = append(stock, row)
			}
		default:
			stock = append(stock, row)
		}
	}
	return stock
}

// donorBodyID discovers the donor's CarBodyID from the stock row of
// List_UpgradeCarBody, falling back to the base-block convention.
func (r *Resolver) donorBodyID(carID int64) int64 {
	for _, s := range r.cat.Sources() {
		cols, ok := s.Columns("List_UpgradeCarBody")
		if !ok {
			continue
		}
		bodyCol := schema.CarBodyColumn(cols)
		if bodyCol == "" || !hasCol(cols, "Ordinal") || !hasCol(cols, "Level") {
			continue
		}
		rows, err := s.DB.SelectWhere("List_UpgradeCarBody", "Ordinal", carID)
		if err != nil {
			continue
		}
		for _, row := range rows {
			if level, ok := row.Int("Level"); !ok || level != 0 {
				continue
			}
			if id, ok := row.Int(bodyCol); ok {
				return id
			}
		}
	}
	return carID * domain.BaseBlockSize
}

// sourceWithEngine finds a source containing the engine, preferring the
// car's own donor source.
func (r *Resolver) sourceWithEngine(engineID int64, preferred *catalog.Source) *catalog.Source {
	if _, err := r.cat.Instance(domain.KindEngine, engineID, preferred); err == nil {
		return preferred
	}
	for _, s := range r.cat.Sources() {
		if _, err := r.cat.Instance(domain.KindEngine, engineID, s); err == nil {
			return s
		}
	}
	return nil
}

func signature(row domain.Row) string {
	var b strings.Builder
	for i, c := range row.Columns {
		fmt.Fprintf(&b, "%s=%v;", c, row.Values[i])
	}
	return b.String()
}

func hasCol(cols []string, want string) bool {
	for _, c := range cols {
		if c == want {
			return true
		}
	}
	return false
}

func firstCol(cols []string, candidates ...string) string {
	for _, want := range candidates {
		if hasCol(cols, want) {
			return want
		}
	}
	return ""
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
