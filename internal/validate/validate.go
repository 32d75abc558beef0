// Package validate inspects one entity instance and reports findings. It
// never modifies anything; repair stays a human decision.
package validate

import (
	"errors"
	"fmt"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/schema"
)

// Validator checks entities against the loaded catalog.
type Validator struct {
	cat *catalog.Catalog
	pol *policy.Policy
}

// New creates a validator over an open catalog.
func New(cat *catalog.Catalog, pol *policy.Policy) *Validator {
	return &Validator{cat: cat, pol: pol}
}

// Check builds the validation report for one entity in one source.
// Empty source means MAIN.
func (v *Validator) Check(kind domain.Kind, id int64, source string) (*domain.ValidationReport, error) {
	src, err := v.cat.SourceByName(source)
	if err != nil {
		return nil, err
	}

	report := &domain.ValidationReport{Kind: kind, ID: id, Source: src.Name()}

	root, err := v.cat.Instance(kind, id, src)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			report.Findings = append(report.Findings, domain.Finding{
				Severity:    domain.SeverityError,
				Table:       catalog.EntityTable(kind),
				RowKey:      id,
				Description: fmt.Sprintf("%s %d has no row in %s", kind, id, src.Name()),
			})
			return report, nil
		}
		return nil, err
	}

	switch kind {
	case domain.KindCar:
		v.checkCar(report, root, id, src)
	case domain.KindEngine:
		v.checkEngine(report, id)
	}
	return report, nil
}

func (v *Validator) checkCar(report *domain.ValidationReport, root domain.Row, carID int64, src *catalog.Source) {
	if yc := schema.YearColumn(root.Columns); yc != "" {
		if year, ok := root.Int(yc); ok && domain.IsLikelyClone(carID, year) {
			report.Findings = append(report.Findings, domain.Finding{
				Severity:    domain.SeverityInfo,
				Table:       "Data_Car",
				RowKey:      carID,
				Description: fmt.Sprintf("car %d looks like a clone (year %d)", carID, year),
			})
		}
	}

	// Body block present somewhere. A car without one loads blank.
	if v.cat.Main().HasTable("Data_CarBody") {
		bodyRows, _, err := v.cat.CarBodyBlock(carID)
		if err == nil && len(bodyRows) == 0 {
			report.Findings = append(report.Findings, domain.Finding{
				Severity:    domain.SeverityError,
				Table:       "Data_CarBody",
				RowKey:      carID * domain.BaseBlockSize,
				Description: fmt.Sprintf("no Data_CarBody rows in block [%d, %d) in any loaded database",
					carID*domain.BaseBlockSize, (carID+1)*domain.BaseBlockSize),
			})
		}
		v.checkWheelDiameters(report, bodyRows)
	}

	// Exactly one stock row per stock-only upgrade table.
	for _, table := range v.pol.StockOnlyTables {
		v.checkStockUniqueness(report, table, carID, src)
	}

	// The stock engine assignment, and the engine it names.
	engineID, ok := v.stockEngineAnywhere(carID)
	if !ok {
		report.Findings = append(report.Findings, domain.Finding{
			Severity:    domain.SeverityWarning,
			Table:       "List_UpgradeEngine",
			RowKey:      carID,
			Description: fmt.Sprintf("car %d has no engine assignment row", carID),
		})
		return
	}
	_, origin, err := v.cat.FindRowAnySource("Data_Engine", engineIDColumn(v.cat), engineID)
	if err == nil && origin == nil {
		report.Findings = append(report.Findings, domain.Finding{
			Severity:    domain.SeverityError,
			Table:       "Data_Engine",
			RowKey:      engineID,
			Description: fmt.Sprintf("car %d stock engine %d does not exist in any loaded database", carID, engineID),
		})
		return
	}
	v.checkEngine(report, engineID)
}

func (v *Validator) checkEngine(report *domain.ValidationReport, engineID int64) {
	main := v.cat.Main()
	if !main.HasTable("List_TorqueCurve") {
		return
	}
	curveIDCol := ""
	if cols, ok := main.Columns("List_TorqueCurve"); ok {
		curveIDCol = firstColumn(cols, "TorqueCurveID", "TorqueCurveId", "Id", "ID")
	}
	if curveIDCol == "" {
		return
	}

	// Follow every curve reference in the engine's upgrade rows.
	for _, table := range main.Tables() {
		if !schema.IsUpgradeTable(table) || v.pol.Skip(table) {
			continue
		}
		class, _ := main.Classification(table)
		if class.Scope != domain.ScopeEngine {
			continue
		}
		cols, _ := main.Columns(table)
		curveCols := schema.TorqueCurveColumns(cols)
		if len(curveCols) == 0 {
			continue
		}

		for _, src := range v.cat.Sources() {
			if !src.HasTable(table) {
				continue
			}
			rows, err := v.cat.ScopedRows(src, table, engineID)
			if err != nil {
				continue
			}
			for _, row := range rows {
				for _, cc := range curveCols {
					curveID, ok := row.Int(cc)
					if !ok || curveID <= 0 {
						continue
					}
					_, origin, err := v.cat.FindRowAnySource("List_TorqueCurve", curveIDCol, curveID)
					if err == nil && origin == nil {
						report.Findings = append(report.Findings, domain.Finding{
							Severity: domain.SeverityError,
							Table:    table,
							RowKey:   curveID,
							Description: fmt.Sprintf(
								"engine %d references torque curve %d which does not exist in any loaded database",
								engineID, curveID),
						})
					}
				}
			}
		}
	}
}

// checkStockUniqueness wants exactly one IsStock=1/Level=0 row for the car
// in table; zero or several confuse the upgrade menu. The requested source
// is authoritative; when it holds no rows for the car the other sources
// are consulted, the same fallback CarBodyBlock uses.
func (v *Validator) checkStockUniqueness(report *domain.ValidationReport, table string, carID int64, src *catalog.Source) {
	main := v.cat.Main()
	if !main.HasTable(table) {
		return
	}
	cols, _ := main.Columns(table)
	class, _ := main.Classification(table)
	if class.Scope != domain.ScopeCar || class.ScopeColumn == "" {
		return
	}
	if !schema.HasStockColumns(cols) {
		return
	}

	rows := v.scopedRowsWithFallback(src, table, carID)
	stock := 0
	for _, row := range rows {
		if isStockRow(row) {
			stock++
		}
	}
	if len(rows) == 0 {
		return
	}
	if stock != 1 {
		sev := domain.SeverityWarning
		if stock == 0 {
			sev = domain.SeverityError
		}
		report.Findings = append(report.Findings, domain.Finding{
			Severity:    sev,
			Table:       table,
			RowKey:      carID,
			Description: fmt.Sprintf("car %d has %d stock rows in %s, expected exactly 1", carID, stock, table),
		})
	}
}

func (v *Validator) checkWheelDiameters(report *domain.ValidationReport, rows []domain.Row) {
	for _, row := range rows {
		for i, col := range row.Columns {
			if !schema.IsWheelDiameterColumn(col) {
				continue
			}
			d, ok := domain.AsInt(row.Values[i])
			if !ok {
				continue
			}
			if d < domain.WheelDiameterMin || d > domain.WheelDiameterMax {
				key, _ := row.Int(firstColumn(row.Columns, "Id", "ID", "CarBodyID", "CarBodyId"))
				report.Findings = append(report.Findings, domain.Finding{
					Severity:    domain.SeverityWarning,
					Table:       "Data_CarBody",
					RowKey:      key,
					Description: fmt.Sprintf("%s=%d outside the supported range [%d, %d]", col, d, domain.WheelDiameterMin, domain.WheelDiameterMax),
				})
			}
		}
	}
}

// scopedRowsWithFallback reads a car's rows from the requested source
// first, then from any other source holding them.
func (v *Validator) scopedRowsWithFallback(src *catalog.Source, table string, carID int64) []domain.Row {
	if src.HasTable(table) {
		if rows, err := v.cat.ScopedRows(src, table, carID); err == nil && len(rows) > 0 {
			return rows
		}
	}
	for _, s := range v.cat.Sources() {
		if s == src || !s.HasTable(table) {
			continue
		}
		if rows, err := v.cat.ScopedRows(s, table, carID); err == nil && len(rows) > 0 {
			return rows
		}
	}
	return nil
}

func (v *Validator) stockEngineAnywhere(carID int64) (int64, bool) {
	for _, src := range v.cat.Sources() {
		id, ok, err := v.cat.StockEngineID(src, carID)
		if err == nil && ok {
			return id, true
		}
	}
	return 0, false
}

func isStockRow(row domain.Row) bool {
	if v, ok := row.Int("IsStock"); ok {
		return v == 1
	}
	if v, ok := row.Int("Level"); ok {
		return v == 0
	}
	return false
}

func engineIDColumn(cat *catalog.Catalog) string {
	if cols, ok := cat.Main().Columns("Data_Engine"); ok {
		if c := schema.IDColumn(domain.KindEngine, cols); c != "" {
			return c
		}
	}
	return "Id"
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
