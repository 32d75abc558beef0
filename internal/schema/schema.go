// Package schema classifies game tables by the entity their rows are scoped
// to. The game schema declares no foreign keys, so scope is derived from
// column names alone; classification is a pure function of a table's shape
// and is cached by the catalog for the process lifetime.
package schema

import (
	"strings"

	"github.com/garagedev/sltcraft/internal/domain"
)

// Classification is the computed scope of one table.
type Classification struct {
	Scope domain.Scope
	// ScopeColumn carries the scoping id for non-global tables
	// (e.g. Ordinal, CarID, EngineID).
	ScopeColumn string
	// OrdinalScoped is set when the table keys car rows by Ordinal, the
	// most common car-scope pattern in the schema.
	OrdinalScoped bool
}

// Column name variants observed across game builds. Order matters: the
// first present variant is the scoping column.
var (
	carCols        = []string{"CarID", "CarId"}
	engineCols     = []string{"EngineID", "EngineId", "Engine"}
	carBodyCols    = []string{"CarBodyID", "CarBodyId", "CarbodyId"}
	drivetrainCols = []string{"PowertrainID", "PowertrainId", "DrivetrainID", "DrivetrainId"}
	engineRefCols  = []string{"EngineID", "EngineId", "Engine", "EngineDataID", "Data_EngineID", "Data_EngineId"}
)

// Classify derives the scope of a table from its name and column names.
// Rules are checked in priority order; a table matching several rules takes
// the first (most specific) match. This ordering is load-bearing: existing
// scoped tables depend on it.
func Classify(table string, cols []string) Classification {
	has := func(name string) bool {
		for _, c := range cols {
			if c == name {
				return true
			}
		}
		return false
	}
	first := func(candidates []string) string {
		for _, c := range candidates {
			if has(c) {
				return c
			}
		}
		return ""
	}

	// 1. Ordinal: car-scoped, Ordinal carries the car id and distinguishes
	// sibling rows. Ordinal outranks every other scoping column: upgrade
	// tables like List_UpgradeEngine key rows by Ordinal=CarID and merely
	// reference an engine.
	if has("Ordinal") {
		return Classification{Scope: domain.ScopeCar, ScopeColumn: "Ordinal", OrdinalScoped: true}
	}
	// 2. CarID.
	if c := first(carCols); c != "" {
		return Classification{Scope: domain.ScopeCar, ScopeColumn: c}
	}
	// 3. EngineID.
	if c := first(engineCols); c != "" {
		return Classification{Scope: domain.ScopeEngine, ScopeColumn: c}
	}
	// 4. CarBodyID.
	if c := first(carBodyCols); c != "" {
		return Classification{Scope: domain.ScopeCarBody, ScopeColumn: c}
	}
	// 5. PowertrainID / DrivetrainID.
	if c := first(drivetrainCols); c != "" {
		return Classification{Scope: domain.ScopeDrivetrain, ScopeColumn: c}
	}
	// 6. Shared lookup/combination tables: never auto-cloned.
	return Classification{Scope: domain.ScopeGlobal}
}

// IsUpgradeTable reports whether a table is part of the List_Upgrade*
// family.
func IsUpgradeTable(table string) bool {
	return strings.HasPrefix(strings.ToLower(table), "list_upgrade")
}

// IsEntityTable reports whether a table holds canonical entity rows rather
// than scoped dependents.
func IsEntityTable(table string) bool {
	switch table {
	case "Data_Car", "Data_CarBody", "Data_Engine":
		return true
	}
	return false
}

// CarBodyColumn returns the car-body reference column of cols, or "".
func CarBodyColumn(cols []string) string {
	return firstPresent(cols, carBodyCols)
}

// EngineRefColumn returns the engine reference column of cols, or "".
// Upgrade tables reference engines under several historical names.
func EngineRefColumn(cols []string) string {
	return firstPresent(cols, engineRefCols)
}

// TorqueCurveColumns returns every column of cols that references a torque
// curve (*TorqueCurve*ID). References are followed by value, never derived
// arithmetically from the engine id.
func TorqueCurveColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		cl := strings.ToLower(c)
		if strings.Contains(cl, "torquecurve") && strings.HasSuffix(cl, "id") {
			out = append(out, c)
		}
	}
	return out
}

// HasStockColumns reports whether a table carries the IsStock/Level pair
// used by stock-row filtering.
func HasStockColumns(cols []string) bool {
	return firstPresent(cols, []string{"IsStock"}) != "" &&
		firstPresent(cols, []string{"Level"}) != ""
}

// IsEngineRefColumn reports whether a column references an engine id.
func IsEngineRefColumn(col string) bool {
	for _, c := range engineRefCols {
		if c == col {
			return true
		}
	}
	return false
}

// IsDrivetrainRefColumn reports whether a column references a drivetrain/
// powertrain id. These references are remapped only explicitly, never by
// the base-block shift: a clone shares the donor's drivetrain rows unless
// reassignment was requested.
func IsDrivetrainRefColumn(col string) bool {
	for _, c := range drivetrainCols {
		if c == col {
			return true
		}
	}
	return false
}

// IsReferenceColumn reports whether a column name is an id-reference
// candidate for base-block rewriting. Scope columns and content/offer ids
// keep their values and are excluded.
func IsReferenceColumn(col string) bool {
	switch col {
	case "Ordinal", "CarID", "CarId", "EngineID", "EngineId", "Engine", "ContentID", "OfferID":
		return false
	}
	cl := strings.ToLower(col)
	return strings.HasSuffix(cl, "id") || strings.HasSuffix(cl, "ids")
}

// IsWheelDiameterColumn reports whether a column stores a wheel diameter
// subject to the [13, 24] clamp.
func IsWheelDiameterColumn(col string) bool {
	cl := strings.ToLower(col)
	return strings.Contains(cl, "wheeldiameter") || strings.Contains(cl, "rimdiameter")
}

// YearColumn picks the model-year column of Data_Car, preferring ModelYear
// over Year (both exist across game builds).
func YearColumn(cols []string) string {
	return firstPresent(cols, []string{"ModelYear", "Year", "ReleaseYear"})
}

// IDColumn picks the primary id column for an entity table.
func IDColumn(kind domain.Kind, cols []string) string {
	switch kind {
	case domain.KindCar:
		return firstPresent(cols, []string{"Id", "CarID", "CarId"})
	case domain.KindEngine:
		return firstPresent(cols, []string{"Id", "EngineID", "EngineId"})
	}
	return ""
}

// NameColumn picks the display-name column for an entity table.
func NameColumn(kind domain.Kind, cols []string) string {
	switch kind {
	case domain.KindCar:
		return firstPresent(cols, []string{"MediaName", "CarName", "Name"})
	case domain.KindEngine:
		return firstPresent(cols, []string{"EngineName", "Name", "MediaName"})
	}
	return ""
}

func firstPresent(cols, candidates []string) string {
	for _, want := range candidates {
		for _, c := range cols {
			if c == want {
				return want
			}
		}
	}
	return ""
}
