package catalog

import (
	"fmt"

	"github.com/garagedev/sltcraft/internal/domain"
)

// lookupSpec names one id->display table. Ids load from MAIN first; DLC
// sources fill ids MAIN lacks and never overwrite.
type lookupSpec struct {
	table   string
	idCol   string
	nameCol string
}

var lookupSpecs = []lookupSpec{
	{"List_EnginePlacement", "ID", "EnginePlacement"},
	{"List_MaterialType", "MaterialTypeID", "Material"},
	{"List_EngineConfig", "ConfigID", "EngineConfig"},
	{"List_Cylinders", "CylinderID", "Number"},
	{"List_Cylinder", "CylinderID", "Number"},
	{"List_VariableTiming", "VariableTimingID", "VariableTimingType"},
	{"List_TireCompound", "TireCompoundID", "DisplayName"},
	{"List_DriveType", "ID", "DriveType"},
}

// BuildLookupCache builds the display-name cache. The cache exists for
// presentation only; cloning correctness never consults it. The build is a
// blocking scan and reports completion, not progress.
func (c *Catalog) BuildLookupCache() error {
	cache := make(map[string]map[int64]string)

	for _, s := range c.Sources() {
		for _, spec := range lookupSpecs {
			cols, ok := s.Columns(spec.table)
			if !ok || indexOf(cols, spec.idCol) < 0 || indexOf(cols, spec.nameCol) < 0 {
				continue
			}
			rows, err := s.DB.SelectAll(spec.table)
			if err != nil {
				return fmt.Errorf("failed to build lookup cache from %s: %w", s.Name(), err)
			}

			m := cache[spec.table]
			if m == nil {
				m = make(map[int64]string)
				cache[spec.table] = m
			}
			for _, r := range rows {
				id, ok := r.Int(spec.idCol)
				if !ok {
					continue
				}
				if _, seen := m[id]; seen {
					continue
				}
				if v, ok := r.Get(spec.nameCol); ok && v != nil {
					m[id] = fmt.Sprintf("%v", v)
				} else {
					m[id] = ""
				}
			}
		}
	}

	c.lookup = cache
	return nil
}

// LookupName resolves an id through the display-name cache. Returns the
// empty string when the cache is unbuilt or the id is unknown.
func (c *Catalog) LookupName(table string, id int64) string {
	if c.lookup == nil {
		return ""
	}
	return c.lookup[table][id]
}

// InvalidateLookupCache drops the cache; the next build recreates it.
func (c *Catalog) InvalidateLookupCache() {
	c.lookup = nil
}

// displayCols maps reference columns seen on entity rows to the lookup
// table that translates them.
var displayCols = map[string]string{
	"EnginePlacementID": "List_EnginePlacement",
	"MaterialTypeID":    "List_MaterialType",
	"EngineConfigID":    "List_EngineConfig",
	"ConfigID":          "List_EngineConfig",
	"CylinderID":        "List_Cylinders",
	"VariableTimingID":  "List_VariableTiming",
	"TireCompoundID":    "List_TireCompound",
	"DriveTypeID":       "List_DriveType",
}

// DisplayFields translates a row's known reference columns through the
// display-name cache, building it on first use. Columns without a cached
// name are omitted.
func (c *Catalog) DisplayFields(row domain.Row) map[string]string {
	if c.lookup == nil {
		if err := c.BuildLookupCache(); err != nil {
			return nil
		}
	}
	out := map[string]string{}
	for _, col := range row.Columns {
		table, ok := displayCols[col]
		if !ok {
			continue
		}
		id, ok := row.Int(col)
		if !ok {
			continue
		}
		if name := c.LookupName(table, id); name != "" {
			out[col] = name
		}
	}
	return out
}

// ResolveEngineName finds an engine's display name in the first source that
// has it.
func (c *Catalog) ResolveEngineName(engineID int64) string {
	for _, s := range c.Sources() {
		row, err := c.Instance(domain.KindEngine, engineID, s)
		if err != nil {
			continue
		}
		for _, col := range []string{"EngineName", "Name", "MediaName"} {
			if v, ok := row.Get(col); ok && v != nil {
				return fmt.Sprintf("%v", v)
			}
		}
	}
	return ""
}
