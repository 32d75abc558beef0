// Package catalog aggregates one writable MAIN database and any number of
// read-only DLC databases into a single queryable view. Entities with the
// same id in different databases are separate instances; the catalog never
// merges them.
package catalog

import (
	"fmt"

	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/schema"
)

// Catalog is the unified read view over all loaded sources.
type Catalog struct {
	main    *Source
	dlc     []*Source
	dlcPath []string

	lookup map[string]map[int64]string
}

// Open loads the MAIN database writable and every DLC path read-only.
func Open(mainPath string, dlcPaths []string) (*Catalog, error) {
	main, err := openSource(mainPath, domain.RoleMain)
	if err != nil {
		return nil, err
	}

	c := &Catalog{main: main, dlcPath: dlcPaths}
	for _, p := range dlcPaths {
		s, err := openSource(p, domain.RoleDLC)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.dlc = append(c.dlc, s)
	}
	return c, nil
}

// Close releases every source connection.
func (c *Catalog) Close() error {
	var first error
	for _, s := range c.Sources() {
		if err := s.DB.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Reload discards all cached state and reopens every source.
func (c *Catalog) Reload() error {
	mainPath := c.main.Path()
	dlcPaths := c.dlcPath
	if err := c.Close(); err != nil {
		return fmt.Errorf("failed to close sources during reload: %w", err)
	}

	fresh, err := Open(mainPath, dlcPaths)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Main returns the single writable source.
func (c *Catalog) Main() *Source {
	return c.main
}

// Sources returns MAIN first, then DLC sources in load order.
func (c *Catalog) Sources() []*Source {
	out := make([]*Source, 0, 1+len(c.dlc))
	out = append(out, c.main)
	out = append(out, c.dlc...)
	return out
}

// SourceByName resolves a source by database file name; empty means MAIN.
func (c *Catalog) SourceByName(name string) (*Source, error) {
	if name == "" {
		return c.main, nil
	}
	for _, s := range c.Sources() {
		if s.Name() == name || s.DB.Name() == name || s.Path() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown source database: %s", name)
}

// EntityTable maps an entity kind to its canonical table.
func EntityTable(kind domain.Kind) string {
	if kind == domain.KindEngine {
		return "Data_Engine"
	}
	return "Data_Car"
}

// ListEntities returns one summary per instance of every entity of kind,
// across all sources, tagged with origin and the likely-clone flag.
func (c *Catalog) ListEntities(kind domain.Kind) ([]domain.EntitySummary, error) {
	table := EntityTable(kind)
	var out []domain.EntitySummary

	for _, s := range c.Sources() {
		cols, ok := s.Columns(table)
		if !ok {
			continue
		}
		idCol := schema.IDColumn(kind, cols)
		if idCol == "" {
			continue
		}
		nameCol := schema.NameColumn(kind, cols)
		yearCol := schema.YearColumn(cols)

		all, err := s.DB.SelectAll(table)
		if err != nil {
			return nil, err
		}

		for _, r := range all {
			id, ok := r.Int(idCol)
			if !ok {
				continue
			}
			sum := domain.EntitySummary{
				Kind:   kind,
				ID:     id,
				Source: s.Name(),
				Role:   s.Role,
			}
			if nameCol != "" {
				if v, ok := r.Get(nameCol); ok && v != nil {
					sum.Name = fmt.Sprintf("%v", v)
				}
			}
			if yearCol != "" {
				if y, ok := r.Int(yearCol); ok {
					sum.Year = y
				}
			}
			sum.LikelyClone = domain.IsLikelyClone(sum.ID, sum.Year)
			out = append(out, sum)
		}
	}
	return out, nil
}

// Instance fetches one entity row from one source.
func (c *Catalog) Instance(kind domain.Kind, id int64, src *Source) (domain.Row, error) {
	table := EntityTable(kind)
	cols, ok := src.Columns(table)
	if !ok {
		return domain.Row{}, &domain.NotFoundError{Kind: kind, ID: id, Source: src.Name()}
	}
	idCol := schema.IDColumn(kind, cols)
	if idCol == "" {
		return domain.Row{}, fmt.Errorf("%s in %s has no id column", table, src.Name())
	}

	row, found, err := src.DB.SelectOne(table, idCol, id)
	if err != nil {
		return domain.Row{}, err
	}
	if !found {
		return domain.Row{}, &domain.NotFoundError{Kind: kind, ID: id, Source: src.Name()}
	}
	return row, nil
}

// MaxID returns the highest id of kind across every source. The scan covers
// DLC sources too: they are never written, but ids minted for MAIN must not
// collide with any known instance.
func (c *Catalog) MaxID(kind domain.Kind) (int64, error) {
	table := EntityTable(kind)
	idCols := []string{"Id"}
	if kind == domain.KindEngine {
		// engine tables carry the id under either name across builds
		idCols = []string{"Id", "EngineID", "EngineId"}
	}

	var max int64
	for _, s := range c.Sources() {
		if !s.HasTable(table) {
			continue
		}
		for _, col := range idCols {
			m, err := s.DB.MaxInt(table, col)
			if err != nil {
				return 0, err
			}
			if m > max {
				max = m
			}
		}
	}
	return max, nil
}

// IDInUse reports whether any source holds an entity of kind with this id,
// returning the first source name that does.
func (c *Catalog) IDInUse(kind domain.Kind, id int64) (bool, string, error) {
	table := EntityTable(kind)
	for _, s := range c.Sources() {
		cols, ok := s.Columns(table)
		if !ok {
			continue
		}
		idCol := schema.IDColumn(kind, cols)
		if idCol == "" {
			continue
		}
		exists, err := s.DB.RowExists(table, idCol, id)
		if err != nil {
			return false, "", err
		}
		if exists {
			return true, s.Name(), nil
		}
	}
	return false, "", nil
}

// ScopedRows returns every row of table in src whose cached scope column
// equals id. Tables without a scope are never queried this way.
func (c *Catalog) ScopedRows(src *Source, table string, id int64) ([]domain.Row, error) {
	class, ok := src.Classification(table)
	if !ok || class.Scope == domain.ScopeGlobal {
		return nil, nil
	}
	return src.DB.SelectWhere(table, class.ScopeColumn, id)
}

// CarBodyBlock finds the donor's Data_CarBody base-block rows, searching
// every source: DLC cars frequently keep their body rows in MAIN rather
// than in the DLC file they shipped in.
func (c *Catalog) CarBodyBlock(carID int64) ([]domain.Row, *Source, error) {
	base := carID * domain.BaseBlockSize
	for _, s := range c.Sources() {
		cols, ok := s.Columns("Data_CarBody")
		if !ok {
			continue
		}
		if idx := indexOf(cols, "Id"); idx < 0 {
			continue
		}
		rows, err := s.DB.SelectRange("Data_CarBody", "Id", base, base+domain.BaseBlockSize)
		if err != nil {
			return nil, nil, err
		}
		if len(rows) > 0 {
			return rows, s, nil
		}
	}
	return nil, nil, nil
}

// StockEngineID resolves the stock engine reference of a car: the
// IsStock=1/Level=0 row of List_UpgradeEngine, falling back to the car's
// first upgrade row.
func (c *Catalog) StockEngineID(src *Source, carID int64) (int64, bool, error) {
	const table = "List_UpgradeEngine"
	cols, ok := src.Columns(table)
	if !ok || indexOf(cols, "Ordinal") < 0 {
		return 0, false, nil
	}
	engineCol := schema.EngineRefColumn(cols)
	if engineCol == "" {
		return 0, false, nil
	}

	rows, err := src.DB.SelectWhere(table, "Ordinal", carID)
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}

	if schema.HasStockColumns(cols) {
		for _, r := range rows {
			stock, _ := r.Int("IsStock")
			level, _ := r.Int("Level")
			if stock == 1 && level == 0 {
				id, ok := r.Int(engineCol)
				return id, ok, nil
			}
		}
	}
	id, ok := rows[0].Int(engineCol)
	return id, ok, nil
}

// StockDrivetrainID resolves a car's drivetrain id: the stock row of
// List_UpgradeDrivetrain, any row for the car, then Data_Car.PowertrainID.
func (c *Catalog) StockDrivetrainID(src *Source, carID int64) (int64, bool, error) {
	const table = "List_UpgradeDrivetrain"
	if cols, ok := src.Columns(table); ok && indexOf(cols, "Ordinal") >= 0 {
		idCol := firstOf(cols, "PowertrainID", "PowertrainId", "DrivetrainID", "DrivetrainId")
		if idCol != "" {
			rows, err := src.DB.SelectWhere(table, "Ordinal", carID)
			if err != nil {
				return 0, false, err
			}
			if schema.HasStockColumns(cols) {
				for _, r := range rows {
					stock, _ := r.Int("IsStock")
					level, _ := r.Int("Level")
					if stock == 1 && level == 0 {
						if id, ok := r.Int(idCol); ok {
							return id, true, nil
						}
					}
				}
			}
			if len(rows) > 0 {
				if id, ok := rows[0].Int(idCol); ok {
					return id, true, nil
				}
			}
		}
	}

	if cols, ok := src.Columns("Data_Car"); ok && indexOf(cols, "PowertrainID") >= 0 {
		row, found, err := src.DB.SelectOne("Data_Car", "Id", carID)
		if err != nil || !found {
			return 0, false, err
		}
		if id, ok := row.Int("PowertrainID"); ok {
			return id, true, nil
		}
	}
	return 0, false, nil
}

// FindRowAnySource locates the first row matching table.col=val across all
// sources. Used for reference-driven dependency resolution.
func (c *Catalog) FindRowAnySource(table, col string, val int64) (domain.Row, *Source, error) {
	for _, s := range c.Sources() {
		cols, ok := s.Columns(table)
		if !ok || indexOf(cols, col) < 0 {
			continue
		}
		row, found, err := s.DB.SelectOne(table, col, val)
		if err != nil {
			return domain.Row{}, nil, err
		}
		if found {
			return row, s, nil
		}
	}
	return domain.Row{}, nil, nil
}

func indexOf(cols []string, want string) int {
	for i, c := range cols {
		if c == want {
			return i
		}
	}
	return -1
}

func firstOf(cols []string, candidates ...string) string {
	for _, want := range candidates {
		if indexOf(cols, want) >= 0 {
			return want
		}
	}
	return ""
}
