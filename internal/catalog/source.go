package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/garagedev/sltcraft/internal/db"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/schema"
)

// Source is one loaded database: the writable MAIN or a read-only DLC file.
// Table classifications are computed once on open and held for the life of
// the catalog.
type Source struct {
	DB   *db.DB
	Role domain.Role

	tables  []string
	classes map[string]schema.Classification
	columns map[string][]string
}

func openSource(path string, role domain.Role) (*Source, error) {
	var conn *db.DB
	var err error
	if role == domain.RoleMain {
		conn, err = db.Open(path)
	} else {
		conn, err = db.OpenReadOnly(path)
	}
	if err != nil {
		return nil, err
	}

	s := &Source{
		DB:      conn,
		Role:    role,
		classes: make(map[string]schema.Classification),
		columns: make(map[string][]string),
	}
	if err := s.index(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// index builds the per-table classification cache.
func (s *Source) index() error {
	tables, err := s.DB.Tables()
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", s.Name(), err)
	}
	s.tables = tables
	for _, t := range tables {
		cols, err := s.DB.Columns(t)
		if err != nil {
			return fmt.Errorf("failed to index %s.%s: %w", s.Name(), t, err)
		}
		s.columns[t] = cols
		s.classes[t] = schema.Classify(t, cols)
	}
	return nil
}

// Name returns the database file name without its extension, the form
// users pass to --from and friends.
func (s *Source) Name() string {
	base := s.DB.Name()
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Path returns the database file path.
func (s *Source) Path() string {
	return s.DB.Path()
}

// Writable reports whether the source may be mutated.
func (s *Source) Writable() bool {
	return s.DB.Writable()
}

// Tables lists the source's tables from the index.
func (s *Source) Tables() []string {
	return s.tables
}

// HasTable reports table presence from the index.
func (s *Source) HasTable(table string) bool {
	_, ok := s.classes[table]
	return ok
}

// Columns returns a table's column names from the index.
func (s *Source) Columns(table string) ([]string, bool) {
	cols, ok := s.columns[table]
	return cols, ok
}

// Classification returns a table's cached scope classification.
func (s *Source) Classification(table string) (schema.Classification, bool) {
	c, ok := s.classes[table]
	return c, ok
}

// DiscoverDLC walks a DLC folder for .slt databases, excluding the MAIN
// file, in stable name-then-path order.
func DiscoverDLC(dlcDir, mainPath string) ([]string, error) {
	if dlcDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dlcDir); err != nil {
		return nil, fmt.Errorf("DLC folder not found: %s: %w", dlcDir, err)
	}

	mainAbs, err := filepath.Abs(mainPath)
	if err != nil {
		return nil, err
	}

	var found []string
	err = filepath.WalkDir(dlcDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".slt") {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if abs == mainAbs {
			return nil
		}
		found = append(found, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan DLC folder %s: %w", dlcDir, err)
	}

	sort.Slice(found, func(i, j int) bool {
		ni, nj := strings.ToLower(filepath.Base(found[i])), strings.ToLower(filepath.Base(found[j]))
		if ni != nj {
			return ni < nj
		}
		return strings.ToLower(found[i]) < strings.ToLower(found[j])
	})
	return found, nil
}
