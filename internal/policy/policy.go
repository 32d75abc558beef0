// Package policy holds the per-table clone policy. Which upgrade tables copy
// only their stock row, which tables are skipped outright, and which
// per-car link tables get synchronization rows is observed behavior, not
// something derivable from the schema. It lives in a data file, never in
// inference.
package policy

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Policy is the clone engine's table policy table.
type Policy struct {
	// StockOnlyTables copy only their IsStock=1/Level=0 row on car clone.
	StockOnlyTables []string `yaml:"stock_only_tables"`
	// SkipPrefixes name table-name prefixes never cloned (global gameplay
	// tables with UNIQUE constraints).
	SkipPrefixes []string `yaml:"skip_prefixes"`
	// SkipTables name individual tables never cloned.
	SkipTables []string `yaml:"skip_tables"`
	// ExtraDependencyTables are car-scoped tables outside the List_/Data_
	// naming that a car cannot load without.
	ExtraDependencyTables []string `yaml:"extra_dependency_tables"`
	// ComboTables are per-car rows inside otherwise-global Combo_* tables;
	// they are re-keyed, not bulk-copied.
	ComboTables []ComboTable `yaml:"combo_tables"`
	// ContentOffer describes the single linking row added per cloned car.
	ContentOffer ContentOffer `yaml:"content_offer"`
}

// ComboTable describes one Combo_* table's per-car row shape.
type ComboTable struct {
	Name      string `yaml:"name"`
	KeyColumn string `yaml:"key_column"`
	// BaseBlock marks tables whose primary keys live in the car's
	// base-block (CarID*1000+offset) rather than a global sequence.
	BaseBlock bool `yaml:"base_block"`
}

// ContentOffer is the ContentOffersMapping linking-row template.
type ContentOffer struct {
	Table   string `yaml:"table"`
	OfferID int64  `yaml:"offer_id"`
}

// Load parses the embedded default policy.
func Load() (*Policy, error) {
	return Parse(defaultPolicy)
}

// Parse parses a policy document.
func Parse(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse clone policy: %w", err)
	}
	return &p, nil
}

// StockOnly reports whether a table copies only its stock row on car clone.
func (p *Policy) StockOnly(table string) bool {
	for _, t := range p.StockOnlyTables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// Skip reports whether a table is excluded from closure resolution.
func (p *Policy) Skip(table string) bool {
	tl := strings.ToLower(table)
	for _, prefix := range p.SkipPrefixes {
		if strings.HasPrefix(tl, strings.ToLower(prefix)) {
			return true
		}
	}
	for _, t := range p.SkipTables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// ExtraDependency reports whether a table is a policy-listed car dependency
// outside the List_/Data_ naming convention.
func (p *Policy) ExtraDependency(table string) bool {
	for _, t := range p.ExtraDependencyTables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// Combo returns the combo-table entry for table, if any.
func (p *Policy) Combo(table string) (ComboTable, bool) {
	for _, c := range p.ComboTables {
		if strings.EqualFold(c.Name, table) {
			return c, true
		}
	}
	return ComboTable{}, false
}
