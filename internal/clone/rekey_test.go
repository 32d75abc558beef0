package clone

import (
	"testing"

	"github.com/garagedev/sltcraft/internal/domain"
)

func TestMapIDBaseBlockShift(t *testing.T) {
	s := newSubstitution(338000, 2000000)

	if got := s.mapID(338007); got != 2000007 {
		t.Errorf("in-block id mapped to %d, want 2000007", got)
	}
	if got := s.mapID(4084); got != 4084 {
		t.Errorf("out-of-block id changed to %d", got)
	}
	s.explicit[4084] = 9999
	if got := s.mapID(4084); got != 9999 {
		t.Errorf("explicit mapping ignored: %d", got)
	}
}

func TestRekeyRowReferenceColumns(t *testing.T) {
	s := newSubstitution(338000, 2000000)
	row := domain.Row{
		Columns: []string{"Ordinal", "CarBodyID", "EngineID", "PowertrainID", "Level"},
		Values:  []any{int64(338), int64(338000), int64(4084), int64(338001), int64(0)},
	}

	out := s.rekeyRow(row, map[string]int64{"Ordinal": 2000})

	if v, _ := out.Int("Ordinal"); v != 2000 {
		t.Errorf("Ordinal = %d", v)
	}
	if v, _ := out.Int("CarBodyID"); v != 2000000 {
		t.Errorf("CarBodyID = %d, base shift not applied", v)
	}
	// Engine and drivetrain references only move through their own maps.
	if v, _ := out.Int("EngineID"); v != 4084 {
		t.Errorf("EngineID changed to %d without a mapping", v)
	}
	if v, _ := out.Int("PowertrainID"); v != 338001 {
		t.Errorf("PowertrainID changed to %d without reassignment", v)
	}

	s.engines[4084] = 4086
	s.drivetrains[338001] = 2000001
	out = s.rekeyRow(row, nil)
	if v, _ := out.Int("EngineID"); v != 4086 {
		t.Errorf("mapped EngineID = %d", v)
	}
	if v, _ := out.Int("PowertrainID"); v != 2000001 {
		t.Errorf("mapped PowertrainID = %d", v)
	}

	// Input row untouched throughout.
	if v, _ := row.Int("CarBodyID"); v != 338000 {
		t.Error("rekeyRow mutated its input")
	}
}

func TestRekeyRowClampsWheelDiameters(t *testing.T) {
	s := newSubstitution(0, 0)
	row := domain.Row{
		Columns: []string{"Id", "FrontWheelDiameter", "RearWheelDiameter"},
		Values:  []any{int64(338000), int64(30), int64(9)},
	}

	out := s.rekeyRow(row, nil)
	if v, _ := out.Int("FrontWheelDiameter"); v != domain.WheelDiameterMax {
		t.Errorf("oversize diameter = %d, want %d", v, domain.WheelDiameterMax)
	}
	if v, _ := out.Int("RearWheelDiameter"); v != domain.WheelDiameterMin {
		t.Errorf("undersize diameter = %d, want %d", v, domain.WheelDiameterMin)
	}
}
