package clone

import (
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/schema"
)

// substitution maps donor identifiers to freshly allocated ones. Reference
// columns whose value falls inside the donor base-block shift to the same
// offset in the new block; everything else is remapped only through the
// explicit tables.
type substitution struct {
	oldBase  int64
	newBase  int64
	explicit map[int64]int64
	// engines and drivetrains remap only their own reference columns.
	// They stay out of explicit: drivetrain and body ids share the donor
	// block's numeric space, and a shared map would rewrite drivetrain
	// references that were meant to keep pointing at the donor's rows.
	engines     map[int64]int64
	drivetrains map[int64]int64
}

func newSubstitution(oldBase, newBase int64) *substitution {
	return &substitution{
		oldBase:     oldBase,
		newBase:     newBase,
		explicit:    map[int64]int64{},
		engines:     map[int64]int64{},
		drivetrains: map[int64]int64{},
	}
}

func (s *substitution) mapID(v int64) int64 {
	if nv, ok := s.explicit[v]; ok {
		return nv
	}
	if s.oldBase > 0 && v >= s.oldBase && v < s.oldBase+domain.BaseBlockSize {
		return s.newBase + (v - s.oldBase)
	}
	return v
}

// rekeyRow returns a copy of row with reference columns remapped through
// the substitution, wheel diameters clamped, and forced columns overwritten
// last. The input row is never modified.
func (s *substitution) rekeyRow(row domain.Row, forced map[string]int64) domain.Row {
	out := row.Clone()
	for i, col := range out.Columns {
		v, ok := domain.AsInt(out.Values[i])
		if !ok {
			continue
		}
		switch {
		case schema.IsWheelDiameterColumn(col):
			out.Values[i] = clampWheelDiameter(v)
		case schema.IsEngineRefColumn(col):
			if nv, ok := s.engines[v]; ok {
				out.Values[i] = nv
			}
		case schema.IsDrivetrainRefColumn(col):
			if nv, ok := s.drivetrains[v]; ok {
				out.Values[i] = nv
			}
		case schema.IsReferenceColumn(col):
			if nv := s.mapID(v); nv != v {
				out.Values[i] = nv
			}
		}
	}
	for col, v := range forced {
		out.Set(col, v)
	}
	return out
}

func clampWheelDiameter(v int64) int64 {
	if v < domain.WheelDiameterMin {
		return domain.WheelDiameterMin
	}
	if v > domain.WheelDiameterMax {
		return domain.WheelDiameterMax
	}
	return v
}
