package domain

import "testing"

func TestIsLikelyClone(t *testing.T) {
	tests := []struct {
		id, year int64
		want     bool
	}{
		{338, 1969, false},
		{338, LikelyCloneYear, true},
		{2000, 1969, true},
		{1999, 2020, false},
	}
	for _, tt := range tests {
		if got := IsLikelyClone(tt.id, tt.year); got != tt.want {
			t.Errorf("IsLikelyClone(%d, %d) = %v, want %v", tt.id, tt.year, got, tt.want)
		}
	}
}

func TestRowCloneIsIndependent(t *testing.T) {
	r := Row{Columns: []string{"Id", "Name"}, Values: []any{int64(1), "a"}}
	c := r.Clone()
	c.Set("Id", int64(2))
	c.Set("Extra", int64(3))

	if v, _ := r.Int("Id"); v != 1 {
		t.Errorf("clone mutation leaked into original: Id = %d", v)
	}
	if len(r.Columns) != 2 {
		t.Errorf("clone append leaked into original: %v", r.Columns)
	}
}

func TestRowSetOverwritesExisting(t *testing.T) {
	r := Row{Columns: []string{"Id"}, Values: []any{int64(1)}}
	r.Set("Id", int64(9))
	if len(r.Columns) != 1 {
		t.Fatalf("Set duplicated the column: %v", r.Columns)
	}
	if v, _ := r.Int("Id"); v != 9 {
		t.Errorf("Id = %d, want 9", v)
	}
}

func TestAsInt(t *testing.T) {
	if v, ok := AsInt(int64(5)); !ok || v != 5 {
		t.Error("int64 should coerce")
	}
	if v, ok := AsInt(float64(5)); !ok || v != 5 {
		t.Error("float64 should coerce")
	}
	if _, ok := AsInt("5"); ok {
		t.Error("strings must not coerce")
	}
	if _, ok := AsInt(nil); ok {
		t.Error("nil must not coerce")
	}
}

func TestValidationReportErrors(t *testing.T) {
	r := ValidationReport{Findings: []Finding{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityError},
		{Severity: SeverityInfo},
	}}
	if n := r.Errors(); n != 2 {
		t.Errorf("Errors() = %d, want 2", n)
	}
}
