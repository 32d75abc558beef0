package cli

import (
	"testing"

	"github.com/garagedev/sltcraft/internal/domain"
)

func TestParseKind(t *testing.T) {
	cases := map[string]domain.Kind{
		"car":     domain.KindCar,
		"cars":    domain.KindCar,
		"engine":  domain.KindEngine,
		"engines": domain.KindEngine,
	}
	for in, want := range cases {
		got, err := parseKind(in)
		if err != nil {
			t.Errorf("parseKind(%q) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("parseKind(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := parseKind("truck"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("338"); err != nil || id != 338 {
		t.Errorf("parseID(338) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-5", "3.5"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) should fail", bad)
		}
	}
}
