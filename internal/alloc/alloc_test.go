package alloc

import (
	"errors"
	"testing"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/testutil"
)

func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := testutil.MainDB(t)
	cat, err := catalog.Open(path, nil)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestAllocateUsesFloor(t *testing.T) {
	cat := openTestCatalog(t)
	a := New(cat, 0)

	// Highest car id in the fixture is 338, below the floor.
	id, err := a.Allocate(domain.KindCar, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id != domain.CloneIDFloor {
		t.Errorf("allocated %d, want %d", id, domain.CloneIDFloor)
	}
}

func TestAllocateAboveExistingMax(t *testing.T) {
	cat := openTestCatalog(t)
	a := New(cat, 0)

	// Engines already sit above the floor; allocation continues past them.
	id, err := a.Allocate(domain.KindEngine, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id != 4086 {
		t.Errorf("allocated %d, want 4086", id)
	}
}

func TestForcedIDCollision(t *testing.T) {
	cat := openTestCatalog(t)
	a := New(cat, 0)

	_, err := a.Allocate(domain.KindCar, 338)
	var collision *domain.IDCollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected IDCollisionError, got %v", err)
	}
	if collision.ID != 338 {
		t.Errorf("collision reports id %d", collision.ID)
	}

	id, err := a.Allocate(domain.KindCar, 5000)
	if err != nil || id != 5000 {
		t.Errorf("free forced id rejected: %d, %v", id, err)
	}
}

func TestForcedIDMustBePositive(t *testing.T) {
	cat := openTestCatalog(t)
	a := New(cat, 0)

	_, err := a.Allocate(domain.KindCar, -7)
	var invalid *domain.InvalidOptionsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOptionsError, got %v", err)
	}
}

func TestBlockAllocatorKeepsDonorOffsets(t *testing.T) {
	b := NewBlock(2000)
	if b.Base() != 2000000 {
		t.Fatalf("base = %d", b.Base())
	}

	kept := b.Keep(0)
	if kept != 2000000 {
		t.Errorf("Keep(0) = %d", kept)
	}
	kept = b.Keep(5)
	if kept != 2000005 {
		t.Errorf("Keep(5) = %d", kept)
	}

	// Next skips reserved offsets and never reuses one.
	seen := map[int64]bool{kept: true, 2000000: true}
	for i := 0; i < 10; i++ {
		id := b.Next()
		if seen[id] {
			t.Fatalf("offset reused: %d", id)
		}
		seen[id] = true
		if !InBlock(id, 2000) {
			t.Fatalf("%d escaped the block", id)
		}
	}
}

func TestInBlockAndOffset(t *testing.T) {
	if !InBlock(338001, 338) || InBlock(339000, 338) {
		t.Error("block membership wrong")
	}
	if Offset(338007, 338) != 7 {
		t.Error("offset wrong")
	}
}
