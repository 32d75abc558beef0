// Package alloc mints collision-free identifiers for clone operations.
// Allocation scans every known database, MAIN and DLC alike: DLC sources
// are never written, but two independent clones into MAIN must not collide
// with any id a loaded source already uses.
package alloc

import (
	"fmt"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/domain"
)

// Allocator computes fresh entity ids over a catalog.
type Allocator struct {
	cat   *catalog.Catalog
	floor int64
}

// New creates an allocator with the given floor; 0 selects the conventional
// clone floor of 2000.
func New(cat *catalog.Catalog, floor int64) *Allocator {
	if floor <= 0 {
		floor = domain.CloneIDFloor
	}
	return &Allocator{cat: cat, floor: floor}
}

// Allocate returns a fresh id in kind's domain. With forced == 0 the result
// is max(maxID, floor-1)+1 over all sources. A forced id is returned
// unchanged when unused everywhere, otherwise the allocation fails with
// IDCollisionError and the clone has no effect.
func (a *Allocator) Allocate(kind domain.Kind, forced int64) (int64, error) {
	if forced != 0 {
		if forced < 1 {
			return 0, &domain.InvalidOptionsError{
				Reason: fmt.Sprintf("forced id must be positive, got %d", forced),
			}
		}
		inUse, source, err := a.cat.IDInUse(kind, forced)
		if err != nil {
			return 0, err
		}
		if inUse {
			return 0, &domain.IDCollisionError{Domain: kind, ID: forced, Source: source}
		}
		return forced, nil
	}

	max, err := a.cat.MaxID(kind)
	if err != nil {
		return 0, err
	}
	if max < a.floor-1 {
		max = a.floor - 1
	}
	return max + 1, nil
}

// BlockAllocator hands out sub-block ids under one newly allocated parent
// id (base-block scheme: parentID*1000+offset). Offsets advance
// sequentially and are never reused within one clone operation.
type BlockAllocator struct {
	base int64
	next int64
	// used holds reserved offsets so Keep and Next never hand out the
	// same id within one clone.
	used map[int64]bool
}

// NewBlock creates a sub-block allocator for a parent id.
func NewBlock(parentID int64) *BlockAllocator {
	return &BlockAllocator{
		base: parentID * domain.BaseBlockSize,
		used: make(map[int64]bool),
	}
}

// Base returns the block's first id.
func (b *BlockAllocator) Base() int64 {
	return b.base
}

// Keep reserves base+offset for a donor row whose offset is known, keeping
// the donor's intra-block layout.
func (b *BlockAllocator) Keep(offset int64) int64 {
	id := b.base + offset
	b.used[id] = true
	return id
}

// Next returns the lowest unreserved id in the block.
func (b *BlockAllocator) Next() int64 {
	for {
		id := b.base + b.next
		b.next++
		if !b.used[id] {
			b.used[id] = true
			return id
		}
	}
}

// InBlock reports whether v lies inside the block [base, base+1000) rooted
// at parentID.
func InBlock(v, parentID int64) bool {
	base := parentID * domain.BaseBlockSize
	return v >= base && v < base+domain.BaseBlockSize
}

// Offset returns v's offset inside parentID's block. Callers must check
// InBlock first.
func Offset(v, parentID int64) int64 {
	return v - parentID*domain.BaseBlockSize
}
