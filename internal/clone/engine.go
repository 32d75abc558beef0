// Package clone copies one car or engine, with its full dependency
// closure, onto a freshly allocated id in the MAIN database. All reads
// happen up front; the writes apply in a single transaction, so a failed
// clone leaves MAIN exactly as it was.
package clone

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/garagedev/sltcraft/internal/alloc"
	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/closure"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
)

// Request asks for one clone operation.
type Request struct {
	Kind    domain.Kind
	DonorID int64
	// Source names the donor database; empty means MAIN. The donor's rows
	// are still merged from every loaded source during resolution.
	Source  string
	Options domain.CloneOptions
	// DryRun resolves, allocates and rekeys but writes nothing.
	DryRun bool
}

// Engine runs clone operations against an open catalog.
type Engine struct {
	cat   *catalog.Catalog
	pol   *policy.Policy
	res   *closure.Resolver
	alloc *alloc.Allocator
}

// New builds a clone engine. idFloor below 1 uses the default floor.
func New(cat *catalog.Catalog, pol *policy.Policy, idFloor int64) *Engine {
	return &Engine{
		cat:   cat,
		pol:   pol,
		res:   closure.New(cat, pol),
		alloc: alloc.New(cat, idFloor),
	}
}

// Clone runs one operation through the full lifecycle: validate, resolve,
// allocate, rekey, commit. The returned result's State is Committed,
// Planned for a dry run, or absent on error. A commit-stage error means
// MAIN was rolled back.
func (e *Engine) Clone(req Request) (*domain.CloneResult, error) {
	opts, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	src, err := e.cat.SourceByName(req.Source)
	if err != nil {
		return nil, err
	}

	cl, err := e.res.Resolve(req.Kind, req.DonorID, src, closure.Options{
		CloneStockEngine:    opts.CloneStockEngine,
		StockDrivetrainOnly: opts.StockDrivetrainOnly,
	})
	if err != nil {
		return nil, err
	}

	newID, err := e.alloc.Allocate(req.Kind, opts.ForcedID)
	if err != nil {
		return nil, err
	}

	var p *plan
	switch req.Kind {
	case domain.KindCar:
		p, err = e.planCar(cl, newID, opts)
	case domain.KindEngine:
		var ops []writeOp
		ops, err = e.planEngine(cl, newID)
		if err == nil {
			p = &plan{ops: ops}
		}
	}
	if err != nil {
		return nil, err
	}

	result := &domain.CloneResult{
		OperationID:   uuid.NewString(),
		Kind:          req.Kind,
		DonorID:       req.DonorID,
		DonorSource:   cl.RootSource,
		NewID:         newID,
		RowsWritten:   p.rowCount(),
		TablesTouched: p.tables(),
	}

	if req.DryRun {
		result.State = domain.ClonePlanned
		return result, nil
	}

	if err := e.commit(p); err != nil {
		result.State = domain.CloneRolledBack
		return result, err
	}
	e.cat.InvalidateLookupCache()
	result.State = domain.CloneCommitted
	return result, nil
}

// validate checks the request and fills option defaults. Option conflicts
// surface here, before anything is read.
func (e *Engine) validate(req Request) (domain.CloneOptions, error) {
	opts := req.Options

	switch req.Kind {
	case domain.KindCar:
	case domain.KindEngine:
		if opts.CloneStockEngine || opts.ReassignDrivetrainIDs || opts.StockDrivetrainOnly {
			return opts, &domain.InvalidOptionsError{
				Reason: "cloneStockEngine, reassignDrivetrainIds and stockDrivetrainOnly apply to car clones only",
			}
		}
	default:
		return opts, &domain.InvalidOptionsError{Reason: fmt.Sprintf("unknown entity kind %q", req.Kind)}
	}

	if opts.ReassignDrivetrainIDs && opts.StockDrivetrainOnly {
		return opts, &domain.InvalidOptionsError{
			Reason: "reassignDrivetrainIds and stockDrivetrainOnly are mutually exclusive",
		}
	}
	if opts.ForcedID < 0 {
		return opts, &domain.InvalidOptionsError{Reason: fmt.Sprintf("forced id %d is not positive", opts.ForcedID)}
	}
	if opts.YearMarker < 0 {
		return opts, &domain.InvalidOptionsError{Reason: fmt.Sprintf("year marker %d is negative", opts.YearMarker)}
	}
	if opts.YearMarker == 0 {
		opts.YearMarker = domain.LikelyCloneYear
	}

	if !e.cat.Main().Writable() {
		return opts, fmt.Errorf("target database %s is not writable", e.cat.Main().Name())
	}
	return opts, nil
}
