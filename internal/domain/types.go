package domain

// Kind identifies which entity family a table row or catalog entry belongs to.
type Kind string

const (
	KindCar    Kind = "car"
	KindEngine Kind = "engine"
)

// Role distinguishes the single writable MAIN database from read-only DLC sources.
type Role string

const (
	RoleMain Role = "main"
	RoleDLC  Role = "dlc"
)

// Scope classifies a table by the entity its rows are keyed to.
type Scope string

const (
	ScopeCar        Scope = "car"
	ScopeEngine     Scope = "engine"
	ScopeCarBody    Scope = "carbody"
	ScopeDrivetrain Scope = "drivetrain"
	ScopeGlobal     Scope = "global"
)

// LikelyCloneYear is the model-year marker written to cloned cars. Any car
// carrying it (or an id at or above CloneIDFloor) is flagged as a likely clone.
const LikelyCloneYear = 6969

// CloneIDFloor is the conventional lower bound for ids minted by the allocator.
const CloneIDFloor = 2000

// BaseBlockSize is the width of a parent entity's sub-block id range:
// child ids live in [parentID*BaseBlockSize, (parentID+1)*BaseBlockSize).
const BaseBlockSize = 1000

// Wheel diameter bounds enforced when copying donor values.
const (
	WheelDiameterMin = 13
	WheelDiameterMax = 24
)

// Row is one table row read from a source database: column names in table
// order paired with their values. Rows are never mutated after read; cloning
// produces rewritten copies.
type Row struct {
	Columns []string
	Values  []any
}

// Clone returns a deep copy whose slices can be rewritten independently.
func (r Row) Clone() Row {
	out := Row{
		Columns: make([]string, len(r.Columns)),
		Values:  make([]any, len(r.Values)),
	}
	copy(out.Columns, r.Columns)
	copy(out.Values, r.Values)
	return out
}

// Index returns the position of col, or -1.
func (r Row) Index(col string) int {
	for i, c := range r.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Get returns the value of col and whether the column exists.
func (r Row) Get(col string) (any, bool) {
	if i := r.Index(col); i >= 0 {
		return r.Values[i], true
	}
	return nil, false
}

// Set overwrites col if present, otherwise appends it.
func (r *Row) Set(col string, v any) {
	if i := r.Index(col); i >= 0 {
		r.Values[i] = v
		return
	}
	r.Columns = append(r.Columns, col)
	r.Values = append(r.Values, v)
}

// Int reads col as an int64, tolerating the numeric representations the
// sqlite driver produces. ok is false when the column is absent, NULL, or
// not numeric.
func (r Row) Int(col string) (int64, bool) {
	v, found := r.Get(col)
	if !found {
		return 0, false
	}
	return AsInt(v)
}

// AsInt coerces a scanned SQLite value to int64 where possible.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

// EntitySummary is one catalog listing entry: a single instance of an entity
// in a single source database.
type EntitySummary struct {
	Kind        Kind   `json:"kind"`
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Year        int64  `json:"year,omitempty"`
	Source      string `json:"source"`
	Role        Role   `json:"role"`
	LikelyClone bool   `json:"likely_clone"`
}

// IsLikelyClone reports the catalog's likely-clone heuristic.
func IsLikelyClone(id, year int64) bool {
	return year == LikelyCloneYear || id >= CloneIDFloor
}

// CloneOptions are the user-supplied knobs of a clone request.
type CloneOptions struct {
	BackupBeforeClone     bool
	YearMarker            int64 // 0 means the default marker
	CloneStockEngine      bool
	ReassignDrivetrainIDs bool
	StockDrivetrainOnly   bool
	ForcedID              int64 // 0 means auto-assign
}

// CloneState names a stage of the clone lifecycle. Every operation moves
// strictly forward; Committed and RolledBack are terminal.
type CloneState string

const (
	CloneRequested  CloneState = "requested"
	CloneValidated  CloneState = "validated"
	CloneAllocating CloneState = "allocating"
	CloneRekeying   CloneState = "rekeying"
	CloneCommitting CloneState = "committing"
	CloneCommitted  CloneState = "committed"
	CloneRolledBack CloneState = "rolled_back"
	// ClonePlanned is the terminal state of a dry run: allocation and
	// rekeying ran, nothing was written.
	ClonePlanned CloneState = "planned"
)

// CloneResult reports a committed clone.
type CloneResult struct {
	OperationID   string         `json:"operation_id"`
	State         CloneState     `json:"state"`
	Kind          Kind           `json:"kind"`
	DonorID       int64          `json:"donor_id"`
	DonorSource   string         `json:"donor_source"`
	NewID         int64          `json:"new_id"`
	RowsWritten   int            `json:"rows_written"`
	TablesTouched map[string]int `json:"tables_touched"`
	BackupPath    string         `json:"backup_path,omitempty"`
}

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one validator observation. Findings inform; the engine never
// auto-fixes.
type Finding struct {
	Severity    Severity `json:"severity"`
	Table       string   `json:"table,omitempty"`
	RowKey      int64    `json:"row_key,omitempty"`
	Description string   `json:"description"`
}

// ValidationReport collects the findings for one entity in one database.
type ValidationReport struct {
	Kind     Kind      `json:"kind"`
	ID       int64     `json:"id"`
	Source   string    `json:"source"`
	Findings []Finding `json:"findings"`
}

// Errors counts error-severity findings.
func (r *ValidationReport) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}
