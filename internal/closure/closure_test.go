package closure

import (
	"errors"
	"testing"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/testutil"
)

func fixtureResolver(t *testing.T, withDLC bool) (*Resolver, *catalog.Catalog) {
	t.Helper()
	dir := t.TempDir()
	mainPath := testutil.CreateDB(t, dir, "gamedb.slt")
	testutil.SeedBaseGame(t, mainPath)

	var dlc []string
	if withDLC {
		dlcPath := testutil.CreateDB(t, dir, "dlc_hotwheels.slt")
		testutil.SeedDLCCar(t, dlcPath, 900)
		dlc = append(dlc, dlcPath)
	}

	cat, err := catalog.Open(mainPath, dlc)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	pol, err := policy.Load()
	if err != nil {
		t.Fatal(err)
	}
	return New(cat, pol), cat
}

func scopedTable(cl *Closure, table string) *TableRows {
	for i := range cl.Scoped {
		if cl.Scoped[i].Table == table {
			return &cl.Scoped[i]
		}
	}
	return nil
}

func TestCarClosureContents(t *testing.T) {
	r, cat := fixtureResolver(t, false)

	cl, err := r.Resolve(domain.KindCar, 338, cat.Main(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if len(cl.BodyRows) != 2 {
		t.Errorf("expected 2 body rows, got %d", len(cl.BodyRows))
	}
	if cl.DonorBodyID != 338000 {
		t.Errorf("donor body id = %d, want 338000", cl.DonorBodyID)
	}
	if cl.StockEngineID != 4084 {
		t.Errorf("stock engine id = %d, want 4084", cl.StockEngineID)
	}
	if cl.StockEngine != nil {
		t.Error("stock engine closure resolved without cloneStockEngine")
	}

	// The upgrade assignment table copies every level; the stock-only
	// policy table keeps only its Level=0 row.
	if g := scopedTable(cl, "List_UpgradeEngine"); g == nil || len(g.Rows) != 2 {
		t.Error("List_UpgradeEngine rows missing")
	}
	if g := scopedTable(cl, "List_UpgradeCarBody"); g == nil || len(g.Rows) != 1 {
		t.Error("List_UpgradeCarBody should keep only the stock row")
	}
	if g := scopedTable(cl, "CarExceptions"); g == nil || len(g.Rows) != 1 {
		t.Error("policy dependency table CarExceptions missing")
	}
	if g := scopedTable(cl, "EventParticipants"); g != nil {
		t.Error("EventParticipants is policy-skipped and must not be collected")
	}

	if len(cl.Combos) != 2 {
		t.Errorf("expected combo rows from 2 tables, got %d", len(cl.Combos))
	}
}

func TestCarClosureStockDrivetrainOnly(t *testing.T) {
	r, cat := fixtureResolver(t, false)

	cl, err := r.Resolve(domain.KindCar, 338, cat.Main(), Options{StockDrivetrainOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	g := scopedTable(cl, "List_UpgradeDrivetrain")
	if g == nil || len(g.Rows) != 1 {
		t.Fatalf("expected only the stock drivetrain row, got %+v", g)
	}
	if stock, _ := g.Rows[0].Int("IsStock"); stock != 1 {
		t.Error("surviving row is not the stock row")
	}
}

func TestCarClosureMissingBodyBlockFatal(t *testing.T) {
	r, cat := fixtureResolver(t, false)
	testutil.ExecPath(t, cat.Main().Path(), `DELETE FROM Data_CarBody`)

	_, err := r.Resolve(domain.KindCar, 338, cat.Main(), Options{})
	var missing *domain.MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError, got %v", err)
	}
	if missing.Table != "Data_CarBody" {
		t.Errorf("wrong table: %s", missing.Table)
	}
}

func TestEngineClosureFollowsCurveReferences(t *testing.T) {
	r, cat := fixtureResolver(t, false)

	cl, err := r.Resolve(domain.KindEngine, 4084, cat.Main(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	// 4084000 lives in the *1000 block, 408400 in the *100 block. Both are
	// found by reference, never derived from the engine id.
	if len(cl.TorqueCurves) != 2 {
		t.Fatalf("expected 2 torque curves, got %d", len(cl.TorqueCurves))
	}
	ids := map[int64]bool{}
	for _, c := range cl.TorqueCurves {
		ids[c.ID] = true
	}
	if !ids[4084000] || !ids[408400] {
		t.Errorf("wrong curves: %v", ids)
	}

	if g := scopedTable(cl, "List_UpgradeEngineTurbo"); g == nil || len(g.Rows) != 2 {
		t.Error("engine upgrade rows missing")
	}
	// The car->engine assignment stays with the car.
	if g := scopedTable(cl, "List_UpgradeEngine"); g != nil {
		t.Error("List_UpgradeEngine is car-scoped and must not appear in an engine closure")
	}
}

func TestEngineClosureUnresolvableCurveFatal(t *testing.T) {
	r, cat := fixtureResolver(t, false)
	testutil.ExecPath(t, cat.Main().Path(), `DELETE FROM List_TorqueCurve WHERE TorqueCurveID = 4084000`)

	_, err := r.Resolve(domain.KindEngine, 4084, cat.Main(), Options{})
	var missing *domain.MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError, got %v", err)
	}
	if missing.Key != 4084000 {
		t.Errorf("wrong key: %d", missing.Key)
	}
}

func TestCarClosureWithNestedEngine(t *testing.T) {
	r, cat := fixtureResolver(t, false)

	cl, err := r.Resolve(domain.KindCar, 338, cat.Main(), Options{CloneStockEngine: true})
	if err != nil {
		t.Fatal(err)
	}
	if cl.StockEngine == nil {
		t.Fatal("nested engine closure missing")
	}
	if cl.StockEngine.RootID != 4084 {
		t.Errorf("nested engine root = %d", cl.StockEngine.RootID)
	}
	if len(cl.StockEngine.TorqueCurves) != 2 {
		t.Errorf("nested engine curves = %d", len(cl.StockEngine.TorqueCurves))
	}
	if cl.Size() <= cl.StockEngine.Size() {
		t.Error("car closure size must include nested rows")
	}
}

func TestDLCCarMergesRowsFromMain(t *testing.T) {
	r, cat := fixtureResolver(t, true)
	src, err := cat.SourceByName("dlc_hotwheels")
	if err != nil {
		t.Fatal(err)
	}

	cl, err := r.Resolve(domain.KindCar, 900, src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if cl.RootSource != "dlc_hotwheels" {
		t.Errorf("root source = %s", cl.RootSource)
	}
	if len(cl.BodyRows) != 1 {
		t.Errorf("DLC body rows = %d", len(cl.BodyRows))
	}
	// The DLC car's stock engine lives in MAIN.
	if cl.StockEngineID != 4084 {
		t.Errorf("stock engine = %d", cl.StockEngineID)
	}
}
