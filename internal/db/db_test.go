package db

import (
	"path/filepath"
	"testing"

	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/testutil"
)

func TestOpenMissingFileFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.slt"))
	if err == nil {
		t.Fatal("opening a missing database must fail, not create it")
	}
}

func TestOpenReadOnlyRejectsWrites(t *testing.T) {
	path := testutil.CreateDB(t, t.TempDir(), "dlc.slt")

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer ro.Close()

	if ro.Writable() {
		t.Error("read-only handle reports writable")
	}
	if _, err := ro.Exec(`INSERT INTO Data_Car VALUES (1, 'x', 2000, 0)`); err == nil {
		t.Error("write through a read-only handle must fail")
	}
}

func TestTablesAndColumns(t *testing.T) {
	path := testutil.CreateDB(t, t.TempDir(), "main.slt")
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	tables, err := d.Tables()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, tb := range tables {
		if tb == "Data_Car" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Data_Car missing from %v", tables)
	}

	cols, err := d.Columns("Data_Car")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 4 || cols[0] != "Id" {
		t.Errorf("unexpected Data_Car columns: %v", cols)
	}

	ok, err := d.TableExists("NoSuchTable")
	if err != nil || ok {
		t.Errorf("TableExists(NoSuchTable) = %v, %v", ok, err)
	}
}

func TestSelectAndMaxInt(t *testing.T) {
	path := testutil.MainDB(t)
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	rows, err := d.SelectWhere("List_UpgradeEngine", "Ordinal", int64(338))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 upgrade rows, got %d", len(rows))
	}
	if id, ok := rows[0].Int("EngineID"); !ok || id != 4084 {
		t.Errorf("first row EngineID = %d, want 4084", id)
	}

	block, err := d.SelectRange("Data_CarBody", "Id", 338000, 339000)
	if err != nil {
		t.Fatal(err)
	}
	if len(block) != 2 {
		t.Fatalf("expected 2 body rows in block, got %d", len(block))
	}

	max, err := d.MaxInt("Data_Engine", "Id")
	if err != nil {
		t.Fatal(err)
	}
	if max != 4085 {
		t.Errorf("MaxInt = %d, want 4085", max)
	}

	// Absent table and column both read as zero, not as an error.
	if m, err := d.MaxInt("NoSuchTable", "Id"); err != nil || m != 0 {
		t.Errorf("MaxInt on missing table = %d, %v", m, err)
	}
}

func TestInsertRowDropsUnknownColumns(t *testing.T) {
	path := testutil.CreateDB(t, t.TempDir(), "main.slt")
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	targetCols, err := d.Columns("Data_Car")
	if err != nil {
		t.Fatal(err)
	}

	insert := domain.Row{
		Columns: []string{"Id", "CarName", "ModelYear", "PowertrainID", "DlcOnlyColumn"},
		Values:  []any{int64(5), "Test", int64(2001), int64(5001), "dropme"},
	}
	if err := InsertRow(d, "Data_Car", targetCols, insert); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, found, err := d.SelectOne("Data_Car", "Id", int64(5))
	if err != nil || !found {
		t.Fatalf("inserted row not found: %v", err)
	}
	if name, _ := got.Get("CarName"); name != "Test" {
		t.Errorf("CarName = %v", name)
	}
}

func TestDeleteHelpers(t *testing.T) {
	path := testutil.MainDB(t)
	d, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	n, err := DeleteWhere(d, "List_UpgradeEngine", "Ordinal", int64(338))
	if err != nil || n != 2 {
		t.Fatalf("DeleteWhere removed %d rows (%v), want 2", n, err)
	}

	n, err = DeleteRange(d, "Data_CarBody", "Id", 338000, 339000)
	if err != nil || n != 2 {
		t.Fatalf("DeleteRange removed %d rows (%v), want 2", n, err)
	}
}
