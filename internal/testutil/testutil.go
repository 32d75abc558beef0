// Package testutil builds small game database fixtures for tests. The
// schema mirrors the shape of real .slt files: entity tables, base-block
// sub-rows, Ordinal-keyed upgrade lists, and the Combo/content link tables.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Schema is the fixture DDL shared by MAIN and DLC test databases.
const Schema = `
CREATE TABLE Data_Car (
	Id INTEGER PRIMARY KEY,
	CarName TEXT,
	ModelYear INTEGER,
	PowertrainID INTEGER
);
CREATE TABLE Data_CarBody (
	Id INTEGER PRIMARY KEY,
	MaterialTypeID INTEGER,
	FrontWheelDiameter INTEGER,
	RearWheelDiameter INTEGER
);
CREATE TABLE Data_Engine (
	Id INTEGER PRIMARY KEY,
	EngineName TEXT,
	EngineConfigID INTEGER
);
CREATE TABLE Data_Drivetrain (
	DrivetrainID INTEGER PRIMARY KEY,
	DriveTypeID INTEGER
);
CREATE TABLE List_UpgradeCarBody (
	Ordinal INTEGER,
	CarBodyID INTEGER,
	Level INTEGER,
	IsStock INTEGER
);
CREATE TABLE List_UpgradeEngine (
	Ordinal INTEGER,
	EngineID INTEGER,
	Level INTEGER,
	IsStock INTEGER
);
CREATE TABLE List_UpgradeDrivetrain (
	Ordinal INTEGER,
	PowertrainID INTEGER,
	Level INTEGER,
	IsStock INTEGER
);
CREATE TABLE List_UpgradeEngineTurbo (
	EngineID INTEGER,
	Level INTEGER,
	TorqueCurveID INTEGER
);
CREATE TABLE List_TorqueCurve (
	TorqueCurveID INTEGER PRIMARY KEY,
	PeakTorque INTEGER
);
CREATE TABLE List_EngineConfig (
	ConfigID INTEGER PRIMARY KEY,
	EngineConfig TEXT
);
CREATE TABLE Combo_Colors (
	Id INTEGER PRIMARY KEY,
	Ordinal INTEGER,
	ColorGroupID INTEGER
);
CREATE TABLE Combo_Engines (
	EngineComboID INTEGER PRIMARY KEY,
	Ordinal INTEGER,
	EngineID INTEGER
);
CREATE TABLE ContentOffersMapping (
	Id INTEGER PRIMARY KEY,
	ContentID INTEGER,
	OfferID INTEGER,
	ContentType INTEGER
);
CREATE TABLE CarExceptions (
	CarID INTEGER,
	Note TEXT
);
CREATE TABLE EventParticipants (
	CarID INTEGER,
	EventID INTEGER
);
`

// CreateDB creates an empty fixture database with the game schema and
// returns its path. The file lands in dir, which tests usually get from
// t.TempDir().
func CreateDB(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	conn := OpenRaw(t, path)
	defer conn.Close()
	if _, err := conn.Exec(Schema); err != nil {
		t.Fatalf("Failed to create fixture schema in %s: %v", name, err)
	}
	return path
}

// OpenRaw opens a database file directly, creating it if missing. Fixture
// setup only; production code goes through internal/db.
func OpenRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open fixture database %s: %v", path, err)
	}
	return conn
}

// Exec runs one statement against a fixture database.
func Exec(t *testing.T, conn *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("Fixture exec failed: %v\n  %s", err, query)
	}
}

// ExecPath runs one statement against a fixture file, opening and closing
// its own connection.
func ExecPath(t *testing.T, path, query string, args ...any) {
	t.Helper()
	conn := OpenRaw(t, path)
	defer conn.Close()
	Exec(t, conn, query, args...)
}

// SeedBaseGame fills a fixture with the canonical test content: car 338
// with two bodies, a drivetrain, engines 4084 (stock) and 4085 (upgrade),
// torque curves in both block widths, and the per-car combo/link rows.
func SeedBaseGame(t *testing.T, path string) {
	t.Helper()
	conn := OpenRaw(t, path)
	defer conn.Close()

	stmts := []string{
		`INSERT INTO Data_Car VALUES (338, 'Speedster GT', 1969, 338001)`,

		`INSERT INTO Data_CarBody VALUES (338000, 1, 18, 18)`,
		`INSERT INTO Data_CarBody VALUES (338001, 2, 19, 19)`,

		`INSERT INTO Data_Drivetrain VALUES (338001, 2)`,

		`INSERT INTO List_UpgradeCarBody VALUES (338, 338000, 0, 1)`,
		`INSERT INTO List_UpgradeCarBody VALUES (338, 338001, 1, 0)`,

		`INSERT INTO List_UpgradeEngine VALUES (338, 4084, 0, 1)`,
		`INSERT INTO List_UpgradeEngine VALUES (338, 4085, 1, 0)`,

		`INSERT INTO List_UpgradeDrivetrain VALUES (338, 338001, 0, 1)`,
		`INSERT INTO List_UpgradeDrivetrain VALUES (338, 338001, 1, 0)`,

		`INSERT INTO Data_Engine VALUES (4084, 'Stock V8', 3)`,
		`INSERT INTO Data_Engine VALUES (4085, 'Race V8', 3)`,

		`INSERT INTO List_UpgradeEngineTurbo VALUES (4084, 0, 4084000)`,
		`INSERT INTO List_UpgradeEngineTurbo VALUES (4084, 1, 408400)`,
		`INSERT INTO List_UpgradeEngineTurbo VALUES (4085, 0, 4085000)`,

		`INSERT INTO List_TorqueCurve VALUES (4084000, 320)`,
		`INSERT INTO List_TorqueCurve VALUES (408400, 410)`,
		`INSERT INTO List_TorqueCurve VALUES (4085000, 560)`,

		`INSERT INTO List_EngineConfig VALUES (3, 'V8')`,

		`INSERT INTO Combo_Colors VALUES (338000, 338, 7)`,
		`INSERT INTO Combo_Engines VALUES (77, 338, 4084)`,

		`INSERT INTO ContentOffersMapping VALUES (338, 338, 900100, 1)`,

		`INSERT INTO CarExceptions VALUES (338, 'no convertible roof')`,
		`INSERT INTO EventParticipants VALUES (338, 12)`,
	}
	for _, s := range stmts {
		Exec(t, conn, s)
	}
}

// SeedDLCCar adds a car to a fixture, typically one created as a DLC
// source. The car reuses MAIN's engine 4084 so cross-source resolution
// has something to find.
func SeedDLCCar(t *testing.T, path string, carID int64) {
	t.Helper()
	conn := OpenRaw(t, path)
	defer conn.Close()

	base := carID * 1000
	Exec(t, conn, `INSERT INTO Data_Car VALUES (?, 'DLC Roadster', 1977, ?)`, carID, base+1)
	Exec(t, conn, `INSERT INTO Data_CarBody VALUES (?, 1, 17, 17)`, base)
	Exec(t, conn, `INSERT INTO Data_Drivetrain VALUES (?, 1)`, base+1)
	Exec(t, conn, `INSERT INTO List_UpgradeCarBody VALUES (?, ?, 0, 1)`, carID, base)
	Exec(t, conn, `INSERT INTO List_UpgradeEngine VALUES (?, 4084, 0, 1)`, carID)
	Exec(t, conn, `INSERT INTO List_UpgradeDrivetrain VALUES (?, ?, 0, 1)`, carID, base+1)
}

// MainDB creates and seeds a MAIN fixture in its own temp directory.
func MainDB(t *testing.T) string {
	t.Helper()
	path := CreateDB(t, t.TempDir(), "gamedb.slt")
	SeedBaseGame(t, path)
	return path
}

// AssertNoError asserts that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
}

// AssertError asserts that an error is not nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}
