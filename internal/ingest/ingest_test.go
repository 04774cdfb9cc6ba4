package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/veldhuis/atelier/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Communication{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func TestImport_MixedRecords(t *testing.T) {
	db := testDB(t)

	records := []Record{
		{MessageID: "<ok@x>", Sender: "kim@clientco.com", Subject: "hi", SentAt: "2026-08-01T09:00:00Z"},
		{MessageID: "", Sender: "x@y.test"},                               // missing id
		{MessageID: "<bad-date@x>", Sender: "x@y.test", SentAt: "August"}, // bad timestamp
		{MessageID: "<doc@x>", Filename: "plan_25BK-013.pdf"},             // document, no sender
	}

	summary, err := Import(db, records)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if summary.Processed != 4 {
		t.Errorf("Processed = %d, want 4", summary.Processed)
	}
	if summary.Imported != 2 {
		t.Errorf("Imported = %d, want 2", summary.Imported)
	}
	if summary.Failed != 2 {
		t.Errorf("Failed = %d, want 2", summary.Failed)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("Errors = %+v", summary.Errors)
	}
	if summary.Errors[1].MessageID != "<bad-date@x>" {
		t.Errorf("Errors[1] = %+v", summary.Errors[1])
	}

	var count int64
	db.Model(&models.Communication{}).Count(&count)
	if count != 2 {
		t.Errorf("rows = %d, want 2", count)
	}
}

func TestImport_DuplicateIsSkipped(t *testing.T) {
	db := testDB(t)
	records := []Record{{MessageID: "<m@x>", Sender: "a@b.test"}}

	if _, err := Import(db, records); err != nil {
		t.Fatal(err)
	}
	summary, err := Import(db, records)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if summary.Skipped != 1 || summary.Imported != 0 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
}

func TestImportFile(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "export.json")
	payload := `[{"message_id":"<f@x>","sender":"kim@clientco.com","subject":"re: 25 BK-013","sent_at":"2026-08-02T10:30:00Z"}]`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	summary, err := ImportFile(db, path)
	if err != nil {
		t.Fatalf("ImportFile() error: %v", err)
	}
	if summary.Imported != 1 {
		t.Errorf("Imported = %d, want 1", summary.Imported)
	}

	if _, err := ImportFile(db, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should error")
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("not json"), 0644)
	if _, err := ImportFile(db, bad); err == nil {
		t.Error("malformed file should error")
	}
}
