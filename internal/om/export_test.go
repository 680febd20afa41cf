package om

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dealdesk/internal/seed"
)

func TestExportDashboardXLSX(t *testing.T) {
	c := Normalize(Content(seed.DemoOMContent()))
	path := filepath.Join(t.TempDir(), "out", "riverside.xlsx")

	if err := ExportDashboardXLSX(c, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty workbook written")
	}
}

func TestExportDashboardXLSXFromPersistedRecord(t *testing.T) {
	// A record loaded back from storage carries its derived sections as
	// plain maps, not typed structs. The export must handle both.
	c := Normalize(Content(seed.DemoOMContent()))
	blob, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var persisted Content
	if err := json.Unmarshal(blob, &persisted); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "riverside.xlsx")
	if err := ExportDashboardXLSX(persisted, path); err != nil {
		t.Fatalf("export from persisted record: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestExportDashboardXLSXEmptyRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := ExportDashboardXLSX(Content{}, path); err != nil {
		t.Fatalf("export empty record: %v", err)
	}
}
