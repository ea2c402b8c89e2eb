package localdb

import (
	"path/filepath"
	"testing"

	"github.com/ichi0g0y/name-picker/internal/types"
)

func setupEntriesTestDB(t *testing.T) {
	t.Helper()

	if DBClient != nil {
		_ = DBClient.Close()
		DBClient = nil
	}

	dbPath := filepath.Join(t.TempDir(), "entries.db")
	if _, err := SetupDB(dbPath); err != nil {
		t.Fatalf("SetupDB failed: %v", err)
	}

	t.Cleanup(func() {
		_ = Close()
	})
}

func TestAddEntry_TrimsAndIgnoresDuplicates(t *testing.T) {
	setupEntriesTestDB(t)

	added, err := AddEntry("  Anna  ", 2)
	if err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if !added {
		t.Fatal("expected Anna to be added")
	}

	added, err = AddEntry("Anna", 5)
	if err != nil {
		t.Fatalf("AddEntry duplicate failed: %v", err)
	}
	if added {
		t.Fatal("duplicate name should be ignored")
	}

	added, err = AddEntry("   ", 1)
	if err != nil {
		t.Fatalf("AddEntry blank failed: %v", err)
	}
	if added {
		t.Fatal("blank name should be ignored")
	}

	entries, err := GetAllEntries()
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "Anna" || entries[0].Weight != 2 {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestAddEntry_ClampsWeight(t *testing.T) {
	setupEntriesTestDB(t)

	want := map[string]int{"Zero": 1, "Negative": 1, "Huge": types.MaxWeight}
	inputs := map[string]int{"Zero": 0, "Negative": -3, "Huge": 1 << 62}
	for name, weight := range inputs {
		if _, err := AddEntry(name, weight); err != nil {
			t.Fatalf("AddEntry(%s) failed: %v", name, err)
		}
	}

	entries, err := GetAllEntries()
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for _, e := range entries {
		if e.Weight != want[e.Name] {
			t.Fatalf("weight for %s: got=%d want=%d", e.Name, e.Weight, want[e.Name])
		}
	}
}

func TestBulkAddEntries(t *testing.T) {
	setupEntriesTestDB(t)

	if _, err := AddEntry("Ian", 3); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	added, err := BulkAddEntries("Laura\n\n  Rahul \nIan\nLaura\r\nTessa")
	if err != nil {
		t.Fatalf("BulkAddEntries failed: %v", err)
	}
	if added != 3 {
		t.Fatalf("added = %d, want 3", added)
	}

	entries, err := GetAllEntries()
	if err != nil {
		t.Fatalf("GetAllEntries failed: %v", err)
	}
	want := []string{"Ian", "Laura", "Rahul", "Tessa"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("entries[%d] = %s, want %s", i, entries[i].Name, name)
		}
	}
	if entries[0].Weight != 3 {
		t.Fatalf("existing weight should be kept, got %d", entries[0].Weight)
	}
}

func TestUpdateEntryWeight(t *testing.T) {
	setupEntriesTestDB(t)

	if _, err := AddEntry("Elena", 1); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}

	tests := []struct {
		name    string
		target  string
		weight  int
		found   bool
		wantWgt int
	}{
		{name: "raise", target: "Elena", weight: 4, found: true, wantWgt: 4},
		{name: "clamp", target: "Elena", weight: 0, found: true, wantWgt: 1},
		{name: "cap", target: "Elena", weight: 1 << 62, found: true, wantWgt: types.MaxWeight},
		{name: "missing", target: "Nobody", weight: 2, found: false, wantWgt: types.MaxWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := UpdateEntryWeight(tt.target, tt.weight)
			if err != nil {
				t.Fatalf("UpdateEntryWeight failed: %v", err)
			}
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			entries, _ := GetAllEntries()
			if entries[0].Weight != tt.wantWgt {
				t.Fatalf("weight = %d, want %d", entries[0].Weight, tt.wantWgt)
			}
		})
	}
}

func TestRemoveAndClearEntries(t *testing.T) {
	setupEntriesTestDB(t)

	if _, err := BulkAddEntries("Anna\nArthur\nCharlie"); err != nil {
		t.Fatalf("BulkAddEntries failed: %v", err)
	}

	removed, err := RemoveEntry("Arthur")
	if err != nil {
		t.Fatalf("RemoveEntry failed: %v", err)
	}
	if !removed {
		t.Fatal("expected Arthur to be removed")
	}
	removed, _ = RemoveEntry("Arthur")
	if removed {
		t.Fatal("second remove should report not found")
	}

	entries, _ := GetAllEntries()
	if len(entries) != 2 || entries[0].Name != "Anna" || entries[1].Name != "Charlie" {
		t.Fatalf("unexpected entries after remove: %+v", entries)
	}

	// 削除後に追加した名前は末尾に並ぶ
	if _, err := AddEntry("Arthur", 1); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	entries, _ = GetAllEntries()
	if entries[len(entries)-1].Name != "Arthur" {
		t.Fatalf("re-added entry should be last, got %+v", entries)
	}

	if err := ClearAllEntries(); err != nil {
		t.Fatalf("ClearAllEntries failed: %v", err)
	}
	entries, _ = GetAllEntries()
	if len(entries) != 0 {
		t.Fatalf("expected empty pool, got %d", len(entries))
	}
}

func TestLoadSampleEntries(t *testing.T) {
	setupEntriesTestDB(t)

	if _, err := AddEntry("Someone", 7); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if _, err := AddEntry(SampleNames[2], 4); err != nil {
		t.Fatalf("AddEntry failed: %v", err)
	}
	if err := LoadSampleEntries(); err != nil {
		t.Fatalf("LoadSampleEntries failed: %v", err)
	}

	entries, err := EntryStore{}.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != len(SampleNames)+1 {
		t.Fatalf("expected %d entries, got %d", len(SampleNames)+1, len(entries))
	}
	if entries[0].Name != "Someone" || entries[0].Weight != 7 {
		t.Fatalf("existing entry should be kept first, got %+v", entries[0])
	}
	if entries[1].Name != SampleNames[2] || entries[1].Weight != 4 {
		t.Fatalf("existing sample name should keep its weight, got %+v", entries[1])
	}

	// 残りのサンプル名は元の順序で末尾に追加される
	rest := entries[2:]
	i := 0
	for j, name := range SampleNames {
		if j == 2 {
			continue
		}
		if rest[i].Name != name || rest[i].Weight != 1 {
			t.Fatalf("entries[%d] = %+v, want %s/1", i+2, rest[i], name)
		}
		i++
	}

	// 2回目は何も追加しない
	if err := LoadSampleEntries(); err != nil {
		t.Fatalf("LoadSampleEntries failed: %v", err)
	}
	again, _ := GetAllEntries()
	if len(again) != len(entries) {
		t.Fatalf("second load changed the pool: got=%d want=%d", len(again), len(entries))
	}
}

func TestEntries_NotInitialized(t *testing.T) {
	if DBClient != nil {
		_ = DBClient.Close()
		DBClient = nil
	}

	if _, err := AddEntry("Anna", 1); err == nil {
		t.Fatal("expected error without database")
	}
	if _, err := GetAllEntries(); err == nil {
		t.Fatal("expected error without database")
	}
}
