package services

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
)

const testSetsJSON = `[
	{"id": "base1", "name": "Base", "series": "Base", "printedTotal": 102, "total": 102, "releaseDate": "1999/01/09"},
	{"id": "sv1", "name": "Scarlet & Violet", "series": "Scarlet & Violet", "printedTotal": 198, "total": 258, "releaseDate": "2023/03/31"}
]`

const testBaseCardsJSON = `[
	{"id": "base1-4", "name": "Charizard", "supertype": "Pokémon", "subtypes": ["Stage 2"], "hp": "120",
	 "types": ["Fire"], "number": "4", "artist": "Mitsuhiro Arita", "rarity": "Rare Holo",
	 "nationalPokedexNumbers": [6], "attacks": [{"name": "Fire Spin", "cost": ["Fire", "Fire"], "damage": "100"}],
	 "images": {"small": "https://images.pokemontcg.io/base1/4.png"}},
	{"id": "base1-58", "name": "Pikachu", "supertype": "Pokémon", "number": "58", "rarity": "Common"}
]`

const testSV1CardsJSON = `[
	{"id": "sv1-1", "name": "Pineco", "supertype": "Pokémon", "number": "1", "rarity": "Common"}
]`

var testDataFiles = map[string]string{
	"sets/en.json":        testSetsJSON,
	"cards/en/sv1.json":   testSV1CardsJSON,
	"cards/en/base1.json": testBaseCardsJSON,
	"cards/en/README.md":  "not a card file",
}

func writeTestData(t *testing.T, root string) {
	t.Helper()
	for name, content := range testDataFiles {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func testZip(t *testing.T, prefix string, extra map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	add := func(name, content string) {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	for name, content := range testDataFiles {
		add(prefix+"/"+name, content)
	}
	for name, content := range extra {
		add(name, content)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestReadRawCatalog(t *testing.T) {
	root := t.TempDir()
	writeTestData(t, root)

	raw, err := ReadRawCatalog(root)
	if err != nil {
		t.Fatalf("ReadRawCatalog() error: %v", err)
	}
	if len(raw.Sets) != 2 {
		t.Errorf("got %d sets, want 2", len(raw.Sets))
	}

	// base1.json sorts before sv1.json, cards keep file order
	wantIDs := []string{"base1-4", "base1-58", "sv1-1"}
	if len(raw.Cards) != len(wantIDs) {
		t.Fatalf("got %d cards, want %d", len(raw.Cards), len(wantIDs))
	}
	for i, id := range wantIDs {
		if raw.Cards[i].ID != id {
			t.Errorf("Cards[%d] = %s, want %s", i, raw.Cards[i].ID, id)
		}
	}
	if raw.Cards[2].SetID != "sv1" {
		t.Errorf("SetID = %q, want sv1 from file name", raw.Cards[2].SetID)
	}
	if got := raw.Cards[0].Attacks[0].Cost; len(got) != 2 {
		t.Errorf("attack cost = %v, want two energies", got)
	}
}

func TestReadRawCatalogSkipsBadCardFiles(t *testing.T) {
	root := t.TempDir()
	writeTestData(t, root)
	if err := os.WriteFile(filepath.Join(root, "cards", "en", "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := ReadRawCatalog(root)
	if err != nil {
		t.Fatalf("ReadRawCatalog() error: %v", err)
	}
	if len(raw.Cards) != 3 {
		t.Errorf("got %d cards, want 3 (broken file skipped)", len(raw.Cards))
	}
}

func TestCatalogLoaderFromDisk(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, filepath.Join(dataDir, pokemonDataDir))

	payload, err := NewCatalogLoader(dataDir, "", false).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cat, err := catalog.Load(payload)
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}
	if cat.Len() != 3 || cat.Lookups.Sets.Len() != 2 {
		t.Errorf("catalog has %d cards, %d sets; want 3, 2", cat.Len(), cat.Lookups.Sets.Len())
	}
}

func TestCatalogLoaderMissingData(t *testing.T) {
	_, err := NewCatalogLoader(t.TempDir(), "", false).Load(context.Background())
	if !errors.Is(err, ErrCatalogDataMissing) {
		t.Errorf("Load() error = %v, want ErrCatalogDataMissing", err)
	}
}

func TestCatalogLoaderDownloads(t *testing.T) {
	archive := testZip(t, "pokemon-tcg-data", nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(archive)
	}))
	defer srv.Close()

	dataDir := t.TempDir()
	loader := NewCatalogLoader(dataDir, "", true)
	loader.sourceURL = srv.URL

	payload, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(payload.Cards) != 3 {
		t.Errorf("got %d cards, want 3", len(payload.Cards))
	}
	if _, err := os.Stat(filepath.Join(dataDir, pokemonDataDir, "sets", "en.json")); err != nil {
		t.Errorf("extracted data not renamed into place: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "pokemon-tcg-data.zip")); !os.IsNotExist(err) {
		t.Error("downloaded zip should be removed after extraction")
	}
}

func TestCatalogLoaderDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	loader := NewCatalogLoader(t.TempDir(), "", true)
	loader.sourceURL = srv.URL
	if _, err := loader.Load(context.Background()); err == nil {
		t.Error("Load() should fail when the download fails")
	}
}

func TestExtractZipRejectsZipSlip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "evil.zip")
	data := testZip(t, pokemonDataDir, map[string]string{"../escape.txt": "gotcha"})
	if err := os.WriteFile(zipPath, data, 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}

	dest := filepath.Join(dir, "out")
	if err := extractZip(zipPath, dest); err == nil {
		t.Error("extractZip() should reject entries outside the destination")
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("zip slip entry was written outside the destination")
	}
}

func TestLoadPayloadFile(t *testing.T) {
	root := t.TempDir()
	writeTestData(t, root)
	raw, err := ReadRawCatalog(root)
	if err != nil {
		t.Fatalf("ReadRawCatalog() error: %v", err)
	}
	payload, err := catalog.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	path := filepath.Join(root, "catalog.json")
	if err := WritePayloadFile(path, payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	loaded, err := NewCatalogLoader("", path, false).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	cat, err := catalog.Load(loaded)
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("catalog has %d cards, want 3", cat.Len())
	}
	if pos, ok := cat.Position("base1-4"); !ok || cat.Cards[pos].SortAux.HP != 120 {
		t.Error("round-tripped payload lost card data")
	}

	if _, err := LoadPayloadFile(filepath.Join(root, "missing.json")); err == nil {
		t.Error("LoadPayloadFile() should fail for a missing file")
	}
}
