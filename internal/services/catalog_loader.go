package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
)

const (
	pokemonDataURL = "https://github.com/PokemonTCG/pokemon-tcg-data/archive/refs/heads/master.zip"
	pokemonDataDir = "pokemon-tcg-data-master"

	downloadTimeout = 5 * time.Minute
)

// ErrCatalogDataMissing is returned when the data directory has no catalog
// and downloading is disabled
var ErrCatalogDataMissing = errors.New("pokemon catalog data not found")

// CatalogLoader produces catalog payloads, either from a pre-normalized JSON
// file or from the pokemon-tcg-data repository layout on disk (downloaded on
// first use).
type CatalogLoader struct {
	dataDir     string
	catalogFile string
	download    bool
	sourceURL   string
	client      *http.Client
}

// NewCatalogLoader creates a loader. When catalogFile is set it wins over dataDir.
func NewCatalogLoader(dataDir, catalogFile string, download bool) *CatalogLoader {
	return &CatalogLoader{
		dataDir:     dataDir,
		catalogFile: catalogFile,
		download:    download,
		sourceURL:   pokemonDataURL,
		client:      &http.Client{Timeout: downloadTimeout},
	}
}

// Load returns a normalized payload ready for catalog.Engine.LoadCatalog
func (l *CatalogLoader) Load(ctx context.Context) (catalog.Payload, error) {
	if l.catalogFile != "" {
		return LoadPayloadFile(l.catalogFile)
	}

	dataPath := filepath.Join(l.dataDir, pokemonDataDir)
	if _, err := os.Stat(dataPath); os.IsNotExist(err) {
		if !l.download {
			return catalog.Payload{}, fmt.Errorf("%w in %s", ErrCatalogDataMissing, l.dataDir)
		}
		log.Println("Pokemon TCG data not found. Downloading...")
		if err := l.downloadPokemonData(ctx); err != nil {
			return catalog.Payload{}, fmt.Errorf("failed to download pokemon data: %w", err)
		}
		log.Println("Pokemon TCG data downloaded successfully.")
	}

	raw, err := ReadRawCatalog(dataPath)
	if err != nil {
		return catalog.Payload{}, err
	}
	payload, err := catalog.Normalize(raw)
	if err != nil {
		return catalog.Payload{}, err
	}
	log.Printf("Pokemon data read: %d cards, %d sets", len(payload.Cards), payload.Lookups.Sets.Len())
	return payload, nil
}

// ReadRawCatalog reads sets/en.json and every cards/en/<set>.json under
// dataPath. Card files are read in name order so the catalog order is
// stable across loads. Unreadable card files are skipped with a warning.
func ReadRawCatalog(dataPath string) (catalog.RawCatalog, error) {
	var raw catalog.RawCatalog

	setsFile := filepath.Join(dataPath, "sets", "en.json")
	setsData, err := os.ReadFile(setsFile)
	if err != nil {
		return raw, fmt.Errorf("failed to read sets file: %w", err)
	}
	if err := json.Unmarshal(setsData, &raw.Sets); err != nil {
		return raw, fmt.Errorf("failed to parse sets: %w", err)
	}

	cardsDir := filepath.Join(dataPath, "cards", "en")
	files, err := os.ReadDir(cardsDir) // sorted by filename
	if err != nil {
		return raw, fmt.Errorf("failed to read cards directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		setID := strings.TrimSuffix(file.Name(), ".json")
		cardFile := filepath.Join(cardsDir, file.Name())
		cardData, err := os.ReadFile(cardFile)
		if err != nil {
			log.Printf("Warning: failed to read card file %s: %v", cardFile, err)
			continue
		}

		var cards []catalog.RawCard
		if err := json.Unmarshal(cardData, &cards); err != nil {
			log.Printf("Warning: failed to parse card file %s: %v", cardFile, err)
			continue
		}

		for i := range cards {
			cards[i].SetID = setID
		}
		raw.Cards = append(raw.Cards, cards...)
	}

	return raw, nil
}

// LoadPayloadFile reads an already normalized catalog payload from JSON
func LoadPayloadFile(path string) (catalog.Payload, error) {
	var p catalog.Payload
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return p, nil
}

// WritePayloadFile stores a normalized payload for later LoadPayloadFile calls
func WritePayloadFile(path string, p catalog.Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

func (l *CatalogLoader) downloadPokemonData(ctx context.Context) error {
	if err := os.MkdirAll(l.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	zipPath := filepath.Join(l.dataDir, "pokemon-tcg-data.zip")

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", l.sourceURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	if _, err := io.Copy(zipFile, resp.Body); err != nil {
		zipFile.Close()
		return fmt.Errorf("failed to write zip file: %w", err)
	}
	if err := zipFile.Close(); err != nil {
		return fmt.Errorf("failed to write zip file: %w", err)
	}

	if err := extractZip(zipPath, l.dataDir); err != nil {
		return fmt.Errorf("failed to extract zip: %w", err)
	}

	if err := os.Remove(zipPath); err != nil {
		log.Printf("Warning: failed to clean up zip file: %v", err)
	}

	// github names the folder after the branch; accept the bare repo name too
	extractedPath := filepath.Join(l.dataDir, pokemonDataDir)
	if _, err := os.Stat(extractedPath); os.IsNotExist(err) {
		altPath := filepath.Join(l.dataDir, "pokemon-tcg-data")
		if _, err := os.Stat(altPath); err == nil {
			if renameErr := os.Rename(altPath, extractedPath); renameErr != nil {
				return fmt.Errorf("failed to rename extracted directory: %w", renameErr)
			}
		}
	}

	return nil
}

func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		fpath := filepath.Join(destDir, f.Name)

		// ZipSlip
		if !strings.HasPrefix(fpath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("invalid file path: %s", fpath)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(fpath, os.ModePerm); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
			return err
		}
		if err := extractFile(f, fpath); err != nil {
			return err
		}
	}

	return nil
}

func extractFile(f *zip.File, fpath string) error {
	outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(outFile, rc)
	return err
}
