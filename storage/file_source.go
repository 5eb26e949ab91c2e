package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"bizlistings/models"
)

// LoadRawListings reads raw listings from a .json, .yaml/.yml or .csv file.
// JSON and YAML files hold a list of loosely typed records.
func LoadRawListings(path string) ([]*models.RawListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("source: read %q: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("source: parse JSON %q: %w", path, err)
		}
		return fromRecords(records), nil
	case ".yaml", ".yml":
		var records []map[string]any
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("source: parse YAML %q: %w", path, err)
		}
		return fromRecords(records), nil
	case ".csv":
		return readRawCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("source: unsupported file type %q", ext)
	}
}

func fromRecords(records []map[string]any) []*models.RawListing {
	out := make([]*models.RawListing, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, models.RawListingFromMap(r))
	}
	return out
}
