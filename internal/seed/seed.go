// Package seed loads fixture records into a store.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/jobtrack/internal/schemas"
	"github.com/jonathan/jobtrack/internal/store"
	"github.com/jonathan/jobtrack/internal/types"
	rootschemas "github.com/jonathan/jobtrack/schemas"
)

//go:embed applications.json
var defaultFixture []byte

// Default returns the built-in demo records.
func Default() ([]types.ApplicationRecord, error) {
	return Parse(defaultFixture)
}

// Parse validates data against the applications schema and decodes it.
func Parse(data []byte) ([]types.ApplicationRecord, error) {
	if err := schemas.ValidateJSONBytes(rootschemas.Applications, data); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	var records []types.ApplicationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return records, nil
}

// ReadFile validates and decodes the fixture file at path.
func ReadFile(path string) ([]types.ApplicationRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Into restores records into st keeping their ids. It returns the number
// loaded.
func Into(st *store.Store, records []types.ApplicationRecord) (int, error) {
	for i, rec := range records {
		if err := st.Restore(rec); err != nil {
			return i, fmt.Errorf("seed record %d: %w", rec.ID, err)
		}
	}
	return len(records), nil
}

// Load fills st from path, or from the built-in fixture when path is empty.
func Load(st *store.Store, path string) (int, error) {
	var (
		records []types.ApplicationRecord
		err     error
	)
	if path == "" {
		records, err = Default()
	} else {
		records, err = ReadFile(path)
	}
	if err != nil {
		return 0, err
	}
	return Into(st, records)
}
