package movie

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrDuplicateID is returned when a seed lists the same id twice.
var ErrDuplicateID = errors.New("duplicate movie id")

//go:embed movies.json
var bundledSeed []byte

// Seed returns the bundled catalog loaded at startup.
func Seed() []Movie {
	movies, err := ParseSeed(bundledSeed)
	if err != nil {
		panic(fmt.Sprintf("bundled movie seed is invalid: %v", err))
	}
	return movies
}

// LoadSeedFile reads a JSON array of movies from path.
func LoadSeedFile(path string) ([]Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a JSON array of movies. Every entry must satisfy the full movie
// schema; ids are kept when present and must be unique.
func ParseSeed(data []byte) ([]Movie, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	seen := make(map[string]bool, len(raws))
	movies := make([]Movie, 0, len(raws))
	for i, raw := range raws {
		m, err := ValidateMovie(raw)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}

		var ident struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &ident); err != nil {
			return nil, fmt.Errorf("seed entry %d: id must be a string", i)
		}
		if ident.ID != "" {
			if seen[ident.ID] {
				return nil, fmt.Errorf("seed entry %d: %w: %s", i, ErrDuplicateID, ident.ID)
			}
			seen[ident.ID] = true
		}

		m.ID = ident.ID
		movies = append(movies, m)
	}
	return movies, nil
}
