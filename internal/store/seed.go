package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dori/taskflow/internal/model"
	"github.com/tidwall/jsonc"
)

//go:embed seed.jsonc
var defaultSeed []byte

// Seed is the initial content of a store
type Seed struct {
	Tasks      []model.Task
	Categories []model.Category
}

// seedFile is the fixture layout. Tasks may give dueIn (days from load time)
// instead of a fixed dueDate so the demo data stays fresh.
type seedFile struct {
	Categories []model.Category `json:"categories"`
	Tasks      []seedTask       `json:"tasks"`
}

type seedTask struct {
	model.Task
	DueIn *int `json:"dueIn,omitempty"`
}

// LoadSeed parses a JSONC fixture. Relative dueIn values resolve against now.
func LoadSeed(r io.Reader, now time.Time) (Seed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to read seed: %w", err)
	}

	var file seedFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return Seed{}, fmt.Errorf("failed to parse seed: %w", err)
	}

	today := model.DateOf(now)
	seed := Seed{Categories: file.Categories}
	for i, st := range file.Tasks {
		t := st.Task
		if t.ID == "" {
			return Seed{}, fmt.Errorf("seed task %d has no id", i)
		}
		if st.DueIn != nil {
			due := today.AddDays(*st.DueIn)
			t.DueDate = &due
		}
		if t.Priority == "" {
			t.Priority = model.PriorityMedium
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		seed.Tasks = append(seed.Tasks, t)
	}
	if len(seed.Categories) == 0 {
		seed.Categories = model.DefaultCategories()
	}
	return seed, nil
}

// LoadSeedFile reads a fixture from disk, or the built-in one when path is empty
func LoadSeedFile(path string, now time.Time) (Seed, error) {
	if path == "" {
		return DefaultSeed(now)
	}
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return LoadSeed(f, now)
}

// DefaultSeed returns the built-in demo fixture
func DefaultSeed(now time.Time) (Seed, error) {
	return LoadSeed(bytes.NewReader(defaultSeed), now)
}
