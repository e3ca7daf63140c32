package stock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"cafeteria-system/internal/domain"
	"cafeteria-system/internal/microservices/stock/repository"
)

type menuFile struct {
	Items []menuEntry `yaml:"items"`
}

type menuEntry struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Price     float64 `yaml:"price"`
	Available *bool   `yaml:"available"`
}

// LoadMenu reads the seed menu. Entries default to available.
func LoadMenu(path string) ([]domain.MenuItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu %s: %w", path, err)
	}
	return ParseMenu(bytes.NewReader(raw))
}

func ParseMenu(r io.Reader) ([]domain.MenuItem, error) {
	var mf menuFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	seen := make(map[string]bool, len(mf.Items))
	items := make([]domain.MenuItem, 0, len(mf.Items))
	for i, e := range mf.Items {
		id := strings.TrimSpace(e.ID)
		switch {
		case id == "":
			return nil, fmt.Errorf("menu entry %d: id is required", i)
		case seen[id]:
			return nil, fmt.Errorf("menu entry %d: duplicate id %q", i, id)
		case e.Price < 0:
			return nil, fmt.Errorf("menu entry %q: negative price", id)
		}
		seen[id] = true

		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = id
		}
		available := true
		if e.Available != nil {
			available = *e.Available
		}
		items = append(items, domain.MenuItem{ID: id, Name: name, Price: e.Price, Available: available})
	}
	return items, nil
}

// Seed upserts the menu file into menu_items and returns how many entries it wrote.
func Seed(ctx context.Context, db *sqlx.DB, path string) (int, error) {
	items, err := LoadMenu(path)
	if err != nil {
		return 0, err
	}
	if err := repository.NewStockRepository(db).UpsertItems(ctx, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
