package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
)

// Categories returns all categories in display order
func (db *DB) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, icon, color
		FROM categories
		ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// SeedIfEmpty loads the seed into a fresh database. A database that already
// holds categories is left alone so user edits survive restarts.
func (db *DB) SeedIfEmpty(ctx context.Context, seed store.Seed) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	categories := seed.Categories
	if len(categories) == 0 {
		categories = model.DefaultCategories()
	}

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for i, c := range categories {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, name, icon, color, position) VALUES (?, ?, ?, ?, ?)
			`, c.ID, c.Name, c.Icon, c.Color, i); err != nil {
				return fmt.Errorf("category %s: %w", c.Name, err)
			}
		}
		for _, t := range seed.Tasks {
			if err := db.insertTask(ctx, tx, t); err != nil {
				return fmt.Errorf("task %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed database: %w", err)
	}
	return true, nil
}
