package store

import (
	"context"
	"fmt"

	"github.com/jeffsasaki/storefront/models"
)

// DefaultCatalog is the catalog installed into an empty database.
func DefaultCatalog() []models.Product {
	return []models.Product{
		{
			Name:        "Wireless Noise-Cancelling Headphones",
			Description: "Premium over-ear headphones with active noise cancellation and 30-hour battery life.",
			Price:       29999,
			ImageURL:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800&q=80",
			Category:    "Audio",
			InStock:     true,
		},
		{
			Name:        "Smart Watch Series 8",
			Description: "Advanced health tracking, cellular connectivity, and always-on retina display.",
			Price:       39900,
			ImageURL:    "https://images.unsplash.com/photo-1546868871-7041f2a55e12?w=800&q=80",
			Category:    "Wearables",
			InStock:     true,
		},
		{
			Name:        "Mechanical Keyboard",
			Description: "Customizable mechanical keyboard with tactile switches and RGB backlighting.",
			Price:       14950,
			ImageURL:    "https://images.unsplash.com/photo-1595225476474-87563907a212?w=800&q=80",
			Category:    "Accessories",
			InStock:     true,
		},
		{
			Name:        "4K Monitor 27-inch",
			Description: "Ultra-sharp 4K resolution monitor with color accuracy perfect for creators.",
			Price:       45000,
			ImageURL:    "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=800&q=80",
			Category:    "Displays",
			InStock:     true,
		},
		{
			Name:        "Ergonomic Office Chair",
			Description: "Fully adjustable ergonomic chair designed for all-day comfort and support.",
			Price:       59999,
			ImageURL:    "https://images.unsplash.com/photo-1505843490538-5133c6c7d0e1?w=800&q=80",
			Category:    "Furniture",
			InStock:     true,
		},
		{
			Name:        "Portable SSD 1TB",
			Description: "Lightning-fast portable solid state drive for backing up your important files.",
			Price:       12999,
			ImageURL:    "https://images.unsplash.com/photo-1531492746076-161ca9bcad58?w=800&q=80",
			Category:    "Storage",
			InStock:     true,
		},
	}
}

// SeedIfEmpty inserts products when the catalog has no rows and reports how
// many were written. The table lock keeps two instances starting at once from
// both seeding.
func (s *PostgresStore) SeedIfEmpty(ctx context.Context, products []models.Product) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("lock products: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		tx.Rollback()
		return 0, nil
	}

	for _, p := range products {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO products (name, description, price, image_url, category, in_stock)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.InStock)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return len(products), nil
}
