package postgres

import (
	"context"
	"database/sql"

	"github.com/epharma/triage/pkg/ports"
)

// Catalog implements ports.MedicineCatalog over the medicines table.
type Catalog struct {
	db *sql.DB
}

// NewCatalog wraps an existing database handle.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// FindAll returns every medicine, name-ordered.
func (c *Catalog) FindAll(ctx context.Context) ([]ports.Medicine, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, type, price, COALESCE(image_url, ''), in_stock
         FROM medicines
         ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medicines []ports.Medicine
	for rows.Next() {
		var m ports.Medicine
		if err := rows.Scan(&m.Name, &m.Type, &m.Price, &m.ImageURL, &m.InStock); err != nil {
			return nil, err
		}
		medicines = append(medicines, m)
	}
	return medicines, rows.Err()
}
