package memory

import (
	"context"

	"github.com/epharma/triage/pkg/ports"
)

// Catalog implements ports.MedicineCatalog over a fixed slice.
type Catalog struct {
	medicines []ports.Medicine
}

// NewCatalog creates a catalog from the given entries.
func NewCatalog(medicines ...ports.Medicine) *Catalog {
	return &Catalog{medicines: medicines}
}

// FindAll returns every catalog entry.
func (c *Catalog) FindAll(ctx context.Context) ([]ports.Medicine, error) {
	out := make([]ports.Medicine, len(c.medicines))
	copy(out, c.medicines)
	return out, nil
}
