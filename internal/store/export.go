package store

import (
	"context"

	"github.com/mnemo-ai/mnemo/internal/model"
)

// ExportAll returns all memories including inactive ones, optionally
// filtered by owner. Inactive rows are kept so a backup round-trips the
// audit trail.
func (s *SQLiteStore) ExportAll(ctx context.Context, ownerID string) ([]model.Memory, error) {
	query := `SELECT ` + memoryCols + ` FROM memories ORDER BY owner_id, created_at, id`
	args := []interface{}{}
	if ownerID != "" {
		query = `SELECT ` + memoryCols + ` FROM memories WHERE owner_id = ? ORDER BY created_at, id`
		args = append(args, ownerID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// Import stores memories from an export, preserving ids and timestamps.
// Rows whose id already exists are skipped. Returns the number imported.
func (s *SQLiteStore) Import(ctx context.Context, memories []model.Memory) (int, error) {
	imported := 0
	for i := range memories {
		m := memories[i]
		if m.ID != "" {
			var exists int
			s.db.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM memories WHERE id = ?`, m.ID).Scan(&exists)
			if exists > 0 {
				continue
			}
		}
		if _, err := s.Insert(ctx, &m); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
