package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string       `json:"db_path"`
	DBSizeBytes    int64        `json:"db_size_bytes"`
	TotalMemories  int          `json:"total_memories"`
	ActiveMemories int          `json:"active_memories"`
	TotalRevisions int          `json:"total_revisions"`
	Owners         []OwnerStats `json:"owners"`
}

// OwnerStats holds per-owner counts.
type OwnerStats struct {
	OwnerID string         `json:"owner_id"`
	Active  int            `json:"active"`
	Total   int            `json:"total"`
	ByKind  map[string]int `json:"by_kind"`
}

// Stats returns database statistics, optionally scoped to one owner.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath, ownerID string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.TotalMemories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE active = 1`).Scan(&st.ActiveMemories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM revisions`).Scan(&st.TotalRevisions)

	ownerQuery := `
		SELECT owner_id, SUM(active), COUNT(*)
		FROM memories GROUP BY owner_id ORDER BY COUNT(*) DESC`
	args := []interface{}{}
	if ownerID != "" {
		ownerQuery = `
			SELECT owner_id, SUM(active), COUNT(*)
			FROM memories WHERE owner_id = ? GROUP BY owner_id`
		args = append(args, ownerID)
	}

	rows, err := s.db.QueryContext(ctx, ownerQuery, args...)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var o OwnerStats
		if err := rows.Scan(&o.OwnerID, &o.Active, &o.Total); err != nil {
			return st, err
		}
		o.ByKind = map[string]int{}
		kindRows, err := s.db.QueryContext(ctx,
			`SELECT kind, COUNT(*) FROM memories WHERE owner_id = ? AND active = 1 GROUP BY kind`,
			o.OwnerID)
		if err != nil {
			return st, err
		}
		for kindRows.Next() {
			var kind string
			var n int
			kindRows.Scan(&kind, &n)
			o.ByKind[kind] = n
		}
		kindRows.Close()
		st.Owners = append(st.Owners, o)
	}

	return st, rows.Err()
}
