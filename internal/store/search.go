package store

import (
	"context"
	"strings"

	"github.com/mnemo-ai/mnemo/internal/model"
)

// SearchParams holds parameters for ad hoc memory search.
type SearchParams struct {
	OwnerID string
	Query   string
	Kind    model.Kind
	Limit   int
}

// Search finds active memories whose content or tags match the query
// substring. Lexical only; used by the CLI and for operator inspection.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	like := "%" + p.Query + "%"
	where := []string{"active = 1", "(content LIKE ? OR tags LIKE ?)"}
	args := []interface{}{like, like}

	if p.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, p.OwnerID)
	}
	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(p.Kind))
	}

	query := `SELECT ` + memoryCols + ` FROM memories WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}
