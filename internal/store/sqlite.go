package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/mnemo-ai/mnemo/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id               TEXT PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		kind             TEXT NOT NULL,
		content          TEXT NOT NULL,
		importance       INTEGER NOT NULL DEFAULT 5,
		sentiment        REAL NOT NULL DEFAULT 0,
		emotion          TEXT,
		timeframe        TEXT NOT NULL DEFAULT 'present',
		recency          TEXT NOT NULL DEFAULT 'recent',
		frequency        TEXT NOT NULL DEFAULT 'one_time',
		access_count     INTEGER NOT NULL DEFAULT 0,
		last_accessed_at TEXT NOT NULL,
		effectiveness    REAL NOT NULL DEFAULT 0.5,
		tags             TEXT,
		active           INTEGER NOT NULL DEFAULT 1,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_kind ON memories(owner_id, kind);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_importance ON memories(owner_id, importance DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_accessed ON memories(owner_id, last_accessed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_owner_active ON memories(owner_id, active);

	CREATE TABLE IF NOT EXISTS revisions (
		id          TEXT PRIMARY KEY,
		memory_id   TEXT NOT NULL REFERENCES memories(id),
		content     TEXT NOT NULL,
		importance  INTEGER NOT NULL,
		replaced_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_revisions_memory ON revisions(memory_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const memoryCols = `id, owner_id, kind, content, importance, sentiment, emotion,
	timeframe, recency, frequency, access_count, last_accessed_at, effectiveness,
	tags, active, created_at, updated_at`

func (s *SQLiteStore) Insert(ctx context.Context, m *model.Memory) (*model.Memory, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	out := *m
	if out.ID == "" {
		out.ID = s.newID()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}
	if out.Usage.LastAccessedAt.IsZero() {
		out.Usage.LastAccessedAt = now
	}

	var tagsJSON *string
	if len(out.Tags) > 0 {
		b, _ := json.Marshal(out.Tags)
		t := string(b)
		tagsJSON = &t
	}

	var emotion *string
	if out.Emotional.EmotionWhenCaptured != "" {
		emotion = &out.Emotional.EmotionWhenCaptured
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (`+memoryCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.OwnerID, string(out.Kind), out.Content,
		out.Emotional.Importance, out.Emotional.Sentiment, emotion,
		out.Temporal.Timeframe, out.Temporal.Recency, out.Temporal.Frequency,
		out.Usage.AccessCount, fmtTime(out.Usage.LastAccessedAt), out.Usage.Effectiveness,
		tagsJSON, boolInt(out.Active), fmtTime(out.CreatedAt), fmtTime(out.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	return &out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoryCols+` FROM memories WHERE id = ? AND active = 1`, id)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) FindSimilar(ctx context.Context, ownerID string, kind model.Kind, content string, tags []string) (*model.Memory, error) {
	where := []string{"owner_id = ?", "kind = ?", "active = 1"}
	args := []interface{}{ownerID, string(kind)}

	var overlap []string
	var overlapArgs []interface{}
	if kind == model.KindPersonalFact {
		overlap = append(overlap,
			"instr(lower(content), lower(?)) > 0",
			"instr(lower(?), lower(content)) > 0")
		overlapArgs = append(overlapArgs, content, content)
	}
	for _, tag := range tags {
		overlap = append(overlap, "tags LIKE ?")
		overlapArgs = append(overlapArgs, "%\""+tag+"\"%")
	}
	if len(overlap) == 0 {
		return nil, nil
	}
	where = append(where, "("+strings.Join(overlap, " OR ")+")")
	args = append(args, overlapArgs...)

	query := `SELECT ` + memoryCols + ` FROM memories WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC, id ASC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, args...)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Memory, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if !p.IncludeInactive {
		where = append(where, "active = 1")
	}
	if p.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, p.OwnerID)
	}
	if len(p.Kinds) > 0 {
		ph := make([]string, len(p.Kinds))
		for i, k := range p.Kinds {
			ph[i] = "?"
			args = append(args, string(k))
		}
		where = append(where, "kind IN ("+strings.Join(ph, ", ")+")")
	}
	if p.Emotion != "" {
		where = append(where, "emotion = ?")
		args = append(args, p.Emotion)
	}
	if len(p.Tags) > 0 {
		likes := make([]string, len(p.Tags))
		for i, tag := range p.Tags {
			likes[i] = "tags LIKE ?"
			args = append(args, "%\""+tag+"\"%")
		}
		where = append(where, "("+strings.Join(likes, " OR ")+")")
	}

	query := `SELECT ` + memoryCols + ` FROM memories WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY updated_at DESC, id ASC`
	if p.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, p.Limit)
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

func (s *SQLiteStore) UpdateContent(ctx context.Context, id, content string, importance int, tags []string) (*model.Memory, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var oldContent string
	var oldImportance int
	var oldTags sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT content, importance, tags FROM memories WHERE id = ? AND active = 1`,
		id).Scan(&oldContent, &oldImportance, &oldTags)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO revisions (id, memory_id, content, importance, replaced_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.newID(), id, oldContent, oldImportance, fmtTime(now))
	if err != nil {
		return nil, fmt.Errorf("archive revision: %w", err)
	}

	if oldImportance > importance {
		importance = oldImportance
	}

	merged := tags
	if oldTags.Valid {
		var prev []string
		json.Unmarshal([]byte(oldTags.String), &prev)
		merged = unionTags(prev, tags)
	}
	var tagsJSON *string
	if len(merged) > 0 {
		b, _ := json.Marshal(merged)
		t := string(b)
		tagsJSON = &t
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE memories SET content = ?, importance = ?, tags = ?, recency = ?, updated_at = ?
		 WHERE id = ?`,
		content, importance, tagsJSON, model.RecencyRecent, fmtTime(now), id)
	if err != nil {
		return nil, fmt.Errorf("update memory: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) UpdateEffectiveness(ctx context.Context, id string, effectiveness float64) (*model.Memory, error) {
	now := fmtTime(time.Now().UTC())
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET effectiveness = ?, updated_at = ? WHERE id = ? AND active = 1`,
		effectiveness, now, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) MarkAccessed(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	ts := fmtTime(at.UTC())
	ph := make([]string, len(ids))
	args := []interface{}{ts, ts}
	for i, id := range ids {
		ph[i] = "?"
		args = append(args, id)
	}
	// RFC3339 UTC strings sort chronologically, so the CASE keeps
	// last_accessed_at monotonic even for backdated calls.
	_, err := s.db.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1,
		        last_accessed_at = CASE WHEN last_accessed_at < ? THEN ? ELSE last_accessed_at END
		 WHERE id IN (`+strings.Join(ph, ", ")+`)`, args...)
	return err
}

func (s *SQLiteStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET active = 0, updated_at = ? WHERE id = ? AND active = 1`,
		fmtTime(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeactivateStale(ctx context.Context, p StaleParams) (int, error) {
	where := []string{"active = 1", "importance < ?", "effectiveness < ?", "last_accessed_at < ?"}
	args := []interface{}{fmtTime(time.Now().UTC()), p.MaxImportance, p.MaxEffectiveness, fmtTime(p.NotAccessedSince.UTC())}
	if p.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, p.OwnerID)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET active = 0, updated_at = ? WHERE `+strings.Join(where, " AND "),
		args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) PurgeSynthetic(ctx context.Context, p PurgeParams) (int, error) {
	where := []string{"kind = ?", "last_accessed_at < ?", "access_count < ?"}
	args := []interface{}{string(model.KindSynthetic), fmtTime(p.NotAccessedSince.UTC()), p.MaxAccessCount}
	if p.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, p.OwnerID)
	}
	cond := strings.Join(where, " AND ")

	// Clear revisions first; the memories delete would otherwise
	// trip the foreign key.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM revisions WHERE memory_id IN (SELECT id FROM memories WHERE `+cond+`)`,
		args...); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE `+cond, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *SQLiteStore) Revisions(ctx context.Context, memoryID string) ([]model.Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, memory_id, content, importance, replaced_at
		 FROM revisions WHERE memory_id = ? ORDER BY replaced_at DESC, id DESC`, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []model.Revision
	for rows.Next() {
		var r model.Revision
		var replacedAt string
		if err := rows.Scan(&r.ID, &r.MemoryID, &r.Content, &r.Importance, &replacedAt); err != nil {
			return nil, err
		}
		r.ReplacedAt, _ = time.Parse(time.RFC3339, replacedAt)
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var kind string
	var emotion, tagsJSON sql.NullString
	var lastAccessed, createdAt, updatedAt string
	var active int

	err := row.Scan(
		&m.ID, &m.OwnerID, &kind, &m.Content,
		&m.Emotional.Importance, &m.Emotional.Sentiment, &emotion,
		&m.Temporal.Timeframe, &m.Temporal.Recency, &m.Temporal.Frequency,
		&m.Usage.AccessCount, &lastAccessed, &m.Usage.Effectiveness,
		&tagsJSON, &active, &createdAt, &updatedAt,
	)
	if err != nil {
		return m, err
	}

	m.Kind = model.Kind(kind)
	m.Active = active != 0
	if emotion.Valid {
		m.Emotional.EmotionWhenCaptured = emotion.String
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &m.Tags)
	}
	m.Usage.LastAccessedAt, _ = time.Parse(time.RFC3339, lastAccessed)
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return m, nil
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unionTags(a, b []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range append(append([]string{}, a...), b...) {
		if t != "" && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
