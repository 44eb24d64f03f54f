package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emberforge/ember/internal/data"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSnapshotNotFound = errors.New("scene snapshot not found")

// SnapshotRow is the listing view of a stored scene.
type SnapshotRow struct {
	ID          uuid.UUID
	Name        string
	EntityCount int
	CreatedAt   time.Time
}

// SceneRepo stores scene snapshots as YAML documents.
type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// SaveScene inserts a new snapshot and returns its id.
func (r *SceneRepo) SaveScene(ctx context.Context, sf *data.SceneFile) (uuid.UUID, error) {
	body, err := sf.Marshal()
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode scene: %w", err)
	}
	id := uuid.New()
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO scene_snapshots (id, name, entity_count, body)
		 VALUES ($1, $2, $3, $4)`,
		id, sf.Name, sf.Count(), string(body),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert snapshot: %w", err)
	}
	r.db.log.Debug("scene snapshot stored")
	return id, nil
}

// Load returns the snapshot with the given id.
func (r *SceneRepo) Load(ctx context.Context, id uuid.UUID) (*data.SceneFile, error) {
	var body string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT body FROM scene_snapshots WHERE id = $1`, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, err
	}
	return data.ParseScene([]byte(body))
}

// Latest returns the newest snapshot of the named scene.
func (r *SceneRepo) Latest(ctx context.Context, name string) (*data.SceneFile, uuid.UUID, error) {
	var (
		id   uuid.UUID
		body string
	)
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, body FROM scene_snapshots
		 WHERE name = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, name,
	).Scan(&id, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, uuid.Nil, fmt.Errorf("scene %q: %w", name, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, uuid.Nil, err
	}
	sf, err := data.ParseScene([]byte(body))
	return sf, id, err
}

// List returns up to limit snapshots, newest first.
func (r *SceneRepo) List(ctx context.Context, limit int) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, entity_count, created_at
		 FROM scene_snapshots
		 ORDER BY created_at DESC
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		if err := rows.Scan(&s.ID, &s.Name, &s.EntityCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *SceneRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM scene_snapshots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, ErrSnapshotNotFound)
	}
	return nil
}
