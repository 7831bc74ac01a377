package repositories

import (
	"context"
	"errors"

	"hostel-backend/internal/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LayoutRepository stores the per-room layout document as an opaque blob.
// The tagged-union decoding lives in models; this layer never inspects
// the document.
type LayoutRepository interface {
	Get(ctx context.Context, roomID string) ([]byte, error)
	Save(ctx context.Context, roomID string, document []byte) error
	ListRoomIDs(ctx context.Context) ([]string, error)
}

type PostgresLayoutRepository struct {
	DB *pgxpool.Pool
}

func NewPostgresLayoutRepository(db *pgxpool.Pool) *PostgresLayoutRepository {
	return &PostgresLayoutRepository{DB: db}
}

func (r *PostgresLayoutRepository) Get(ctx context.Context, roomID string) ([]byte, error) {
	var document []byte
	err := r.DB.QueryRow(ctx,
		`SELECT document FROM room_layouts WHERE room_id=$1`, roomID).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("no layout for room %q", roomID)
	}
	if err != nil {
		return nil, err
	}
	return document, nil
}

func (r *PostgresLayoutRepository) Save(ctx context.Context, roomID string, document []byte) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO room_layouts(room_id, document)
         VALUES($1, $2)
         ON CONFLICT (room_id) DO UPDATE SET document=EXCLUDED.document, updated_at=NOW()`,
		roomID, document)
	return err
}

func (r *PostgresLayoutRepository) ListRoomIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT room_id FROM room_layouts ORDER BY room_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
