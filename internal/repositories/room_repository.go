package repositories

import (
	"context"
	"errors"

	"hostel-backend/internal/apperrors"
	"hostel-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomRepository exposes the slice of room state this engine needs.
// Room CRUD itself belongs to the room service upstream; here rooms are
// read for bed creation defaults and written only for the denormalized
// occupancy count.
type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	List(ctx context.Context) ([]*models.Room, error)
	UpdateOccupancy(ctx context.Context, roomID string, occupancy int) error
}

type PostgresRoomRepository struct {
	DB *pgxpool.Pool
}

func NewPostgresRoomRepository(db *pgxpool.Pool) *PostgresRoomRepository {
	return &PostgresRoomRepository{DB: db}
}

const roomColumns = `id, room_number, capacity, occupancy, COALESCE(gender_policy, ''), monthly_rate, created_at, updated_at`

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.DB.QueryRow(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id=$1`, id,
	).Scan(&room.ID, &room.RoomNumber, &room.Capacity, &room.Occupancy,
		&room.GenderPolicy, &room.MonthlyRate, &room.CreatedAt, &room.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("room %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *PostgresRoomRepository) List(ctx context.Context) ([]*models.Room, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+roomColumns+` FROM rooms ORDER BY room_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.RoomNumber, &room.Capacity, &room.Occupancy,
			&room.GenderPolicy, &room.MonthlyRate, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}
	return rooms, rows.Err()
}

func (r *PostgresRoomRepository) UpdateOccupancy(ctx context.Context, roomID string, occupancy int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE rooms SET occupancy=$1, updated_at=NOW() WHERE id=$2`, occupancy, roomID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("room %q not found", roomID)
	}
	return nil
}
